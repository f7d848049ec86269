package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/goalplan/internal/api"
	"github.com/alexanderramin/goalplan/internal/cli"
	"github.com/alexanderramin/goalplan/internal/config"
	"github.com/alexanderramin/goalplan/internal/intelligence"
	"github.com/alexanderramin/goalplan/internal/llm"
	"github.com/alexanderramin/goalplan/internal/metrics"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Wire: wire,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}

// wire builds the provider client, the use cases and the HTTP handler that
// share one metrics registry.
func wire(ctx context.Context, cfg config.Config, logger *slog.Logger) (*cli.Services, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	observers := llm.MultiObserver{m}
	if cfg.LLM.LogCalls {
		observers = append(observers, llm.NewLogObserver(logger))
	}
	client, err := llm.NewClient(ctx, cfg.LLM, observers)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	validator, err := cfg.Validator()
	if err != nil {
		return nil, err
	}

	svcCfg := cfg.Service()
	useCaseLog := service.NewLogUseCaseObserver(logger)
	generator := intelligence.NewPlanGenerator(client)

	s := &cli.Services{
		Plans:         service.NewPlanService(generator, validator, svcCfg, useCaseLog, m),
		Regenerations: service.NewRegenerationService(generator, validator, svcCfg, useCaseLog, m),
		Playground:    service.NewPlaygroundService(intelligence.NewPlayground(client), svcCfg, useCaseLog, m),
	}
	s.Handler = api.NewHandler(cfg.Server, api.Deps{
		Plans:             s.Plans,
		Regenerations:     s.Regenerations,
		Playground:        s.Playground,
		Logger:            logger,
		Metrics:           m,
		Gatherer:          reg,
		ProviderAvailable: client.Available,
	})
	return s, nil
}
