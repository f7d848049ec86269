package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/alexanderramin/goalplan/internal/config"
	"github.com/alexanderramin/goalplan/internal/logging"
	"github.com/alexanderramin/goalplan/internal/service"
	"github.com/spf13/cobra"
)

// Services is the wired use-case layer. Handler is only needed by serve.
type Services struct {
	Plans         service.PlanService
	Regenerations service.RegenerationService
	Playground    service.PlaygroundService
	Handler       http.Handler
}

// WireFunc builds Services from a validated config.
type WireFunc func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Services, error)

// App carries what every command needs. Config and Logger are filled in by
// the root command before any subcommand runs.
type App struct {
	Wire          WireFunc
	IsInteractive func() bool

	Config config.Config
	Logger *slog.Logger

	configPath string
	logLevel   string
	output     string
	closer     io.Closer
	services   *Services
}

// NewRootCmd creates the top-level "goalplan" command.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "goalplan",
		Short:         "Availability-aware goal plan generator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app.closer != nil {
				return app.closer.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&app.logLevel, "log-level", "", "Override logging.level (debug|info|warn|error)")
	root.PersistentFlags().StringVarP(&app.output, "output", "o", outputAuto, "Output format (auto|table|json)")

	root.AddCommand(
		newServeCmd(app),
		newResolveCmd(app),
		newValidateCmd(app),
		newGenerateCmd(app),
		newRegenerateCmd(app),
		newPlaygroundCmd(app),
	)

	return root
}

func (a *App) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	switch a.output {
	case outputAuto, outputTable, outputJSON:
	default:
		return fmt.Errorf("--output: invalid value %q (expected auto, table or json)", a.output)
	}

	logger, closer, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.Config = cfg
	a.Logger = logger
	a.closer = closer
	return nil
}

// Services validates the config for provider use and wires the stack once.
func (a *App) Services(ctx context.Context) (*Services, error) {
	if a.services != nil {
		return a.services, nil
	}
	if a.Wire == nil {
		return nil, errors.New("no service wiring configured")
	}
	if err := a.Config.Validate(true); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	s, err := a.Wire(ctx, a.Config, a.Logger)
	if err != nil {
		return nil, err
	}
	a.services = s
	return s, nil
}
