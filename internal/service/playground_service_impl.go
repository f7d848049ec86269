package service

import (
	"context"
	"strings"
	"time"

	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/google/uuid"
)

type playgroundService struct {
	runner   PromptRunner
	cfg      Config
	observer UseCaseObserver
}

func NewPlaygroundService(runner PromptRunner, cfg Config, observers ...UseCaseObserver) PlaygroundService {
	return &playgroundService{
		runner:   runner,
		cfg:      cfg,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *playgroundService) Run(ctx context.Context, req PlaygroundRequest) (result *generation.PromptResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer observe(ctx, s.observer, "playground", uuid.NewString(), startedAt, fields, &err)

	if strings.TrimSpace(req.UserMessage) == "" {
		return nil, ErrEmptyPrompt
	}

	params := generation.ResolveParams(req.Params, s.cfg.Defaults)
	if err = params.Validate(); err != nil {
		return nil, err
	}
	fields["model"] = params.Model

	callCtx, cancel := withDeadline(ctx, s.cfg.PlaygroundTimeout)
	defer cancel()

	result, err = s.runner.Run(callCtx, generation.PromptRun{
		SystemPrompt: req.SystemPrompt,
		UserMessage:  req.UserMessage,
		Params:       params,
	})
	if err != nil {
		return nil, deadlineError(callCtx, err)
	}
	fields["latency_ms"] = result.LatencyMs
	return result, nil
}
