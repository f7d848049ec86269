package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/scheduler"
	"github.com/alexanderramin/goalplan/internal/validation"
	"github.com/google/uuid"
)

type planService struct {
	generator PlanGenerator
	validator *validation.Validator
	cfg       Config
	observer  UseCaseObserver
}

func NewPlanService(
	generator PlanGenerator,
	validator *validation.Validator,
	cfg Config,
	observers ...UseCaseObserver,
) PlanService {
	if validator == nil {
		validator = validation.New()
	}
	return &planService{
		generator: generator,
		validator: validator,
		cfg:       cfg,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *planService) Generate(ctx context.Context, req GeneratePlanRequest) (result *GeneratePlanResult, err error) {
	startedAt := time.Now().UTC()
	runID := uuid.NewString()
	fields := map[string]any{
		"request_type": string(req.Request.Type),
		"goal_count":   len(req.Goals),
	}
	defer observe(ctx, s.observer, "generate-plan", runID, startedAt, fields, &err)

	params := generation.ResolveParams(req.Params, s.cfg.Defaults)
	if err = params.Validate(); err != nil {
		return nil, err
	}
	fields["model"] = params.Model
	fields["schema"] = string(params.Schema)

	var (
		accepted *validation.Result
		windows  int
		attempt  int
	)
	for attempt = 1; ; attempt++ {
		accepted, windows, err = s.attempt(ctx, req, params)
		if err == nil || !s.retry(attempt, err) {
			break
		}
	}
	fields["attempts"] = attempt
	if err != nil {
		return nil, err
	}
	fields["windows"] = windows
	fields["task_count"] = len(accepted.Tasks)

	return &GeneratePlanResult{
		RunID:        runID,
		Plan:         domain.ReadyPlan(accepted.Tasks),
		WindowsCount: windows,
		Attempts:     attempt,
		Warnings:     accepted.Warnings,
		Schedule:     scheduler.AvailabilityWarnings(req.Goals, req.Availability),
		Params:       params,
	}, nil
}

// attempt runs one resolve, build, generate and validate pass. Every retry
// goes through here, so resolution always reflects the current inputs.
func (s *planService) attempt(ctx context.Context, req GeneratePlanRequest, params generation.Params) (*validation.Result, int, error) {
	windows, err := scheduler.Resolve(req.Goals, req.Availability)
	if err != nil {
		return nil, 0, err
	}

	payload, err := generation.Build(req.Goals, req.Availability, req.Request, req.ExistingPlan, windows)
	if err != nil {
		return nil, len(windows), err
	}

	callCtx, cancel := withDeadline(ctx, s.cfg.PlanTimeout)
	defer cancel()

	candidate, err := s.generator.GeneratePlan(callCtx, payload, params)
	if err != nil {
		return nil, len(windows), deadlineError(callCtx, err)
	}
	if req.Request.Type == domain.RequestRegenerateTask && len(candidate) != 1 {
		return nil, len(windows), fmt.Errorf("%w: %w, got %d", domain.ErrGenerationService, ErrTaskCount, len(candidate))
	}

	res, err := s.validator.ValidatePlan(candidate, payload.Goals, payload.AvailabilityContext)
	return res, len(windows), err
}

func (s *planService) retry(attempt int, err error) bool {
	return s.cfg.RetryOnViolation && attempt < 2 && errors.Is(err, domain.ErrConstraintViolation)
}

func withDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// deadlineError marks err as a generation timeout when the call's own
// deadline fired, whatever the generator reported.
func deadlineError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, domain.ErrGenerationTimeout) {
		return fmt.Errorf("%w: %w", domain.ErrGenerationTimeout, err)
	}
	return err
}
