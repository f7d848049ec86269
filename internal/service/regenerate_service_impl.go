package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/scheduler"
	"github.com/alexanderramin/goalplan/internal/validation"
	"github.com/google/uuid"
)

type regenerationService struct {
	generator PlanGenerator
	validator *validation.Validator
	cfg       Config
	observer  UseCaseObserver
}

func NewRegenerationService(
	generator PlanGenerator,
	validator *validation.Validator,
	cfg Config,
	observers ...UseCaseObserver,
) RegenerationService {
	if validator == nil {
		validator = validation.New()
	}
	return &regenerationService{
		generator: generator,
		validator: validator,
		cfg:       cfg,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *regenerationService) Regenerate(ctx context.Context, req RegenerateRequest) (result *RegenerateResult, err error) {
	startedAt := time.Now().UTC()
	runID := uuid.NewString()
	fields := map[string]any{
		"task_index": req.Index,
		"plan_size":  len(req.ExistingPlan),
	}
	defer observe(ctx, s.observer, "regenerate-task", runID, startedAt, fields, &err)

	feedback := strings.TrimSpace(req.Feedback)
	if feedback == "" {
		return nil, ErrEmptyFeedback
	}
	if req.Index < 0 || req.Index >= len(req.ExistingPlan) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrTaskIndexOutOfRange, req.Index, len(req.ExistingPlan))
	}

	params := generation.ResolveParams(req.Params, s.cfg.Defaults)
	if err = params.Validate(); err != nil {
		return nil, err
	}

	// ReadyPlan copies, so nothing below can reach the caller's slice.
	working, err := domain.ReadyPlan(req.ExistingPlan).Transition(domain.PlanRegeneratingTask)
	if err != nil {
		return nil, err
	}
	original := working.Tasks[req.Index]
	fields["date"] = original.Date.String()
	fields["goal_id"] = original.GoalID

	var (
		accepted *validation.Result
		attempt  int
	)
	for attempt = 1; ; attempt++ {
		accepted, err = s.attempt(ctx, req, original, feedback, params)
		if err == nil || !s.retry(attempt, err) {
			break
		}
	}
	fields["attempts"] = attempt
	if err != nil {
		return nil, err
	}

	replacement := accepted.Tasks[0]
	next, err := working.ReplaceTask(req.Index, replacement)
	if err != nil {
		return nil, err
	}

	return &RegenerateResult{
		RunID:    runID,
		Task:     replacement,
		Plan:     next,
		Attempts: attempt,
		Warnings: accepted.Warnings,
	}, nil
}

func (s *regenerationService) attempt(
	ctx context.Context,
	req RegenerateRequest,
	original domain.Task,
	feedback string,
	params generation.Params,
) (*validation.Result, error) {
	windows, err := scheduler.Resolve(req.Goals, req.Availability)
	if err != nil {
		return nil, err
	}

	payload, err := generation.BuildRegeneration(original, feedback, req.Goals, windows)
	if err != nil {
		return nil, err
	}

	callCtx, cancel := withDeadline(ctx, s.cfg.RegenerateTimeout)
	defer cancel()

	replacement, err := s.generator.RegenerateTask(callCtx, payload, params)
	if err != nil {
		return nil, deadlineError(callCtx, err)
	}

	return s.validator.ValidateReplacement(
		req.Index,
		original,
		replacement,
		[]domain.Goal{payload.Goal},
		[]domain.AvailableDateEntry{payload.AvailableSlotsForDate},
	)
}

func (s *regenerationService) retry(attempt int, err error) bool {
	return s.cfg.RetryOnViolation && attempt < 2 && errors.Is(err, domain.ErrConstraintViolation)
}
