package service

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/goalplan/internal/contract"
	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/scheduler"
	"github.com/alexanderramin/goalplan/internal/validation"
)

var (
	// ErrEmptyFeedback indicates a regeneration request without feedback.
	ErrEmptyFeedback = errors.New("feedback must not be empty")

	// ErrTaskIndexOutOfRange indicates a regeneration index outside the plan.
	ErrTaskIndexOutOfRange = errors.New("task index out of range")

	// ErrEmptyPrompt indicates a playground run without a user message.
	ErrEmptyPrompt = errors.New("user message must not be empty")

	// ErrTaskCount indicates a regenerate_task answer that does not hold
	// exactly one task. It is reported as a generation service error.
	ErrTaskCount = errors.New("regenerate_task answer must hold exactly one task")
)

// PlanGenerator is the external generation service as seen by the use cases.
// Its output is untrusted until validated.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, req contract.PlanGenerationRequest, params generation.Params) ([]domain.Task, error)
	RegenerateTask(ctx context.Context, req contract.TaskRegenerationRequest, params generation.Params) (domain.Task, error)
}

// PromptRunner executes free-form prompts for the playground.
type PromptRunner interface {
	Run(ctx context.Context, req generation.PromptRun) (*generation.PromptResult, error)
}

// Config holds the knobs shared by the generation use cases.
type Config struct {
	// Defaults fill any generation param a request leaves unset.
	Defaults generation.ParamsInput

	PlanTimeout       time.Duration
	RegenerateTimeout time.Duration
	PlaygroundTimeout time.Duration

	// RetryOnViolation re-runs resolution and generation once when the
	// candidate breaks a constraint. Otherwise violations fail immediately.
	RetryOnViolation bool
}

// DefaultConfig mirrors the default LLM task timeouts.
func DefaultConfig() Config {
	return Config{
		PlanTimeout:       90 * time.Second,
		RegenerateTimeout: 30 * time.Second,
		PlaygroundTimeout: 60 * time.Second,
	}
}

type GeneratePlanRequest struct {
	Goals        []domain.Goal
	Availability domain.Availability
	Request      domain.GenerationRequest
	ExistingPlan []domain.Task
	Params       generation.ParamsInput
}

type GeneratePlanResult struct {
	RunID        string                      `json:"run_id"`
	Plan         domain.Plan                 `json:"-"`
	WindowsCount int                         `json:"windows_count"`
	Attempts     int                         `json:"attempts"`
	Warnings     []validation.Violation      `json:"warnings,omitempty"`
	Schedule     []scheduler.ScheduleWarning `json:"schedule_warnings,omitempty"`
	Params       generation.Params           `json:"config"`
}

type PlanService interface {
	Generate(ctx context.Context, req GeneratePlanRequest) (*GeneratePlanResult, error)
}

// RegenerateRequest replaces ExistingPlan[Index] using Feedback.
type RegenerateRequest struct {
	Index        int
	Feedback     string
	Goals        []domain.Goal
	Availability domain.Availability
	ExistingPlan []domain.Task
	Params       generation.ParamsInput
}

type RegenerateResult struct {
	RunID    string                 `json:"run_id"`
	Task     domain.Task            `json:"task"`
	Plan     domain.Plan            `json:"-"`
	Attempts int                    `json:"attempts"`
	Warnings []validation.Violation `json:"warnings,omitempty"`
}

type RegenerationService interface {
	// Regenerate never modifies req.ExistingPlan. On error the caller keeps
	// its plan as it was.
	Regenerate(ctx context.Context, req RegenerateRequest) (*RegenerateResult, error)
}

type PlaygroundRequest struct {
	SystemPrompt string
	UserMessage  string
	Params       generation.ParamsInput
}

type PlaygroundService interface {
	Run(ctx context.Context, req PlaygroundRequest) (*generation.PromptResult, error)
}
