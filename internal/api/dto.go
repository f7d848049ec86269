package api

import (
	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/generation"
	"github.com/alexanderramin/goalplan/internal/importer"
	"github.com/alexanderramin/goalplan/internal/scheduler"
	"github.com/alexanderramin/goalplan/internal/validation"
)

type userProfileBody struct {
	Goals        []importer.GoalImport       `json:"goals"`
	Availability importer.AvailabilityImport `json:"availability"`
}

type generateBody struct {
	UserProfile       *userProfileBody          `json:"user_profile"`
	GenerationRequest *domain.GenerationRequest `json:"generation_request"`
	ExistingPlan      []importer.TaskImport     `json:"existing_plan"`
	Params            generation.ParamsInput    `json:"params"`
}

type generateResponse struct {
	RunID            string                      `json:"run_id"`
	Plan             []domain.Task               `json:"plan"`
	Task             *domain.Task                `json:"task,omitempty"`
	WindowsCount     int                         `json:"windows_count"`
	Attempts         int                         `json:"attempts"`
	Warnings         []validation.Violation      `json:"warnings"`
	ScheduleWarnings []scheduler.ScheduleWarning `json:"schedule_warnings"`
	Config           generation.Params           `json:"config"`
}

type regenerateBody struct {
	TaskIndex    *int                   `json:"task_index"`
	Task         *importer.TaskImport   `json:"task"`
	Feedback     string                 `json:"feedback"`
	UserProfile  *userProfileBody       `json:"user_profile"`
	ExistingPlan []importer.TaskImport  `json:"existing_plan"`
	Params       generation.ParamsInput `json:"params"`
}

type regenerateResponse struct {
	RunID     string                 `json:"run_id"`
	TaskIndex int                    `json:"task_index"`
	Task      domain.Task            `json:"task"`
	Plan      []domain.Task          `json:"plan"`
	Attempts  int                    `json:"attempts"`
	Warnings  []validation.Violation `json:"warnings"`
}

type playgroundBody struct {
	SystemPrompt string                 `json:"system_prompt"`
	UserMessage  string                 `json:"user_message"`
	Params       generation.ParamsInput `json:"params"`
}

type healthResponse struct {
	Status       string `json:"status"`
	LLMAvailable *bool  `json:"llm_available,omitempty"`
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
