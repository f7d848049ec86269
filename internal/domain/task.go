package domain

import "fmt"

type Task struct {
	GoalID                   string     `json:"goal_id" yaml:"goal_id"`
	Date                     Date       `json:"date" yaml:"date"`
	StartTime                ClockTime  `json:"start_time" yaml:"start_time"`
	EndTime                  ClockTime  `json:"end_time" yaml:"end_time"`
	Title                    string     `json:"title" yaml:"title"`
	Description              string     `json:"description" yaml:"description"`
	Difficulty               Difficulty `json:"difficulty" yaml:"difficulty"`
	EstimatedDurationMinutes int        `json:"estimated_duration_minutes" yaml:"estimated_duration_minutes"`
}

// ScheduledMin returns end - start in minutes.
func (t Task) ScheduledMin() int {
	return int(t.EndTime - t.StartTime)
}

func (t Task) String() string {
	return fmt.Sprintf("%s %s-%s %q", t.Date, t.StartTime, t.EndTime, t.Title)
}

// GenerationRequest is the tagged request variant sent to the generation
// service. TargetDate and GoalID are only meaningful for RequestRegenerateTask.
type GenerationRequest struct {
	Type       GenerationRequestType `json:"type" yaml:"type"`
	TargetDate *Date                 `json:"target_date" yaml:"target_date"`
	GoalID     *string               `json:"goal_id" yaml:"goal_id"`
}

// FullPlanRequest returns the full_plan variant.
func FullPlanRequest() GenerationRequest {
	return GenerationRequest{Type: RequestFullPlan}
}

// RegenerateTaskRequest returns the regenerate_task variant scoped to one
// date and goal.
func RegenerateTaskRequest(date Date, goalID string) GenerationRequest {
	return GenerationRequest{Type: RequestRegenerateTask, TargetDate: &date, GoalID: &goalID}
}

// Validate checks the variant tag and its required fields.
func (r GenerationRequest) Validate() error {
	switch r.Type {
	case RequestFullPlan:
		return nil
	case RequestRegenerateTask:
		if r.TargetDate == nil {
			return fmt.Errorf("generation_request.target_date is required for %s", r.Type)
		}
		return nil
	default:
		return fmt.Errorf("generation_request.type: invalid value %q", r.Type)
	}
}
