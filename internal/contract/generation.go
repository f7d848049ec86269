package contract

import "github.com/alexanderramin/goalplan/internal/domain"

// PlanGenerationRequest is the payload handed to the generation service for
// a plan. AvailabilityContext holds resolved windows only; the raw weekly
// schedule is never forwarded.
type PlanGenerationRequest struct {
	Goals               []domain.Goal               `json:"goals"`
	AvailabilityContext []domain.AvailableDateEntry `json:"availability_context"`
	Timezone            string                      `json:"timezone,omitempty"`
	GenerationRequest   domain.GenerationRequest    `json:"generation_request"`
	ExistingPlan        []domain.Task               `json:"existing_plan"`
}

// TaskRegenerationRequest is the payload for replacing one task.
type TaskRegenerationRequest struct {
	OriginalTask          domain.Task               `json:"original_task"`
	Feedback              string                    `json:"feedback"`
	AvailableSlotsForDate domain.AvailableDateEntry `json:"available_slots_for_date"`
	Goal                  domain.Goal               `json:"goal"`
}

// PlanGenerationResponse is the canonical full-plan response. It is also
// the flat_v1 wire shape.
type PlanGenerationResponse struct {
	Plan []domain.Task `json:"plan"`
}

// TaskRegenerationResponse is the canonical single-task response, as sent
// under flat_v1.
type TaskRegenerationResponse struct {
	Task domain.Task `json:"task"`
}
