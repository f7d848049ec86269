package generation

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/goalplan/internal/contract"
	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/scheduler"
)

// Build assembles the outbound plan request from resolved windows. Only the
// windows and the timezone are forwarded; the raw weekly schedule and blocked
// dates never leave this function.
//
// A regenerate_task request is scoped to the single window matching its
// target date (and to its goal when one is named). A missing window fails
// with domain.ErrNoSlotForDate before any external call is made.
func Build(
	goals []domain.Goal,
	av domain.Availability,
	req domain.GenerationRequest,
	existingPlan []domain.Task,
	windows []domain.AvailableDateEntry,
) (contract.PlanGenerationRequest, error) {
	if err := req.Validate(); err != nil {
		return contract.PlanGenerationRequest{}, err
	}

	out := contract.PlanGenerationRequest{
		Goals:               append([]domain.Goal{}, goals...),
		AvailabilityContext: cloneWindows(windows),
		Timezone:            av.Timezone,
		GenerationRequest:   req,
		ExistingPlan:        append([]domain.Task{}, existingPlan...),
	}

	if req.Type != domain.RequestRegenerateTask {
		return out, nil
	}

	entry, err := scheduler.RequireEntry(windows, *req.TargetDate)
	if err != nil {
		return contract.PlanGenerationRequest{}, err
	}
	out.AvailabilityContext = cloneWindows([]domain.AvailableDateEntry{entry})

	if req.GoalID != nil {
		goal, ok := domain.IndexGoals(goals)[*req.GoalID]
		if !ok {
			return contract.PlanGenerationRequest{}, fmt.Errorf("%w: %q", domain.ErrUnknownGoalReference, *req.GoalID)
		}
		out.Goals = []domain.Goal{*goal}
	}
	return out, nil
}

// BuildRegeneration assembles the single-task payload for original. The
// window for the original date is looked up first, then the goal.
func BuildRegeneration(
	original domain.Task,
	feedback string,
	goals []domain.Goal,
	windows []domain.AvailableDateEntry,
) (contract.TaskRegenerationRequest, error) {
	entry, err := scheduler.RequireEntry(windows, original.Date)
	if err != nil {
		return contract.TaskRegenerationRequest{}, err
	}

	goal, ok := domain.IndexGoals(goals)[original.GoalID]
	if !ok {
		return contract.TaskRegenerationRequest{}, fmt.Errorf("%w: %q", domain.ErrUnknownGoalReference, original.GoalID)
	}

	return contract.TaskRegenerationRequest{
		OriginalTask:          original,
		Feedback:              strings.TrimSpace(feedback),
		AvailableSlotsForDate: cloneWindows([]domain.AvailableDateEntry{entry})[0],
		Goal:                  *goal,
	}, nil
}

func cloneWindows(windows []domain.AvailableDateEntry) []domain.AvailableDateEntry {
	out := make([]domain.AvailableDateEntry, len(windows))
	for i, w := range windows {
		out[i] = domain.AvailableDateEntry{
			Date:    w.Date,
			Weekday: w.Weekday,
			Slots:   append([]domain.TimeSlot{}, w.Slots...),
		}
	}
	return out
}
