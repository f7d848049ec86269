package intelligence

import (
	"fmt"

	"github.com/alexanderramin/goalplan/internal/contract"
)

// planSystemPrompt carries the scheduling rules. The availability_context in
// the user message is already filtered, so the rules only need to say "use
// what you are given".
const planSystemPrompt = `You are a productivity planning assistant. Given a user's goals, skill level, timeframe, and availability, generate a structured daily task plan.

Rules:
- Only schedule tasks on the dates listed in availability_context, inside the listed slots.
- Never schedule anything on a date that is not listed; blocked dates have already been removed.
- Each task must fit within a single available time slot (do not span across slots).
- start_time and end_time use 24h "HH:MM"; dates use "YYYY-MM-DD".
- estimated_duration_minutes must match end_time minus start_time.
- difficulty is one of: easy, moderate, challenging.
- Start with easier tasks and gradually increase difficulty as the timeframe progresses.
- Every goal_id must be one of the ids in goals.
- Keep task descriptions actionable and specific.
- If existing_plan is not empty, keep the new plan consistent with it.
- Return ONLY valid JSON matching the output format, no extra text.`

// regenerateSystemPrompt replaces one task under user feedback.
const regenerateSystemPrompt = `You are a productivity planning assistant. Replace a single task in a user's plan based on their feedback.

Rules:
- Keep the task on the same date as original_task.
- The task must fit within one of the slots in available_slots_for_date (do not span across slots).
- Keep goal_id equal to goal.id.
- start_time and end_time use 24h "HH:MM"; estimated_duration_minutes must match the interval.
- difficulty is one of: easy, moderate, challenging.
- Address the feedback directly and keep the description actionable.
- Return ONLY valid JSON matching the output format, no extra text.`

const flatPlanFormat = `Output format:
{"plan":[{"goal_id":"...","date":"YYYY-MM-DD","start_time":"HH:MM","end_time":"HH:MM","title":"...","description":"...","difficulty":"easy|moderate|challenging","estimated_duration_minutes":0}]}`

const flatTaskFormat = `Output format:
{"task":{"goal_id":"...","date":"YYYY-MM-DD","start_time":"HH:MM","end_time":"HH:MM","title":"...","description":"...","difficulty":"easy|moderate|challenging","estimated_duration_minutes":0}}`

const nestedFormat = `Output format:
{"days":[{"date":"YYYY-MM-DD","time_blocks":[{"start_time":"HH:MM","end_time":"HH:MM","tasks":[{"goal_id":"...","title":"...","description":"...","difficulty":"easy|moderate|challenging","estimated_duration_minutes":0}]}]}]}`

func planPrompt(v contract.SchemaVersion) string {
	return fmt.Sprintf("%s\n\n%s", planSystemPrompt, outputFormat(v, false))
}

func regeneratePrompt(v contract.SchemaVersion) string {
	format := outputFormat(v, true)
	if v == contract.SchemaNestedV2 {
		format += "\nReturn exactly one day with exactly one time block holding exactly one task."
	}
	return fmt.Sprintf("%s\n\n%s", regenerateSystemPrompt, format)
}

func outputFormat(v contract.SchemaVersion, single bool) string {
	switch {
	case v == contract.SchemaNestedV2:
		return nestedFormat
	case single:
		return flatTaskFormat
	default:
		return flatPlanFormat
	}
}

// DefaultPlaygroundSystemPrompt is used when a playground call supplies none.
func DefaultPlaygroundSystemPrompt() string {
	return planPrompt(contract.SchemaFlatV1)
}
