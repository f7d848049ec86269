package validation

import (
	"fmt"
	"time"

	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/scheduler"
)

// DurationPolicy decides whether a duration mismatch rejects a task.
type DurationPolicy string

const (
	DurationHard DurationPolicy = "hard"
	DurationSoft DurationPolicy = "soft"
)

const DefaultDurationTolerance = 15 * time.Minute

// Validator checks generated tasks against resolved windows and the goal
// set. It never modifies a task.
type Validator struct {
	DurationTolerance time.Duration
	DurationPolicy    DurationPolicy
}

type Option func(*Validator)

func WithDurationTolerance(d time.Duration) Option {
	return func(v *Validator) {
		v.DurationTolerance = d
	}
}

func WithDurationPolicy(p DurationPolicy) Option {
	return func(v *Validator) {
		v.DurationPolicy = p
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{
		DurationTolerance: DefaultDurationTolerance,
		DurationPolicy:    DurationSoft,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ParseDurationPolicy accepts "hard" or "soft"; empty means soft.
func ParseDurationPolicy(s string) (DurationPolicy, error) {
	switch DurationPolicy(s) {
	case DurationHard:
		return DurationHard, nil
	case DurationSoft, "":
		return DurationSoft, nil
	default:
		return "", fmt.Errorf("duration policy: invalid value %q (expected hard or soft)", s)
	}
}

// Result is an accepted candidate plus any warning-level findings.
type Result struct {
	Tasks    []domain.Task `json:"plan"`
	Warnings []Violation   `json:"warnings,omitempty"`
}

// ValidatePlan accepts plan only if every task passes. Checks short-circuit
// per task and accumulate across tasks.
func (v *Validator) ValidatePlan(plan []domain.Task, goals []domain.Goal, windows []domain.AvailableDateEntry) (*Result, error) {
	idx := domain.IndexGoals(goals)

	var all []Violation
	for i, task := range plan {
		all = append(all, v.check(i, fmt.Sprintf("plan[%d]", i), task, nil, idx, windows)...)
	}
	return v.result(plan, all)
}

// ValidateTask validates a single task.
func (v *Validator) ValidateTask(task domain.Task, goals []domain.Goal, windows []domain.AvailableDateEntry) (*Result, error) {
	vs := v.check(0, "task", task, nil, domain.IndexGoals(goals), windows)
	return v.result([]domain.Task{task}, vs)
}

// ValidateReplacement validates a regenerated task for position index and
// additionally requires it to stay on the original task's date.
func (v *Validator) ValidateReplacement(index int, original, replacement domain.Task, goals []domain.Goal, windows []domain.AvailableDateEntry) (*Result, error) {
	vs := v.check(index, "task", replacement, &original, domain.IndexGoals(goals), windows)
	return v.result([]domain.Task{replacement}, vs)
}

func (v *Validator) result(tasks []domain.Task, vs []Violation) (*Result, error) {
	if len(filter(vs, SeverityError)) > 0 {
		return nil, &ConstraintViolationError{Violations: vs}
	}
	return &Result{
		Tasks:    append([]domain.Task{}, tasks...),
		Warnings: filter(vs, SeverityWarning),
	}, nil
}

func (v *Validator) check(
	i int,
	path string,
	task domain.Task,
	original *domain.Task,
	goals domain.GoalIndex,
	windows []domain.AvailableDateEntry,
) []Violation {
	reject := func(field string, code Code, format string, args ...any) []Violation {
		return []Violation{{
			TaskIndex: i,
			Field:     path + "." + field,
			Code:      code,
			Severity:  SeverityError,
			Message:   fmt.Sprintf(format, args...),
		}}
	}

	if _, ok := goals[task.GoalID]; !ok {
		return reject("goal_id", CodeUnknownGoalReference, "goal %q is not in the goal set", task.GoalID)
	}

	if original != nil && task.Date != original.Date {
		return reject("date", CodeDateRelocated, "replacement moved from %s to %s", original.Date, task.Date)
	}

	entry, ok := scheduler.FindEntry(windows, task.Date)
	if !ok {
		return reject("date", CodeDateOutOfWindow, "%s is not an available date", task.Date)
	}

	if entry.SlotContaining(task.StartTime, task.EndTime) < 0 {
		return reject("start_time", CodeSlotViolation, "%s-%s does not fit inside a single slot on %s (slots: %s)",
			task.StartTime, task.EndTime, task.Date, formatSlots(entry.Slots))
	}

	if task.StartTime >= task.EndTime {
		return reject("end_time", CodeInvertedInterval, "start %s is not before end %s", task.StartTime, task.EndTime)
	}

	if !domain.ValidDifficulties[task.Difficulty] {
		return reject("difficulty", CodeInvalidDifficulty, "invalid value %q", task.Difficulty)
	}

	scheduled := task.ScheduledMin()
	diff := task.EstimatedDurationMinutes - scheduled
	if diff < 0 {
		diff = -diff
	}
	if time.Duration(diff)*time.Minute > v.DurationTolerance {
		sev := SeverityWarning
		if v.DurationPolicy == DurationHard {
			sev = SeverityError
		}
		return []Violation{{
			TaskIndex: i,
			Field:     path + ".estimated_duration_minutes",
			Code:      CodeDurationMismatch,
			Severity:  sev,
			Message: fmt.Sprintf("estimate %d min differs from scheduled %d min by more than %s",
				task.EstimatedDurationMinutes, scheduled, v.DurationTolerance),
		}}
	}

	return nil
}

func formatSlots(slots []domain.TimeSlot) string {
	s := ""
	for i, slot := range slots {
		if i > 0 {
			s += ", "
		}
		s += slot.String()
	}
	return s
}
