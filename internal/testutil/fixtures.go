package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/google/uuid"
)

var testGoalCounter atomic.Int64

// Goal options
type GoalOption func(*domain.Goal)

func WithGoalID(id string) GoalOption {
	return func(g *domain.Goal) {
		g.ID = id
	}
}

// WithTimeframe sets the goal timeframe from YYYY-MM-DD literals.
func WithTimeframe(start, end string) GoalOption {
	return func(g *domain.Goal) {
		g.Timeframe = domain.Timeframe{
			StartDate: domain.MustDate(start),
			EndDate:   domain.MustDate(end),
		}
	}
}

func WithSkillLevel(l domain.SkillLevel) GoalOption {
	return func(g *domain.Goal) {
		g.SkillLevel = l
	}
}

func WithTargetOutcome(s string) GoalOption {
	return func(g *domain.Goal) {
		g.TargetOutcome = s
	}
}

func NewTestGoal(title string, opts ...GoalOption) domain.Goal {
	n := testGoalCounter.Add(1)
	g := domain.Goal{
		ID:            fmt.Sprintf("goal-%d-%s", n, uuid.New().String()[:8]),
		Title:         title,
		Description:   "Test goal " + strings.ToLower(title),
		SkillLevel:    domain.SkillBeginner,
		TargetOutcome: "Finish " + strings.ToLower(title),
		Timeframe: domain.Timeframe{
			StartDate: domain.MustDate("2026-02-01"),
			EndDate:   domain.MustDate("2026-02-28"),
		},
	}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

// Slot parses "HH:MM-HH:MM".
func Slot(s string) domain.TimeSlot {
	start, end, ok := strings.Cut(s, "-")
	if !ok {
		panic(fmt.Sprintf("testutil: bad slot %q", s))
	}
	return domain.TimeSlot{Start: domain.MustClock(start), End: domain.MustClock(end)}
}

// Availability options
type AvailabilityOption func(*domain.Availability)

// WithSlots sets the slots for one weekday, e.g. WithSlots(domain.Monday, "09:00-10:00").
func WithSlots(day domain.Weekday, slots ...string) AvailabilityOption {
	return func(a *domain.Availability) {
		parsed := make([]domain.TimeSlot, 0, len(slots))
		for _, s := range slots {
			parsed = append(parsed, Slot(s))
		}
		a.WeeklySchedule[day] = parsed
	}
}

func WithBlockedDates(dates ...string) AvailabilityOption {
	return func(a *domain.Availability) {
		for _, d := range dates {
			a.BlockedDates[domain.MustDate(d)] = struct{}{}
		}
	}
}

func WithTimezone(tz string) AvailabilityOption {
	return func(a *domain.Availability) {
		a.Timezone = tz
	}
}

// NewTestAvailability returns an availability with every weekday present and
// empty, unless options add slots.
func NewTestAvailability(opts ...AvailabilityOption) domain.Availability {
	a := domain.Availability{
		Timezone:       "UTC",
		WeeklySchedule: domain.WeeklySchedule{}.Normalized(),
		BlockedDates:   domain.NewDateSet(),
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// Task options
type TaskOption func(*domain.Task)

func WithDifficulty(d domain.Difficulty) TaskOption {
	return func(t *domain.Task) {
		t.Difficulty = d
	}
}

func WithEstimate(min int) TaskOption {
	return func(t *domain.Task) {
		t.EstimatedDurationMinutes = min
	}
}

func WithTitle(title string) TaskOption {
	return func(t *domain.Task) {
		t.Title = title
	}
}

// NewTestTask builds a task whose estimate matches its scheduled length.
func NewTestTask(goalID, date, start, end string, opts ...TaskOption) domain.Task {
	t := domain.Task{
		GoalID:      goalID,
		Date:        domain.MustDate(date),
		StartTime:   domain.MustClock(start),
		EndTime:     domain.MustClock(end),
		Title:       "Practice " + date,
		Description: "Focused practice block",
		Difficulty:  domain.DifficultyModerate,
	}
	t.EstimatedDurationMinutes = t.ScheduledMin()
	for _, opt := range opts {
		opt(&t)
	}
	return t
}
