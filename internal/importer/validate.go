package importer

import (
	"fmt"

	"github.com/alexanderramin/goalplan/internal/domain"
)

// ValidateProfile checks the profile for errors before conversion.
// Returns a slice of all validation errors found.
func ValidateProfile(p *ProfileImport) []error {
	var errs []error

	goalIDs := make(map[string]bool)
	errs = append(errs, validateGoals(p.Goals, goalIDs)...)
	errs = append(errs, validateAvailability(&p.Availability)...)
	errs = append(errs, validateTasks("plan", p.Plan)...)

	return errs
}

func validateGoals(goals []GoalImport, ids map[string]bool) []error {
	var errs []error

	for i, g := range goals {
		prefix := fmt.Sprintf("goals[%d]", i)

		if g.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if ids[g.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, g.ID))
		} else {
			ids[g.ID] = true
		}
		if g.Title == "" {
			errs = append(errs, fmt.Errorf("%s.title is required", prefix))
		}
		if g.SkillLevel != "" && !domain.ValidSkillLevels[domain.SkillLevel(g.SkillLevel)] {
			errs = append(errs, fmt.Errorf("%s.skill_level: invalid value %q", prefix, g.SkillLevel))
		}

		// An empty goal set or an inverted timeframe is well formed; the
		// resolver reports those with its own errors.
		_, err := requireDate(prefix+".timeframe.start_date", g.Timeframe.StartDate)
		errs = appendErr(errs, err)
		_, err = requireDate(prefix+".timeframe.end_date", g.Timeframe.EndDate)
		errs = appendErr(errs, err)
	}

	return errs
}

func validateAvailability(a *AvailabilityImport) []error {
	var errs []error

	for _, day := range scheduleKeys(a.WeeklySchedule) {
		slots := a.WeeklySchedule[day]
		prefix := fmt.Sprintf("availability.weekly_schedule.%s", day)
		if _, err := domain.ParseWeekday(day); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
			continue
		}
		for i, s := range slots {
			errs = append(errs, validateSlot(fmt.Sprintf("%s[%d]", prefix, i), s)...)
		}
	}

	for i, d := range a.BlockedDates {
		if d == "" {
			continue
		}
		if _, err := domain.ParseDate(d); err != nil {
			errs = append(errs, fmt.Errorf("availability.blocked_dates[%d]: invalid date format %q (expected YYYY-MM-DD)", i, d))
		}
	}

	return errs
}

func validateSlot(prefix string, s SlotImport) []error {
	var errs []error

	start, startErr := domain.ParseClock(s.Start)
	if startErr != nil {
		errs = append(errs, fmt.Errorf("%s.start: %w", prefix, startErr))
	}
	end, endErr := domain.ParseClock(s.End)
	if endErr != nil {
		errs = append(errs, fmt.Errorf("%s.end: %w", prefix, endErr))
	}
	if startErr == nil && endErr == nil && start >= end {
		errs = append(errs, fmt.Errorf("%s: start %s must be before end %s", prefix, start, end))
	}

	return errs
}

// validateTasks checks the shape of each task. Constraint checks against
// availability belong to the validation package, not here.
func validateTasks(field string, tasks []TaskImport) []error {
	var errs []error

	for i, t := range tasks {
		prefix := fmt.Sprintf("%s[%d]", field, i)

		if t.GoalID == "" {
			errs = append(errs, fmt.Errorf("%s.goal_id is required", prefix))
		}
		_, err := requireDate(prefix+".date", t.Date)
		errs = appendErr(errs, err)
		if _, err := domain.ParseClock(t.StartTime); err != nil {
			errs = append(errs, fmt.Errorf("%s.start_time: %w", prefix, err))
		}
		if _, err := domain.ParseClock(t.EndTime); err != nil {
			errs = append(errs, fmt.Errorf("%s.end_time: %w", prefix, err))
		}
		if t.EstimatedDurationMinutes < 0 {
			errs = append(errs, fmt.Errorf("%s.estimated_duration_minutes must be >= 0", prefix))
		}
	}

	return errs
}

// ValidateTasks checks a standalone plan file.
func ValidateTasks(tasks []TaskImport) []error {
	return validateTasks("plan", tasks)
}

func requireDate(field, s string) (domain.Date, error) {
	if s == "" {
		return domain.Date{}, fmt.Errorf("%s is required", field)
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, fmt.Errorf("%s: invalid date format %q (expected YYYY-MM-DD)", field, s)
	}
	return d, nil
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}
