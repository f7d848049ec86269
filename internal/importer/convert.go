package importer

import (
	"errors"
	"maps"
	"slices"

	"github.com/alexanderramin/goalplan/internal/domain"
)

// Profile is a validated caller profile in domain types.
type Profile struct {
	Goals        []domain.Goal
	Availability domain.Availability
	Plan         []domain.Task
}

// Convert validates p and converts it to domain types. All validation errors
// are returned together.
func Convert(p *ProfileImport) (*Profile, error) {
	if errs := ValidateProfile(p); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	out := &Profile{
		Goals: make([]domain.Goal, 0, len(p.Goals)),
		Availability: domain.Availability{
			Timezone:       p.Availability.Timezone,
			WeeklySchedule: domain.WeeklySchedule{},
			BlockedDates:   domain.NewDateSet(),
		},
	}

	for _, g := range p.Goals {
		out.Goals = append(out.Goals, domain.Goal{
			ID:            g.ID,
			Title:         g.Title,
			Description:   g.Description,
			SkillLevel:    domain.SkillLevel(domain.CoalesceStr(g.SkillLevel, string(domain.SkillBeginner))),
			TargetOutcome: g.TargetOutcome,
			Timeframe: domain.Timeframe{
				StartDate: domain.MustDate(g.Timeframe.StartDate),
				EndDate:   domain.MustDate(g.Timeframe.EndDate),
			},
		})
	}

	// Keys are visited in sorted order so case variants of one weekday
	// ("Monday", "monday") merge the same way on every run.
	for _, day := range scheduleKeys(p.Availability.WeeklySchedule) {
		w, _ := domain.ParseWeekday(day)
		for _, s := range p.Availability.WeeklySchedule[day] {
			out.Availability.WeeklySchedule[w] = append(out.Availability.WeeklySchedule[w], domain.TimeSlot{
				Start: domain.MustClock(s.Start),
				End:   domain.MustClock(s.End),
			})
		}
	}
	out.Availability.WeeklySchedule = out.Availability.WeeklySchedule.Normalized()

	for _, d := range p.Availability.BlockedDates {
		if d != "" {
			out.Availability.BlockedDates[domain.MustDate(d)] = struct{}{}
		}
	}

	out.Plan = ConvertTasks(p.Plan)
	return out, nil
}

// ConvertTasks converts tasks that already passed validation. Difficulty is
// carried through unchecked so the validator can report it.
func ConvertTasks(tasks []TaskImport) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, domain.Task{
			GoalID:                   t.GoalID,
			Date:                     domain.MustDate(t.Date),
			StartTime:                domain.MustClock(t.StartTime),
			EndTime:                  domain.MustClock(t.EndTime),
			Title:                    t.Title,
			Description:              t.Description,
			Difficulty:               domain.Difficulty(t.Difficulty),
			EstimatedDurationMinutes: t.EstimatedDurationMinutes,
		})
	}
	return out
}

func scheduleKeys(ws map[string][]SlotImport) []string {
	return slices.Sorted(maps.Keys(ws))
}
