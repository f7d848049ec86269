package scheduler

import (
	"fmt"

	"github.com/alexanderramin/goalplan/internal/domain"
)

type WarningCode string

const (
	WarningSlotOverlap  WarningCode = "SLOT_OVERLAP"
	WarningInvalidSlot  WarningCode = "INVALID_SLOT"
	WarningBlockedOutOf WarningCode = "BLOCKED_DATE_OUTSIDE_WINDOW"
)

// ScheduleWarning flags questionable caller input. Warnings never change
// what Resolve emits.
type ScheduleWarning struct {
	Code    WarningCode    `json:"code"`
	Weekday domain.Weekday `json:"weekday,omitempty"`
	Message string         `json:"message"`
}

// ScheduleWarnings reports inverted slots and overlapping slots per weekday.
// Overlaps are reported, not merged.
func ScheduleWarnings(ws domain.WeeklySchedule) []ScheduleWarning {
	var warnings []ScheduleWarning

	for _, day := range domain.Weekdays {
		slots := ws[day]
		for i, s := range slots {
			if err := s.Validate(); err != nil {
				warnings = append(warnings, ScheduleWarning{
					Code:    WarningInvalidSlot,
					Weekday: day,
					Message: fmt.Sprintf("%s[%d]: %v", day, i, err),
				})
			}
		}
		for i := 0; i < len(slots); i++ {
			for j := i + 1; j < len(slots); j++ {
				if slots[i].Overlaps(slots[j]) {
					warnings = append(warnings, ScheduleWarning{
						Code:    WarningSlotOverlap,
						Weekday: day,
						Message: fmt.Sprintf("%s: slot %s overlaps slot %s", day, slots[i], slots[j]),
					})
				}
			}
		}
	}

	return warnings
}

// AvailabilityWarnings extends ScheduleWarnings with blocked dates that fall
// outside every goal timeframe and therefore have no effect.
func AvailabilityWarnings(goals []domain.Goal, av domain.Availability) []ScheduleWarning {
	warnings := ScheduleWarnings(av.WeeklySchedule)

	start, end, err := Window(goals)
	if err != nil {
		return warnings
	}
	window := domain.Timeframe{StartDate: start, EndDate: end}
	for _, d := range av.BlockedDates.Sorted() {
		if !window.Contains(d) {
			warnings = append(warnings, ScheduleWarning{
				Code:    WarningBlockedOutOf,
				Message: fmt.Sprintf("blocked date %s is outside the scheduling window %s..%s", d, start, end),
			})
		}
	}
	return warnings
}
