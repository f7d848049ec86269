package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// WeeklySchedule maps each weekday to its ordered slots. A missing key means
// no availability that day.
type WeeklySchedule map[Weekday][]TimeSlot

// SlotsFor returns the slots for a weekday, nil when the key is absent.
func (ws WeeklySchedule) SlotsFor(w Weekday) []TimeSlot {
	return ws[w]
}

// Normalized returns a copy with all seven weekday keys present.
func (ws WeeklySchedule) Normalized() WeeklySchedule {
	out := make(WeeklySchedule, len(Weekdays))
	for _, w := range Weekdays {
		slots := ws[w]
		cp := make([]TimeSlot, len(slots))
		copy(cp, slots)
		out[w] = cp
	}
	return out
}

// UnmarshalJSON accepts weekday keys in any case and rejects unknown names.
func (ws *WeeklySchedule) UnmarshalJSON(data []byte) error {
	var raw map[string][]TimeSlot
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return ws.fill(raw)
}

// UnmarshalYAML mirrors UnmarshalJSON for profile files.
func (ws *WeeklySchedule) UnmarshalYAML(unmarshal func(any) error) error {
	var raw map[string][]TimeSlot
	if err := unmarshal(&raw); err != nil {
		return err
	}
	return ws.fill(raw)
}

func (ws *WeeklySchedule) fill(raw map[string][]TimeSlot) error {
	out := make(WeeklySchedule, len(raw))
	// Sorted keys keep the merge order of case variants stable.
	for _, k := range slices.Sorted(maps.Keys(raw)) {
		w, err := ParseWeekday(k)
		if err != nil {
			return fmt.Errorf("weekly_schedule: %w", err)
		}
		out[w] = append(out[w], raw[k]...)
	}
	*ws = out
	return nil
}

type Availability struct {
	Timezone       string         `json:"timezone" yaml:"timezone"`
	WeeklySchedule WeeklySchedule `json:"weekly_schedule" yaml:"weekly_schedule"`
	BlockedDates   DateSet        `json:"blocked_dates" yaml:"blocked_dates"`
}

// AvailableDateEntry is one resolved, schedulable date. Slots is never empty.
type AvailableDateEntry struct {
	Date    Date       `json:"date"`
	Weekday Weekday    `json:"weekday"`
	Slots   []TimeSlot `json:"slots"`
}

// SlotContaining returns the index of the single slot that fully contains
// [start, end), or -1 when none does.
func (e AvailableDateEntry) SlotContaining(start, end ClockTime) int {
	for i, s := range e.Slots {
		if s.Contains(start, end) {
			return i
		}
	}
	return -1
}
