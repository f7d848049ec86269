package scheduler

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/goalplan/internal/domain"
)

// MaxWindowDays caps the inclusive global window (three years, one of them
// leap).
const MaxWindowDays = 1096

// Window returns the global scheduling window [min start, max end] across
// goals. It fails on an empty goal set, any inverted timeframe or a window
// longer than MaxWindowDays.
func Window(goals []domain.Goal) (domain.Date, domain.Date, error) {
	if len(goals) == 0 {
		return domain.Date{}, domain.Date{}, domain.ErrEmptyGoalSet
	}
	for i := range goals {
		if err := goals[i].ValidateTimeframe(); err != nil {
			return domain.Date{}, domain.Date{}, err
		}
	}

	start := goals[0].Timeframe.StartDate
	end := goals[0].Timeframe.EndDate
	for _, g := range goals[1:] {
		if g.Timeframe.StartDate.Before(start) {
			start = g.Timeframe.StartDate
		}
		if g.Timeframe.EndDate.After(end) {
			end = g.Timeframe.EndDate
		}
	}
	if days := domain.DayNumber(end) - domain.DayNumber(start) + 1; days > MaxWindowDays {
		return domain.Date{}, domain.Date{}, fmt.Errorf("%w: window %s..%s spans %d days, more than %d",
			domain.ErrInvalidTimeframe, start, end, days, MaxWindowDays)
	}
	return start, end, nil
}

// Resolve turns goals and recurring availability into the ordered list of
// concrete dates that may receive tasks. Dates are visited in ascending order
// by day number, so the weekday never depends on the process time zone.
// A date is emitted only when its weekday has slots and it is not blocked.
// Emitted slot lists are copies of the caller's schedule.
func Resolve(goals []domain.Goal, av domain.Availability) ([]domain.AvailableDateEntry, error) {
	start, end, err := Window(goals)
	if err != nil {
		return nil, err
	}

	first := domain.DayNumber(start)
	last := domain.DayNumber(end)

	entries := make([]domain.AvailableDateEntry, 0)
	for n := first; n <= last; n++ {
		date := domain.DateFromDayNumber(n)
		weekday := domain.WeekdayOf(date)

		slots := av.WeeklySchedule.SlotsFor(weekday)
		if len(slots) == 0 || av.BlockedDates.Contains(date) {
			continue
		}

		cp := make([]domain.TimeSlot, len(slots))
		copy(cp, slots)
		entries = append(entries, domain.AvailableDateEntry{
			Date:    date,
			Weekday: weekday,
			Slots:   cp,
		})
	}

	return entries, nil
}

// FindEntry locates the entry for date in windows, which must be sorted
// ascending as Resolve returns them.
func FindEntry(windows []domain.AvailableDateEntry, date domain.Date) (domain.AvailableDateEntry, bool) {
	i := sort.Search(len(windows), func(i int) bool {
		return !windows[i].Date.Before(date)
	})
	if i < len(windows) && windows[i].Date == date {
		return windows[i], true
	}
	return domain.AvailableDateEntry{}, false
}

// RequireEntry is FindEntry that reports a missing date as ErrNoSlotForDate.
func RequireEntry(windows []domain.AvailableDateEntry, date domain.Date) (domain.AvailableDateEntry, error) {
	entry, ok := FindEntry(windows, date)
	if !ok {
		return domain.AvailableDateEntry{}, fmt.Errorf("%w: %s", domain.ErrNoSlotForDate, date)
	}
	return entry, nil
}
