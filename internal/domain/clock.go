package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ClockTime is a wall-clock time of day on a 24h scale, stored as minutes
// since midnight. Valid values are 00:00 through 24:00; 24:00 only makes
// sense as a slot end.
type ClockTime int

const MinutesPerDay = 24 * 60

// ParseClock parses "HH:MM" (leading zero optional on the hour).
func ParseClock(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || len(hh) == 0 || len(hh) > 2 {
		return 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 {
		return 0, fmt.Errorf("invalid time %q (expected HH:MM)", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return ClockTime(h*60 + m), nil
}

// MustClock is ParseClock for literals and already validated input.
func MustClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Minutes returns the number of minutes since midnight.
func (c ClockTime) Minutes() int { return int(c) }

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(data []byte) error {
	parsed, err := ParseClock(string(data))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TimeSlot is a half-open interval [Start, End) within a single day.
type TimeSlot struct {
	Start ClockTime `json:"start" yaml:"start"`
	End   ClockTime `json:"end" yaml:"end"`
}

func (s TimeSlot) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// Validate checks Start < End. Slots never cross midnight.
func (s TimeSlot) Validate() error {
	if s.Start >= s.End {
		return fmt.Errorf("slot %s: start must be before end", s)
	}
	return nil
}

// DurationMin returns the slot length in minutes.
func (s TimeSlot) DurationMin() int {
	return int(s.End - s.Start)
}

// Contains reports whether [start, end) lies entirely inside the slot.
func (s TimeSlot) Contains(start, end ClockTime) bool {
	return start >= s.Start && end <= s.End
}

// Overlaps reports whether the two slots share any minute.
func (s TimeSlot) Overlaps(o TimeSlot) bool {
	return s.Start < o.End && o.Start < s.End
}
