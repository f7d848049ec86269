package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Date is a calendar date with no clock or zone attached.
type Date = civil.Date

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return d, nil
}

// MustDate is ParseDate for literals and already validated input. It panics
// on a malformed date.
func MustDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the seven weekdays starting from Monday.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// ParseWeekday accepts a weekday name in any case.
func ParseWeekday(s string) (Weekday, error) {
	w := Weekday(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Weekdays {
		if w == known {
			return w, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// DayNumber returns the number of days between 1970-01-01 and d on the
// proleptic Gregorian calendar. It never consults a time zone.
func DayNumber(d Date) int {
	y := d.Year
	m := int(d.Month)
	if m <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + d.Day - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// DateFromDayNumber is the inverse of DayNumber.
func DateFromDayNumber(n int) Date {
	n += 719468
	era := floorDiv(n, 146097)
	doe := n - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day := doy - (153*mp+2)/5 + 1
	m := mp + 3
	if m > 12 {
		m -= 12
	}
	if m <= 2 {
		y++
	}
	return Date{Year: y, Month: time.Month(m), Day: day}
}

// WeekdayOf derives the weekday from the day count. 1970-01-01 was a Thursday.
func WeekdayOf(d Date) Weekday {
	idx := (DayNumber(d) + 3) % 7
	if idx < 0 {
		idx += 7
	}
	return Weekdays[idx]
}

// DateSet is an unordered set of calendar dates.
type DateSet map[Date]struct{}

// NewDateSet builds a set from the given dates.
func NewDateSet(dates ...Date) DateSet {
	s := make(DateSet, len(dates))
	for _, d := range dates {
		s[d] = struct{}{}
	}
	return s
}

func (s DateSet) Contains(d Date) bool {
	_, ok := s[d]
	return ok
}

// Sorted returns the members in ascending order.
func (s DateSet) Sorted() []Date {
	out := make([]Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// MarshalJSON writes the set as a sorted array of date strings.
func (s DateSet) MarshalJSON() ([]byte, error) {
	parts := make([]string, 0, len(s))
	for _, d := range s.Sorted() {
		parts = append(parts, `"`+d.String()+`"`)
	}
	return []byte("[" + strings.Join(parts, ",") + "]"), nil
}

// UnmarshalJSON reads an array of date strings. Blank entries are skipped,
// matching the comma-separated input the client collects.
func (s *DateSet) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("blocked_dates: %w", err)
	}
	return s.fill(raw)
}

// UnmarshalYAML mirrors UnmarshalJSON for profile files.
func (s *DateSet) UnmarshalYAML(unmarshal func(any) error) error {
	var raw []string
	if err := unmarshal(&raw); err != nil {
		return fmt.Errorf("blocked_dates: %w", err)
	}
	return s.fill(raw)
}

func (s *DateSet) fill(raw []string) error {
	set := make(DateSet, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		d, err := ParseDate(r)
		if err != nil {
			return fmt.Errorf("blocked_dates: %w", err)
		}
		set[d] = struct{}{}
	}
	*s = set
	return nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
