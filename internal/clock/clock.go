// ABOUTME: Calendar arithmetic for the habit engine.
// ABOUTME: Day is a timezone-free calendar date; Clock resolves "today" in an owner's zone.
package clock

import (
	"fmt"
	"time"
)

// DayFormat is the canonical wire and storage format for calendar dates.
const DayFormat = "2006-01-02"

// Day is a calendar date (year-month-day), deliberately not an instant.
// Check-ins and analytics buckets are keyed by Day, never by timestamp.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

// NewDay builds a Day from components.
func NewDay(year int, month time.Month, dom int) Day {
	return Day{Year: year, Month: month, Dom: dom}
}

// DayOf truncates an instant to its calendar date in the instant's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Dom: d}
}

// ParseDay parses a yyyy-mm-dd string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		return Day{}, fmt.Errorf("parse day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// String formats the day as yyyy-mm-dd.
func (d Day) String() string {
	return d.Time().Format(DayFormat)
}

// Time returns the day at midnight UTC. Used only for arithmetic and
// formatting; never compared against wall-clock instants.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, time.UTC)
}

// MarshalJSON encodes the day as a yyyy-mm-dd string.
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a yyyy-mm-dd string.
func (d *Day) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("day must be a %q string", DayFormat)
	}
	parsed, err := ParseDay(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsZero reports whether the day is the zero value.
func (d Day) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Dom == 0
}

// AddDays returns the day n days later (or earlier for negative n).
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time().AddDate(0, 0, n))
}

// Sub returns the number of whole days from other to d.
func (d Day) Sub(other Day) int {
	return int(d.Time().Sub(other.Time()).Hours() / 24)
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is later than other.
func (d Day) After(other Day) bool {
	return d.Time().After(other.Time())
}

// Weekday returns the day of week.
func (d Day) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// ISOWeek returns the ISO 8601 week number (1..53).
func (d Day) ISOWeek() int {
	_, week := d.Time().ISOWeek()
	return week
}

// DayName returns the short English weekday name ("Mon".."Sun").
func (d Day) DayName() string {
	return d.Weekday().String()[:3]
}

// Range enumerates every day from start through end inclusive.
func Range(start, end Day) []Day {
	if end.Before(start) {
		return nil
	}
	days := make([]Day, 0, end.Sub(start)+1)
	for cur := start; !cur.After(end); cur = cur.AddDays(1) {
		days = append(days, cur)
	}
	return days
}

// FirstSundayOnOrAfter returns the first Sunday on or after the given day.
// Heatmap grid columns are anchored here.
func FirstSundayOnOrAfter(d Day) Day {
	offset := (7 - int(d.Weekday())) % 7
	return d.AddDays(offset)
}

// Clock resolves the current calendar day in a fixed location. Engines take
// a Clock rather than calling time.Now so tests can pin "today".
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// New returns a Clock for the given location. A nil location means UTC.
func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc, now: time.Now}
}

// NewFixed returns a Clock pinned to a specific day, for tests.
func NewFixed(today Day) *Clock {
	t := today.Time()
	return &Clock{loc: time.UTC, now: func() time.Time { return t }}
}

// ForZone returns a Clock for a named timezone, defaulting to UTC when the
// name is empty or unknown.
func ForZone(name string) *Clock {
	if name == "" {
		return New(time.UTC)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return New(time.UTC)
	}
	return New(loc)
}

// Now returns the current instant in the clock's location.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Today returns the current calendar day in the clock's location.
func (c *Clock) Today() Day {
	return DayOf(c.Now())
}
