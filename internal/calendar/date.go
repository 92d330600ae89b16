// Package calendar maps instants to logical dates: calendar days that start at a
// configurable cutoff hour instead of midnight.
package calendar

import (
	"fmt"
	"time"
)

// DefaultCutoffHour is the wall-clock hour at which a new logical day begins.
const DefaultCutoffHour = 3

// Date is a civil calendar date without time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// WeekKey identifies an ISO-8601 week.
type WeekKey struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// DateOf returns the civil date of t in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate normalizes overflowing components, like time.Date.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// At returns the wall-clock instant at hour:00 of d in loc.
func (d Date) At(hour int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, 0, 0, 0, loc)
}

// EpochDay counts days since 1970-01-01.
func (d Date) EpochDay() int64 {
	return d.utc().Unix() / 86400
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

func (d Date) Weekday() time.Weekday { return d.utc().Weekday() }

// ISOWeekday numbers Monday 1 through Sunday 7.
func (d Date) ISOWeekday() int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// Monday returns the first day of d's ISO week.
func (d Date) Monday() Date {
	return d.AddDays(1 - d.ISOWeekday())
}

func (d Date) ISOWeek() WeekKey {
	y, w := d.utc().ISOWeek()
	return WeekKey{Year: y, Week: w}
}

// WeekOfMonth numbers weeks within d's month using ISO rules: weeks start on
// Monday and a partial first week counts only if it has at least four days.
// Days before the first counted week are in week 0.
func (d Date) WeekOfMonth() int {
	weekStart := floorMod(d.Day-d.ISOWeekday(), 7)
	offset := -weekStart
	if weekStart+1 > 4 {
		offset = 7 - weekStart
	}
	return (7 + offset + d.Day - 1) / 7
}

func (d Date) FirstOfMonth() Date { return Date{Year: d.Year, Month: d.Month, Day: 1} }

func (d Date) DaysInMonth() int {
	return NewDate(d.Year, d.Month+1, 0).Day
}

func (d Date) Compare(o Date) int {
	switch a, b := d.EpochDay(), o.EpochDay(); {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// Within reports whether from <= d <= to.
func (d Date) Within(from, to Date) bool {
	return !d.Before(from) && !d.After(to)
}

func floorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
