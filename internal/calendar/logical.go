package calendar

import (
	"time"
)

// LogicalDate returns the logical date of a millisecond timestamp. Wall-clock
// hours before cutoffHour belong to the previous calendar date. The conversion
// uses loc's rules at that instant, so DST shifts are not corrected.
func LogicalDate(tsMillis int64, cutoffHour int, loc *time.Location) Date {
	return LogicalDateOf(time.UnixMilli(tsMillis), cutoffHour, loc)
}

func LogicalDateOf(t time.Time, cutoffHour int, loc *time.Location) Date {
	local := t.In(loc)
	d := DateOf(local)
	if local.Hour() < cutoffHour {
		return d.AddDays(-1)
	}
	return d
}

// CurrentLogicalDate is the logical date of clock.Now().
func CurrentLogicalDate(clock Clock, cutoffHour int, loc *time.Location) Date {
	return LogicalDateOf(clock.Now(), cutoffHour, loc)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Rule bundles the cutoff hour and zone used to assign logical dates.
type Rule struct {
	CutoffHour int
	Location   *time.Location
}

// DefaultRule uses the default cutoff in the process zone.
func DefaultRule() Rule {
	return Rule{CutoffHour: DefaultCutoffHour, Location: time.Local}
}

// Loc returns the rule location, defaulting to time.Local.
func (r Rule) Loc() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// Date is the logical date of a millisecond timestamp under r.
func (r Rule) Date(tsMillis int64) Date {
	return LogicalDate(tsMillis, r.CutoffHour, r.Loc())
}

func (r Rule) DateOf(t time.Time) Date {
	return LogicalDateOf(t, r.CutoffHour, r.Loc())
}

// Start is the instant at which logical date d begins.
func (r Rule) Start(d Date) time.Time {
	return d.At(r.CutoffHour, r.Loc())
}
