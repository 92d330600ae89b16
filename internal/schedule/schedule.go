package schedule

import (
	"time"

	"beertime/internal/calendar"
)

// NextCutoff returns the first instant after now at which a new logical day begins.
func NextCutoff(now time.Time, cutoffHour int, loc *time.Location) time.Time {
	today := calendar.LogicalDateOf(now, cutoffHour, loc)
	return today.AddDays(1).At(cutoffHour, loc)
}

// NextWeekStart returns the cutoff instant on the Monday after the week
// containing monday.
func NextWeekStart(monday calendar.Date, cutoffHour int, loc *time.Location) time.Time {
	return monday.Monday().AddDays(7).At(cutoffHour, loc)
}

// UntilNextCutoff is the wait before the next logical day begins, never below floor.
func UntilNextCutoff(now time.Time, cutoffHour int, loc *time.Location, floor time.Duration) time.Duration {
	d := NextCutoff(now, cutoffHour, loc).Sub(now)
	if d < floor {
		return floor
	}
	return d
}
