package stats

import (
	"context"
	"errors"
	"math"

	"beertime/internal/calendar"
	"beertime/internal/model"
	"beertime/internal/util"
)

var ErrNegativeAmount = errors.New("day total must not be negative")

// representativeHour places a synthetic day-total record at noon, well inside
// any logical day whose cutoff is at or before noon.
const representativeHour = 12

// DayEditor is the transactional part of the event store.
type DayEditor interface {
	ReplaceDay(ctx context.Context, date calendar.Date, rule calendar.Rule, tsMillis int64, amount float64) (model.Record, error)
	DeleteDay(ctx context.Context, date calendar.Date, rule calendar.Rule) (int64, error)
}

// RepresentativeTime returns where a synthetic record for date is stamped.
func RepresentativeTime(date calendar.Date, rule calendar.Rule) int64 {
	hour := representativeHour
	if rule.CutoffHour > hour {
		hour = rule.CutoffHour
	}
	return date.At(hour, rule.Loc()).UnixMilli()
}

// EditDayAmount replaces the total of a logical date with newTotal rounded to
// one decimal. The day's records are swapped for one synthetic record in a
// single store transaction; a total that rounds to zero just clears the day.
func EditDayAmount(ctx context.Context, store DayEditor, date calendar.Date, newTotal float64, rule calendar.Rule) (float64, error) {
	if newTotal < 0 || math.IsNaN(newTotal) || math.IsInf(newTotal, 0) {
		return 0, ErrNegativeAmount
	}
	total := util.Round1(newTotal)
	if total == 0 {
		_, err := store.DeleteDay(ctx, date, rule)
		return 0, err
	}
	if _, err := store.ReplaceDay(ctx, date, rule, RepresentativeTime(date, rule), total); err != nil {
		return 0, err
	}
	return total, nil
}

// DeleteDay removes every record of a logical date.
func DeleteDay(ctx context.Context, store DayEditor, date calendar.Date, rule calendar.Rule) (int64, error) {
	return store.DeleteDay(ctx, date, rule)
}
