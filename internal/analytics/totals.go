// Package analytics rolls records up into logical-day, ISO-week and calendar-month
// totals. All sums are plain float64 additions; nothing is rounded here.
// Records are summed in timestamp order so results do not depend on input order.
package analytics

import (
	"sort"
	"time"

	"beertime/internal/calendar"
	"beertime/internal/model"
)

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthlyTotal is one bar of the yearly chart.
type MonthlyTotal struct {
	Month time.Month `json:"month"`
	Total float64    `json:"total"`
}

// Summary is a total over an inclusive logical-date range.
type Summary struct {
	Total      float64 `json:"total"`
	AvgPerDay  float64 `json:"avgPerDay"`
	DaysPassed int     `json:"daysPassed"`
}

// DailyTotals sums amounts per logical date for dates inside year/month.
// Dates without records are absent.
func DailyTotals(records []model.Record, year int, month time.Month, rule calendar.Rule) map[calendar.Date]float64 {
	records = ordered(records)
	out := make(map[calendar.Date]float64)
	for _, r := range records {
		d := rule.Date(r.Timestamp)
		if d.Year != year || d.Month != month {
			continue
		}
		out[d] += r.Amount
	}
	return out
}

// DailyTotalsBetween sums amounts per logical date inside [from, to].
func DailyTotalsBetween(records []model.Record, from, to calendar.Date, rule calendar.Rule) map[calendar.Date]float64 {
	records = ordered(records)
	out := make(map[calendar.Date]float64)
	for _, r := range records {
		d := rule.Date(r.Timestamp)
		if d.Within(from, to) {
			out[d] += r.Amount
		}
	}
	return out
}

func WeeklyTotals(records []model.Record, rule calendar.Rule) map[calendar.WeekKey]float64 {
	records = ordered(records)
	out := make(map[calendar.WeekKey]float64)
	for _, r := range records {
		out[rule.Date(r.Timestamp).ISOWeek()] += r.Amount
	}
	return out
}

func MonthlyTotals(records []model.Record, rule calendar.Rule) map[MonthKey]float64 {
	records = ordered(records)
	out := make(map[MonthKey]float64)
	for _, r := range records {
		d := rule.Date(r.Timestamp)
		out[MonthKey{Year: d.Year, Month: d.Month}] += r.Amount
	}
	return out
}

// MonthlyTotalsForYear returns twelve entries, January first, zeros included.
func MonthlyTotalsForYear(records []model.Record, year int, rule calendar.Rule) []MonthlyTotal {
	records = ordered(records)
	var sums [12]float64
	for _, r := range records {
		d := rule.Date(r.Timestamp)
		if d.Year == year {
			sums[d.Month-1] += r.Amount
		}
	}
	out := make([]MonthlyTotal, 12)
	for i := range out {
		out[i] = MonthlyTotal{Month: time.Month(i + 1), Total: sums[i]}
	}
	return out
}

// TotalAndAverage sums amounts whose logical date is within [from, to] and
// divides by the number of calendar days spanned. A non-positive span yields
// a zero average.
func TotalAndAverage(records []model.Record, from, to calendar.Date, rule calendar.Rule) Summary {
	records = ordered(records)
	var total float64
	for _, r := range records {
		if rule.Date(r.Timestamp).Within(from, to) {
			total += r.Amount
		}
	}
	days := int(to.EpochDay() - from.EpochDay() + 1)
	s := Summary{Total: total, DaysPassed: days}
	if days > 0 {
		s.AvgPerDay = total / float64(days)
	}
	return s
}

// SortedDates returns map keys in ascending order.
func SortedDates(m map[calendar.Date]float64) []calendar.Date {
	keys := make([]calendar.Date, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

// ordered returns records sorted by timestamp, then amount, then ID. The input
// is returned as is when already in that order.
func ordered(records []model.Record) []model.Record {
	less := func(a, b model.Record) bool {
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		if a.Amount != b.Amount {
			return a.Amount < b.Amount
		}
		return a.ID < b.ID
	}
	if sort.SliceIsSorted(records, func(i, j int) bool { return less(records[i], records[j]) }) {
		return records
	}
	out := append([]model.Record(nil), records...)
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
