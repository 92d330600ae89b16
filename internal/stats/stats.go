// Package stats assembles the read-only views shown to users from a snapshot
// of records. Every function here is a pure transform of its inputs.
package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"beertime/internal/analytics"
	"beertime/internal/calendar"
	"beertime/internal/interval"
	"beertime/internal/model"
)

// Params carries everything outside the snapshot that a view depends on.
type Params struct {
	Now   time.Time
	Rule  calendar.Rule
	Price decimal.Decimal
}

func (p Params) Today() calendar.Date { return p.Rule.DateOf(p.Now) }

type TodayStats struct {
	Date  calendar.Date   `json:"date"`
	Count float64         `json:"count"`
	Cost  decimal.Decimal `json:"cost"`
	First *int64          `json:"first,omitempty"`
}

// DayTotal is one logical date's sum.
type DayTotal struct {
	Date  calendar.Date `json:"date"`
	Count float64       `json:"count"`
}

type WeekStats struct {
	From          calendar.Date   `json:"from"`
	To            calendar.Date   `json:"to"`
	Count         float64         `json:"count"`
	AvgPerDay     float64         `json:"avgPerDay"`
	DaysPassed    int             `json:"daysPassed"`
	CostTotal     decimal.Decimal `json:"costTotal"`
	CostAvgPerDay decimal.Decimal `json:"costAvgPerDay"`
	Days          []DayTotal      `json:"days"`
}

// Stats is the snapshot recomputed on every store change.
type Stats struct {
	Today  TodayStats    `json:"today"`
	Week   WeekStats     `json:"week"`
	Month  MonthView     `json:"month"`
	Latest *model.Record `json:"latest,omitempty"`
}

// Compute derives the headline stats from records.
func Compute(records []model.Record, p Params) Stats {
	today := p.Today()
	s := Stats{
		Today: Today(records, p),
		Week:  Week(records, p),
		Month: Month(records, today.Year, today.Month, p),
	}
	if len(records) > 0 {
		latest := records[0]
		for _, r := range records[1:] {
			if r.Timestamp >= latest.Timestamp {
				latest = r
			}
		}
		s.Latest = &latest
	}
	return s
}

func cost(count float64, price decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(count).Mul(price)
}

// Today sums the records of the current logical date.
func Today(records []model.Record, p Params) TodayStats {
	today := p.Today()
	var mine []model.Record
	var first *int64
	for _, r := range records {
		if p.Rule.Date(r.Timestamp) != today {
			continue
		}
		mine = append(mine, r)
		if first == nil || r.Timestamp < *first {
			ts := r.Timestamp
			first = &ts
		}
	}
	sum := analytics.TotalAndAverage(mine, today, today, p.Rule)
	return TodayStats{Date: today, Count: sum.Total, Cost: cost(sum.Total, p.Price), First: first}
}

// Week covers the ISO week so far: Monday through the current logical date.
func Week(records []model.Record, p Params) WeekStats {
	today := p.Today()
	monday := today.Monday()
	sum := analytics.TotalAndAverage(records, monday, today, p.Rule)
	w := WeekStats{
		From:          monday,
		To:            today,
		Count:         sum.Total,
		AvgPerDay:     sum.AvgPerDay,
		DaysPassed:    sum.DaysPassed,
		CostTotal:     cost(sum.Total, p.Price),
		CostAvgPerDay: decimal.Zero,
	}
	if sum.DaysPassed > 0 {
		w.CostAvgPerDay = w.CostTotal.Div(decimal.NewFromInt(int64(sum.DaysPassed)))
	}
	days := analytics.DailyTotalsBetween(records, monday, today, p.Rule)
	for d := monday; !d.After(today); d = d.AddDays(1) {
		w.Days = append(w.Days, DayTotal{Date: d, Count: days[d]})
	}
	return w
}

// DayHistory is the per-day list with intervals between drinks.
type DayHistory struct {
	Date    calendar.Date       `json:"date"`
	Items   []interval.Item     `json:"items"`
	Summary interval.DaySummary `json:"summary"`
	Total   float64             `json:"total"`
}

func History(records []model.Record, date calendar.Date, p Params) DayHistory {
	var ts []int64
	var day []model.Record
	for _, r := range records {
		if p.Rule.Date(r.Timestamp) == date {
			ts = append(ts, r.Timestamp)
			day = append(day, r)
		}
	}
	items := interval.BuildItems(ts)
	return DayHistory{
		Date:    date,
		Items:   items,
		Summary: interval.SummarizeDay(items),
		Total:   analytics.TotalAndAverage(day, date, date, p.Rule).Total,
	}
}

// YearGraph returns the twelve monthly totals of year.
func YearGraph(records []model.Record, year int, p Params) []analytics.MonthlyTotal {
	return analytics.MonthlyTotalsForYear(records, year, p.Rule)
}

// Rhythm returns the weekly average-interval series ending this week.
func Rhythm(records []model.Record, weeks int, p Params) []interval.WeekPoint {
	return interval.WeeklyRhythm(records, p.Today().Monday(), weeks, p.Rule)
}
