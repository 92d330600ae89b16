package analytics

import (
	"time"

	"beertime/internal/calendar"
	"beertime/internal/model"
)

// MonthSummary is the calendar-month rollup. The average spreads the total
// over every day of the month, not only the days elapsed.
type MonthSummary struct {
	Year        int                       `json:"year"`
	Month       time.Month                `json:"month"`
	Days        map[calendar.Date]float64 `json:"days"`
	Total       float64                   `json:"total"`
	DaysInMonth int                       `json:"daysInMonth"`
	AvgPerDay   float64                   `json:"avgPerDay"`
}

func SummarizeMonth(records []model.Record, year int, month time.Month, rule calendar.Rule) MonthSummary {
	days := DailyTotals(records, year, month, rule)
	var total float64
	for _, d := range SortedDates(days) {
		total += days[d]
	}
	n := calendar.Date{Year: year, Month: month, Day: 1}.DaysInMonth()
	s := MonthSummary{Year: year, Month: month, Days: days, Total: total, DaysInMonth: n}
	if n > 0 {
		s.AvgPerDay = total / float64(n)
	}
	return s
}
