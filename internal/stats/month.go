package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"beertime/internal/analytics"
	"beertime/internal/calendar"
	"beertime/internal/model"
)

// DayCell is one square of the month grid. Blank cells pad the first week
// so that columns line up Monday through Sunday.
type DayCell struct {
	Date  *calendar.Date `json:"date,omitempty"`
	Count float64        `json:"count"`
	Today bool           `json:"today,omitempty"`
}

type MonthView struct {
	Year          int             `json:"year"`
	Month         time.Month      `json:"month"`
	Cells         []DayCell       `json:"cells"`
	Total         float64         `json:"total"`
	AvgPerDay     float64         `json:"avgPerDay"`
	TotalCost     decimal.Decimal `json:"totalCost"`
	AvgCostPerDay decimal.Decimal `json:"avgCostPerDay"`
}

// Month builds the calendar view. Averages spread over every day of the month.
func Month(records []model.Record, year int, month time.Month, p Params) MonthView {
	sum := analytics.SummarizeMonth(records, year, month, p.Rule)
	first := calendar.Date{Year: year, Month: month, Day: 1}
	today := p.Today()

	cells := make([]DayCell, 0, 42)
	for i := 1; i < first.ISOWeekday(); i++ {
		cells = append(cells, DayCell{})
	}
	for d := 1; d <= sum.DaysInMonth; d++ {
		date := calendar.Date{Year: year, Month: month, Day: d}
		cells = append(cells, DayCell{Date: &date, Count: sum.Days[date], Today: date == today})
	}

	v := MonthView{
		Year:          year,
		Month:         month,
		Cells:         cells,
		Total:         sum.Total,
		AvgPerDay:     sum.AvgPerDay,
		TotalCost:     cost(sum.Total, p.Price),
		AvgCostPerDay: decimal.Zero,
	}
	if sum.DaysInMonth > 0 {
		v.AvgCostPerDay = v.TotalCost.Div(decimal.NewFromInt(int64(sum.DaysInMonth)))
	}
	return v
}
