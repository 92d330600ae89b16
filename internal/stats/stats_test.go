package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beertime/internal/calendar"
	"beertime/internal/model"
)

var rule = calendar.Rule{CutoffHour: 3, Location: time.UTC}

func at(y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC)
}

func rec(id string, t time.Time, amount float64) model.Record {
	return model.Record{ID: id, Timestamp: t.UnixMilli(), Amount: amount}
}

func params(now time.Time) Params {
	return Params{Now: now, Rule: rule, Price: decimal.RequireFromString("5.00")}
}

func TestEmptySnapshot(t *testing.T) {
	s := Compute(nil, params(at(2024, 1, 10, 12, 0)))
	assert.Equal(t, 0.0, s.Today.Count)
	assert.True(t, s.Today.Cost.IsZero())
	assert.Nil(t, s.Today.First)
	assert.Equal(t, 0.0, s.Week.AvgPerDay)
	assert.True(t, s.Week.CostTotal.IsZero())
	assert.Nil(t, s.Latest)
	assert.Equal(t, 0.0, s.Month.Total)
}

func TestTodayUsesLogicalDay(t *testing.T) {
	records := []model.Record{
		rec("a", at(2024, 1, 10, 2, 0), 1.0), // belongs to Jan 9
		rec("b", at(2024, 1, 10, 10, 0), 2.0),
		rec("c", at(2024, 1, 11, 1, 30), 0.5), // still Jan 10
	}
	now := at(2024, 1, 11, 2, 0)
	today := Today(records, params(now))
	assert.Equal(t, calendar.Date{Year: 2024, Month: time.January, Day: 10}, today.Date)
	assert.Equal(t, 2.5, today.Count)
	assert.Equal(t, "12.5", today.Cost.String())
	require.NotNil(t, today.First)
	assert.Equal(t, at(2024, 1, 10, 10, 0).UnixMilli(), *today.First)
}

func TestWeekAverageOnWednesday(t *testing.T) {
	records := []model.Record{
		rec("a", at(2024, 1, 7, 20, 0), 9.0), // previous Sunday
		rec("b", at(2024, 1, 8, 20, 0), 1.0),
		rec("c", at(2024, 1, 9, 20, 0), 2.0),
		rec("d", at(2024, 1, 10, 20, 0), 3.0),
	}
	w := Week(records, params(at(2024, 1, 10, 22, 0)))
	assert.Equal(t, calendar.Date{Year: 2024, Month: time.January, Day: 8}, w.From)
	assert.Equal(t, 3, w.DaysPassed)
	assert.Equal(t, 6.0, w.Count)
	assert.Equal(t, w.Count/float64(w.DaysPassed), w.AvgPerDay)
	assert.Equal(t, "30", w.CostTotal.String())
	assert.Equal(t, "10", w.CostAvgPerDay.String())
	require.Len(t, w.Days, 3)
	assert.Equal(t, DayTotal{Date: w.From, Count: 1.0}, w.Days[0])
	assert.Equal(t, 3.0, w.Days[2].Count)
}

func TestWeekOnMondayBeforeCutoffIsPreviousWeek(t *testing.T) {
	// Monday 01:00 is still Sunday's logical date, the seventh day of last week.
	w := Week(nil, params(at(2024, 1, 15, 1, 0)))
	assert.Equal(t, calendar.Date{Year: 2024, Month: time.January, Day: 8}, w.From)
	assert.Equal(t, 7, w.DaysPassed)
	assert.Len(t, w.Days, 7)
}

func TestMonthGrid(t *testing.T) {
	records := []model.Record{
		rec("a", at(2024, 2, 1, 20, 0), 2.0),
		rec("b", at(2024, 2, 2, 1, 0), 1.0), // Feb 1 logical
		rec("c", at(2024, 2, 29, 20, 0), 1.5),
		rec("d", at(2024, 3, 1, 2, 0), 0.5), // Feb 29 logical
	}
	v := Month(records, 2024, time.February, params(at(2024, 2, 10, 12, 0)))
	// 2024-02-01 is a Thursday: three blank cells then 29 days.
	require.Len(t, v.Cells, 3+29)
	assert.Nil(t, v.Cells[0].Date)
	require.NotNil(t, v.Cells[3].Date)
	assert.Equal(t, 1, v.Cells[3].Date.Day)
	assert.Equal(t, 3.0, v.Cells[3].Count)
	assert.Equal(t, 2.0, v.Cells[len(v.Cells)-1].Count)
	assert.True(t, v.Cells[3+9].Today)
	assert.Equal(t, 5.0, v.Total)
	assert.Equal(t, 5.0/29, v.AvgPerDay)
	assert.Equal(t, "25", v.TotalCost.String())
}

func TestHistory(t *testing.T) {
	records := []model.Record{
		rec("a", at(2024, 1, 10, 22, 0), 1.0),
		rec("b", at(2024, 1, 10, 20, 0), 1.5),
		rec("c", at(2024, 1, 11, 1, 0), 1.0),
		rec("d", at(2024, 1, 11, 12, 0), 1.0),
	}
	h := History(records, calendar.Date{Year: 2024, Month: time.January, Day: 10}, params(at(2024, 1, 11, 12, 0)))
	require.Len(t, h.Items, 3)
	assert.Equal(t, 3.5, h.Total)
	assert.Equal(t, 3, h.Summary.Count)
	require.NotNil(t, h.Summary.Average)
	assert.Equal(t, 150*time.Minute, *h.Summary.Average)
	assert.Equal(t, 3*time.Hour, *h.Summary.Longest)
}

func TestComputeLatestAndYearGraph(t *testing.T) {
	records := []model.Record{
		rec("a", at(2024, 3, 10, 20, 0), 1.0),
		rec("b", at(2024, 1, 10, 20, 0), 1.0),
	}
	p := params(at(2024, 3, 11, 12, 0))
	s := Compute(records, p)
	require.NotNil(t, s.Latest)
	assert.Equal(t, "a", s.Latest.ID)

	g := YearGraph(records, 2024, p)
	require.Len(t, g, 12)
	assert.Equal(t, 1.0, g[0].Total)
	assert.Equal(t, 1.0, g[2].Total)

	r := Rhythm(records, 15, p)
	require.Len(t, r, 15)
	assert.Equal(t, calendar.Date{Year: 2024, Month: time.March, Day: 11}, r[14].Monday)
}
