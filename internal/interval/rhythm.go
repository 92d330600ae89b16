package interval

import (
	"fmt"
	"time"

	"beertime/internal/calendar"
	"beertime/internal/model"
)

// WeekPoint is one point of the weekly-rhythm chart.
type WeekPoint struct {
	Monday     calendar.Date    `json:"monday"`
	Week       calendar.WeekKey `json:"week"`
	Average    time.Duration    `json:"average"`
	Hours      float64          `json:"hours"`
	Events     int              `json:"events"`
	Meaningful bool             `json:"meaningful"`
	Label      bool             `json:"label"`
	LabelText  string           `json:"labelText"`
}

// WeeklyRhythm builds weeks points ending with the week of currentMonday,
// oldest first. A week is meaningful when it holds at least two records.
func WeeklyRhythm(records []model.Record, currentMonday calendar.Date, weeks int, rule calendar.Rule) []WeekPoint {
	if weeks <= 0 {
		return nil
	}
	byWeek := make(map[calendar.WeekKey][]int64)
	for _, r := range records {
		k := rule.Date(r.Timestamp).ISOWeek()
		byWeek[k] = append(byWeek[k], r.Timestamp)
	}
	end := currentMonday.Monday()
	out := make([]WeekPoint, weeks)
	for i := range out {
		monday := end.AddDays(-7 * (weeks - 1 - i))
		key := monday.ISOWeek()
		ts := byWeek[key]
		avg := AverageWeekly(ts, monday, rule)
		out[i] = WeekPoint{
			Monday:     monday,
			Week:       key,
			Average:    avg,
			Hours:      avg.Hours(),
			Events:     len(ts),
			Meaningful: len(ts) >= 2,
			LabelText:  fmt.Sprintf("%d/%d", int(monday.Month), monday.WeekOfMonth()),
		}
	}
	mask := make([]bool, len(out))
	for i, p := range out {
		mask[i] = p.Meaningful
	}
	for i, l := range LabelMask(mask) {
		out[i].Label = l
	}
	return out
}

// LabelMask picks which meaningful points get a value label. Up to three
// meaningful points are all labelled; beyond that the newest one and every
// second one counting back from it are.
func LabelMask(meaningful []bool) []bool {
	out := make([]bool, len(meaningful))
	var idx []int
	for i := len(meaningful) - 1; i >= 0; i-- {
		if meaningful[i] {
			idx = append(idx, i)
		}
	}
	if len(idx) <= 3 {
		for _, i := range idx {
			out[i] = true
		}
		return out
	}
	for n, i := range idx {
		if n%2 == 0 {
			out[i] = true
		}
	}
	return out
}
