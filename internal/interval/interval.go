// Package interval measures the time between consecutive drinks.
package interval

import (
	"fmt"
	"sort"
	"time"

	"beertime/internal/calendar"
	"beertime/internal/schedule"
)

// MaxWeekly caps the weekly average interval. A week with no usable data
// reports this value so it plots at the top of a 0-24h chart.
const MaxWeekly = 24 * time.Hour

// Item pairs a record timestamp with its predecessor in the same scope.
type Item struct {
	Index    int            `json:"index"`
	Previous *int64         `json:"previous,omitempty"`
	Current  int64          `json:"current"`
	Interval *time.Duration `json:"interval,omitempty"`
}

// DaySummary holds the history-view statistics for one scope.
type DaySummary struct {
	Count   int            `json:"count"`
	Average *time.Duration `json:"average,omitempty"`
	Longest *time.Duration `json:"longest,omitempty"`
}

// BuildItems sorts timestamps ascending and pairs each with its predecessor.
// The first item has no interval. Index is 1-based.
func BuildItems(timestamps []int64) []Item {
	if len(timestamps) == 0 {
		return nil
	}
	sorted := sortedCopy(timestamps)
	out := make([]Item, len(sorted))
	for i, cur := range sorted {
		it := Item{Index: i + 1, Current: cur}
		if i > 0 {
			prev := sorted[i-1]
			d := time.Duration(cur-prev) * time.Millisecond
			it.Previous = &prev
			it.Interval = &d
		}
		out[i] = it
	}
	return out
}

// SummarizeDay averages (integer milliseconds) and maximizes the intervals of items.
func SummarizeDay(items []Item) DaySummary {
	s := DaySummary{Count: len(items)}
	var sum, n int64
	var longest time.Duration
	for _, it := range items {
		if it.Interval == nil {
			continue
		}
		ms := it.Interval.Milliseconds()
		sum += ms
		n++
		if n == 1 || *it.Interval > longest {
			longest = *it.Interval
		}
	}
	if n > 0 {
		avg := time.Duration(sum/n) * time.Millisecond
		s.Average = &avg
		s.Longest = &longest
	}
	return s
}

// AverageWeekly returns the average gap between consecutive drinks of the ISO
// week starting at monday, clamped to [0, MaxWeekly].
//
// Two or more timestamps average their positive consecutive gaps; if every gap
// is zero the result is MaxWeekly. A single timestamp measures the time left
// until the next week's first logical day begins. No timestamps yield MaxWeekly.
func AverageWeekly(timestamps []int64, monday calendar.Date, rule calendar.Rule) time.Duration {
	switch len(timestamps) {
	case 0:
		return MaxWeekly
	case 1:
		end := schedule.NextWeekStart(monday, rule.CutoffHour, rule.Loc())
		return clamp(end.Sub(time.UnixMilli(timestamps[0])))
	}
	sorted := sortedCopy(timestamps)
	var sum, n int64
	for i := 1; i < len(sorted); i++ {
		diff := sorted[i] - sorted[i-1]
		if diff <= 0 {
			continue
		}
		sum += diff
		n++
	}
	if n == 0 {
		return MaxWeekly
	}
	return clamp(time.Duration(sum/n) * time.Millisecond)
}

func clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > MaxWeekly {
		return MaxWeekly
	}
	return d
}

// FormatHoursMinutes renders "{h}h {mm}m", or "{m}min" under an hour.
// Non-positive durations render as "--".
func FormatHoursMinutes(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	totalMinutes := int64(d / time.Minute)
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, minutes)
	}
	return fmt.Sprintf("%dmin", minutes)
}

func sortedCopy(ts []int64) []int64 {
	out := append([]int64(nil), ts...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
