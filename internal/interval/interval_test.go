package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beertime/internal/calendar"
)

var rule = calendar.Rule{CutoffHour: 3, Location: time.UTC}

func ms(y int, m time.Month, d, h, min int) int64 {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC).UnixMilli()
}

func TestBuildItemsSortsAndPairs(t *testing.T) {
	a := ms(2024, 1, 10, 18, 0)
	b := ms(2024, 1, 10, 19, 30)
	c := ms(2024, 1, 10, 23, 0)
	items := BuildItems([]int64{c, a, b})
	require.Len(t, items, 3)

	assert.Equal(t, 1, items[0].Index)
	assert.Nil(t, items[0].Previous)
	assert.Nil(t, items[0].Interval)
	assert.Equal(t, a, items[0].Current)

	require.NotNil(t, items[1].Interval)
	assert.Equal(t, 90*time.Minute, *items[1].Interval)
	assert.Equal(t, a, *items[1].Previous)
	assert.Equal(t, 3*time.Hour+30*time.Minute, *items[2].Interval)
	assert.Equal(t, 3, items[2].Index)

	assert.Nil(t, BuildItems(nil))
}

func TestSummarizeDay(t *testing.T) {
	items := BuildItems([]int64{ms(2024, 1, 10, 18, 0), ms(2024, 1, 10, 19, 0), ms(2024, 1, 10, 22, 0)})
	s := SummarizeDay(items)
	assert.Equal(t, 3, s.Count)
	require.NotNil(t, s.Average)
	assert.Equal(t, 2*time.Hour, *s.Average)
	assert.Equal(t, 3*time.Hour, *s.Longest)

	single := SummarizeDay(BuildItems([]int64{ms(2024, 1, 10, 18, 0)}))
	assert.Equal(t, 1, single.Count)
	assert.Nil(t, single.Average)
	assert.Nil(t, single.Longest)
}

func TestAverageWeeklyNoEventsIsSentinel(t *testing.T) {
	monday := calendar.Date{Year: 2024, Month: time.January, Day: 8}
	assert.Equal(t, 24*time.Hour, AverageWeekly(nil, monday, rule))
}

func TestAverageWeeklySingleEventCountsToNextWeekStart(t *testing.T) {
	monday := calendar.Date{Year: 2024, Month: time.January, Day: 8}

	// Sunday 20:00; next week starts Monday 03:00, seven hours later.
	sunday := ms(2024, 1, 14, 20, 0)
	assert.Equal(t, 7*time.Hour, AverageWeekly([]int64{sunday}, monday, rule))

	// Early in the week the remaining time exceeds the cap.
	tuesday := ms(2024, 1, 9, 20, 0)
	assert.Equal(t, 24*time.Hour, AverageWeekly([]int64{tuesday}, monday, rule))

	// Monday 02:00 of the following week is still inside this week.
	late := ms(2024, 1, 15, 2, 0)
	assert.Equal(t, time.Hour, AverageWeekly([]int64{late}, monday, rule))
}

func TestAverageWeeklyAveragesPositiveGaps(t *testing.T) {
	monday := calendar.Date{Year: 2024, Month: time.January, Day: 8}
	ts := []int64{
		ms(2024, 1, 8, 20, 0),
		ms(2024, 1, 8, 20, 0), // duplicate gap of zero is dropped
		ms(2024, 1, 8, 21, 0),
		ms(2024, 1, 8, 23, 0),
	}
	assert.Equal(t, 90*time.Minute, AverageWeekly(ts, monday, rule))
}

func TestAverageWeeklyCapsAndZeroGaps(t *testing.T) {
	monday := calendar.Date{Year: 2024, Month: time.January, Day: 8}
	spread := []int64{ms(2024, 1, 8, 12, 0), ms(2024, 1, 12, 12, 0)}
	assert.Equal(t, 24*time.Hour, AverageWeekly(spread, monday, rule))

	same := []int64{ms(2024, 1, 8, 12, 0), ms(2024, 1, 8, 12, 0)}
	assert.Equal(t, 24*time.Hour, AverageWeekly(same, monday, rule))
}

func TestFormatHoursMinutes(t *testing.T) {
	assert.Equal(t, "--", FormatHoursMinutes(0))
	assert.Equal(t, "--", FormatHoursMinutes(-time.Minute))
	assert.Equal(t, "0min", FormatHoursMinutes(30*time.Second))
	assert.Equal(t, "45min", FormatHoursMinutes(45*time.Minute))
	assert.Equal(t, "1h 05m", FormatHoursMinutes(65*time.Minute))
	assert.Equal(t, "26h 00m", FormatHoursMinutes(26*time.Hour))
}
