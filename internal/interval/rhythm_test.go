package interval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beertime/internal/calendar"
	"beertime/internal/model"
)

func TestWeeklyRhythm(t *testing.T) {
	current := calendar.Date{Year: 2024, Month: time.January, Day: 17} // Wednesday
	records := []model.Record{
		{ID: "a", Timestamp: ms(2024, 1, 1, 20, 0), Amount: 1},
		{ID: "b", Timestamp: ms(2024, 1, 1, 22, 0), Amount: 1},
		{ID: "c", Timestamp: ms(2024, 1, 14, 20, 0), Amount: 1},
		{ID: "d", Timestamp: ms(2024, 1, 16, 20, 0), Amount: 1},
		{ID: "e", Timestamp: ms(2024, 1, 16, 21, 0), Amount: 1},
	}
	points := WeeklyRhythm(records, current, 3, rule)
	require.Len(t, points, 3)

	assert.Equal(t, calendar.Date{Year: 2024, Month: time.January, Day: 1}, points[0].Monday)
	assert.True(t, points[0].Meaningful)
	assert.Equal(t, 2.0, points[0].Hours)
	assert.Equal(t, "1/1", points[0].LabelText)

	assert.Equal(t, calendar.Date{Year: 2024, Month: time.January, Day: 8}, points[1].Monday)
	assert.False(t, points[1].Meaningful)
	assert.Equal(t, 1, points[1].Events)
	assert.Equal(t, 7.0, points[1].Hours)

	assert.Equal(t, calendar.WeekKey{Year: 2024, Week: 3}, points[2].Week)
	assert.Equal(t, time.Hour, points[2].Average)
	assert.True(t, points[2].Label)

	assert.Nil(t, WeeklyRhythm(records, current, 0, rule))
}

func TestLabelMask(t *testing.T) {
	assert.Equal(t, []bool{true, false, true}, LabelMask([]bool{true, false, true}))
	assert.Equal(t, []bool{false, false}, LabelMask([]bool{false, false}))

	in := []bool{true, true, true, true, true}
	assert.Equal(t, []bool{true, false, true, false, true}, LabelMask(in))

	in = []bool{true, true, false, true, true}
	assert.Equal(t, []bool{false, true, false, false, true}, LabelMask(in))
}
