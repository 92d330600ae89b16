package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokyo = time.FixedZone("JST", 9*60*60)

func ms(t time.Time) int64 { return t.UnixMilli() }

func TestLogicalDateCutoffBoundary(t *testing.T) {
	day := Date{2024, time.January, 10}
	before := time.Date(2024, 1, 10, 2, 59, 59, 0, tokyo)
	at := time.Date(2024, 1, 10, 3, 0, 0, 0, tokyo)

	assert.Equal(t, day.AddDays(-1), LogicalDate(ms(before), 3, tokyo))
	assert.Equal(t, day, LogicalDate(ms(at), 3, tokyo))
}

func TestLogicalDateEveryHour(t *testing.T) {
	base := Date{2024, time.March, 1}
	for cutoff := 0; cutoff < 24; cutoff++ {
		for h := 0; h < 24; h++ {
			ts := time.Date(2024, 3, 1, h, 30, 0, 0, time.UTC)
			want := base
			if h < cutoff {
				want = base.AddDays(-1)
			}
			require.Equal(t, want, LogicalDate(ms(ts), cutoff, time.UTC), "cutoff=%d hour=%d", cutoff, h)
		}
	}
}

func TestLogicalDateUsesLocation(t *testing.T) {
	// 2024-01-10T01:00Z is 10:00 in Tokyo and 01:00 in UTC.
	ts := ms(time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, Date{2024, time.January, 9}, LogicalDate(ts, 3, time.UTC))
	assert.Equal(t, Date{2024, time.January, 10}, LogicalDate(ts, 3, tokyo))
}

func TestLogicalDateCrossesMonthAndYear(t *testing.T) {
	ts := ms(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, Date{2023, time.December, 31}, LogicalDate(ts, 3, time.UTC))
}

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func TestCurrentLogicalDate(t *testing.T) {
	at := time.Date(2024, 1, 10, 2, 0, 0, 0, time.UTC)
	assert.Equal(t, Date{2024, time.January, 9}, CurrentLogicalDate(fixedClock(at), 3, time.UTC))
	assert.Equal(t, Date{2024, time.January, 10}, CurrentLogicalDate(fixedClock(at.Add(time.Hour)), 3, time.UTC))
}

func TestDefaultRule(t *testing.T) {
	r := DefaultRule()
	assert.Equal(t, DefaultCutoffHour, r.CutoffHour)
	assert.Equal(t, time.Local, r.Loc())
}

func TestRuleStartMatchesDate(t *testing.T) {
	r := Rule{CutoffHour: 3, Location: tokyo}
	d := Date{2024, time.January, 10}
	start := r.Start(d)
	assert.Equal(t, d, r.DateOf(start))
	assert.Equal(t, d.AddDays(-1), r.DateOf(start.Add(-time.Millisecond)))
}

func TestRuleNilLocationFallsBackToLocal(t *testing.T) {
	r := Rule{CutoffHour: 3}
	ts := time.Date(2024, 1, 10, 12, 0, 0, 0, time.Local)
	assert.Equal(t, Date{2024, time.January, 10}, r.Date(ts.UnixMilli()))
}
