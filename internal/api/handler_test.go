package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beertime/internal/calendar"
	"beertime/internal/calendar/calendartest"
	"beertime/internal/model"
	"beertime/internal/prefs"
	"beertime/internal/stats"
	"beertime/internal/store/beerdb"
)

type fixture struct {
	db    *beerdb.DB
	clock *calendartest.FakeClock
	srv   http.Handler
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := beerdb.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	clock := calendartest.NewFakeClock(time.Date(2024, 1, 10, 22, 0, 0, 0, time.UTC))
	h := New(db, prefs.New(db), nil, Options{
		Clock: clock,
		Rule:  calendar.Rule{CutoffHour: 3, Location: time.UTC},
	})
	return &fixture{db: db, clock: clock, srv: Routes(h, nil)}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	f.srv.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func TestAddRecordDefaultsAndValidates(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/api/records", "")
	require.Equal(t, http.StatusCreated, w.Code)
	rec := decodeBody[model.Record](t, w)
	assert.Equal(t, 1.0, rec.Amount)
	assert.Equal(t, f.clock.Now().UnixMilli(), rec.Timestamp)

	w = f.do(t, http.MethodPost, "/api/records", `{"amount": 1.44}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1.4, decodeBody[model.Record](t, w).Amount)

	for _, body := range []string{`{"amount": 0}`, `{"amount": -1}`, `{"amount": "abc"}`, `not json`} {
		w = f.do(t, http.MethodPost, "/api/records", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	all, err := f.db.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTodayAndWeek(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, _ = f.db.Insert(ctx, time.Date(2024, 1, 10, 2, 0, 0, 0, time.UTC).UnixMilli(), 1.0)
	_, _ = f.db.Insert(ctx, time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC).UnixMilli(), 2.0)

	w := f.do(t, http.MethodGet, "/api/today", "")
	require.Equal(t, http.StatusOK, w.Code)
	today := decodeBody[stats.TodayStats](t, w)
	assert.Equal(t, 2.0, today.Count)
	assert.Equal(t, "10", today.Cost.String())

	w = f.do(t, http.MethodGet, "/api/week", "")
	require.Equal(t, http.StatusOK, w.Code)
	week := decodeBody[stats.WeekStats](t, w)
	assert.Equal(t, 3.0, week.Count)
	assert.Equal(t, 3, week.DaysPassed)
	assert.Equal(t, 1.0, week.AvgPerDay)
}

func TestMonthAndHistoryQueries(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, _ = f.db.Insert(ctx, time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC).UnixMilli(), 1.0)
	_, _ = f.db.Insert(ctx, time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC).UnixMilli(), 1.0)

	w := f.do(t, http.MethodGet, "/api/month?year=2024&month=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	month := decodeBody[stats.MonthView](t, w)
	assert.Equal(t, 2.0, month.Total)

	w = f.do(t, http.MethodGet, "/api/month?month=13", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/history?date=2024-01-09", "")
	require.Equal(t, http.StatusOK, w.Code)
	hist := decodeBody[stats.DayHistory](t, w)
	assert.Len(t, hist.Items, 2)
	require.NotNil(t, hist.Summary.Average)
	assert.Equal(t, 3*time.Hour, *hist.Summary.Average)

	w = f.do(t, http.MethodGet, "/api/history?date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/graph/rhythm?weeks=4", "")
	require.Equal(t, http.StatusOK, w.Code)
	rhythm := decodeBody[map[string][]json.RawMessage](t, w)
	assert.Len(t, rhythm["weeks"], 4)

	w = f.do(t, http.MethodGet, "/api/graph/year", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestEditAndDeleteDay(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, _ = f.db.Insert(ctx, time.Date(2024, 1, 9, 20, 0, 0, 0, time.UTC).UnixMilli(), 1.0)
	_, _ = f.db.Insert(ctx, time.Date(2024, 1, 10, 1, 0, 0, 0, time.UTC).UnixMilli(), 1.0)

	w := f.do(t, http.MethodPut, "/api/days/2024-01-09", `{"amount": 3.25}`)
	require.Equal(t, http.StatusOK, w.Code)
	out := decodeBody[map[string]any](t, w)
	assert.Equal(t, 3.3, out["total"])

	all, err := f.db.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 3.3, all[0].Amount)

	w = f.do(t, http.MethodPut, "/api/days/2024-01-09", `{"amount": -2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodPut, "/api/days/09-01-2024", `{"amount": 2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodDelete, "/api/days/2024-01-09", "")
	require.Equal(t, http.StatusOK, w.Code)
	all, err = f.db.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUndoDeleteAndReset(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	w := f.do(t, http.MethodDelete, "/api/records/latest", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	a, _ := f.db.Insert(ctx, time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC).UnixMilli(), 1.0)
	b, _ := f.db.Insert(ctx, time.Date(2024, 1, 10, 19, 0, 0, 0, time.UTC).UnixMilli(), 1.0)
	_, _ = f.db.Insert(ctx, time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC).UnixMilli(), 1.0)

	w = f.do(t, http.MethodDelete, "/api/records/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC).UnixMilli(), decodeBody[model.Record](t, w).Timestamp)

	w = f.do(t, http.MethodDelete, "/api/records/"+a.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodDelete, "/api/records/"+a.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodDelete, "/api/records", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]int64{"deleted": 1}, decodeBody[map[string]int64](t, w))
	_, ok, err := f.db.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "record %s should be gone", b.ID)
}

func TestPrefsEndpoints(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/api/prefs/price", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"price": "5.00", "formatted": "$5.00"}, decodeBody[map[string]string](t, w))

	w = f.do(t, http.MethodPut, "/api/prefs/language", `{"language": "ja"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "¥", decodeBody[map[string]string](t, w)["currency"])

	w = f.do(t, http.MethodPut, "/api/prefs/price", `{"price": 600}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "¥600.00", decodeBody[map[string]string](t, w)["formatted"])

	w = f.do(t, http.MethodPut, "/api/prefs/price", `{"price": -1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(t, http.MethodPut, "/api/prefs/language", `{"language": "xx"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdGateEndpoints(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodGet, "/api/ads/should-show", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody[map[string]any](t, w)["show"])

	w = f.do(t, http.MethodPost, "/api/ads/shown", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/ads/should-show", "")
	assert.Equal(t, false, decodeBody[map[string]any](t, w)["show"])

	f.clock.Advance(3 * time.Hour) // 01:00, next slot
	w = f.do(t, http.MethodGet, "/api/ads/should-show", "")
	assert.Equal(t, true, decodeBody[map[string]any](t, w)["show"])
}

func TestStatsUsesWatcherSnapshot(t *testing.T) {
	db, err := beerdb.Open(":memory:")
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()
	clock := calendartest.NewFakeClock(time.Date(2024, 1, 10, 22, 0, 0, 0, time.UTC))
	rule := calendar.Rule{CutoffHour: 3, Location: time.UTC}
	repo := prefs.New(db)
	watcher := stats.NewWatcher(db, repo, clock, rule)

	_, _ = db.Insert(ctx, time.Date(2024, 1, 10, 20, 0, 0, 0, time.UTC).UnixMilli(), 1.5)
	require.NoError(t, watcher.Recompute(ctx))

	srv := Routes(New(db, repo, watcher, Options{Clock: clock, Rule: rule}), nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	s := decodeBody[stats.Stats](t, w)
	assert.Equal(t, 1.5, s.Today.Count)
	require.NotNil(t, s.Latest)
}

func TestNewDefaultsZeroOptions(t *testing.T) {
	h := New(nil, nil, nil, Options{})
	assert.Equal(t, calendar.DefaultRule(), h.opts.Rule)
	assert.Equal(t, calendar.RealClock{}, h.opts.Clock)
	assert.Equal(t, model.DefaultAmount, h.opts.DefaultAmount)
	assert.Equal(t, 15, h.opts.WeeksPerPage)
}

func TestRateLimit(t *testing.T) {
	f := setup(t)
	h := New(f.db, prefs.New(f.db), nil, Options{Clock: f.clock})
	srv := Routes(h, NewLimiter(0.001, 2))

	codes := make([]int, 3)
	for i := range codes {
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
