// Package api serves the stats views and record operations as local JSON
// endpoints for any UI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"beertime/internal/adgate"
	"beertime/internal/calendar"
	"beertime/internal/locale"
	"beertime/internal/logging"
	"beertime/internal/model"
	"beertime/internal/prefs"
	"beertime/internal/stats"
	"beertime/internal/util"
)

const maxRhythmWeeks = 520

// Store is the event store surface the handlers use.
type Store interface {
	stats.DayEditor
	Insert(ctx context.Context, tsMillis int64, amount float64) (model.Record, error)
	DeleteLatest(ctx context.Context) (model.Record, bool, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
	All(ctx context.Context) ([]model.Record, error)
}

type Options struct {
	Clock         calendar.Clock
	Rule          calendar.Rule
	DefaultAmount float64
	WeeksPerPage  int
}

type Handler struct {
	store   Store
	prefs   *prefs.Repository
	watcher *stats.Watcher
	opts    Options
}

// New builds a handler. watcher may be nil, in which case /api/stats is
// computed per request. A zero Rule means calendar.DefaultRule.
func New(store Store, p *prefs.Repository, w *stats.Watcher, opts Options) *Handler {
	if opts.Rule == (calendar.Rule{}) {
		opts.Rule = calendar.DefaultRule()
	}
	if opts.Clock == nil {
		opts.Clock = calendar.RealClock{}
	}
	if opts.DefaultAmount <= 0 {
		opts.DefaultAmount = model.DefaultAmount
	}
	if opts.WeeksPerPage <= 0 {
		opts.WeeksPerPage = 15
	}
	return &Handler{store: store, prefs: p, watcher: w, opts: opts}
}

type amountRequest struct {
	Amount json.Number `json:"amount"`
}

type priceRequest struct {
	Price json.Number `json:"price"`
}

type languageRequest struct {
	Language string `json:"language"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		logging.Error("api_error", map[string]any{"error": err.Error()})
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// statusFor maps input validation failures to 400 and the rest to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, util.ErrNotNumeric),
		errors.Is(err, util.ErrNegativeAmount),
		errors.Is(err, util.ErrZeroAmount),
		errors.Is(err, stats.ErrNegativeAmount),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func badRequest(msg string) error { return &requestError{msg: msg} }

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("invalid request body")
	}
	return nil
}

// snapshot loads fresh records and the params views are computed with.
func (h *Handler) snapshot(ctx context.Context) ([]model.Record, stats.Params, error) {
	records, err := h.store.All(ctx)
	if err != nil {
		return nil, stats.Params{}, err
	}
	price, err := h.prefs.Price(ctx)
	if err != nil {
		return nil, stats.Params{}, err
	}
	return records, stats.Params{Now: h.opts.Clock.Now(), Rule: h.opts.Rule, Price: price}, nil
}

func queryInt(r *http.Request, key string, fallback, lo, hi int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, badRequest("invalid " + key)
	}
	return n, nil
}

func parseDate(s string, fallback calendar.Date) (calendar.Date, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := calendar.ParseDate(s)
	if err != nil {
		return calendar.Date{}, badRequest("invalid date, want YYYY-MM-DD")
	}
	return d, nil
}

// GET /api/stats
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if h.watcher != nil {
		writeJSON(w, http.StatusOK, h.watcher.Current())
		return
	}
	records, p, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Compute(records, p))
}

// GET /api/today
func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	records, p, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Today(records, p))
}

// GET /api/week
func (h *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	records, p, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Week(records, p))
}

// GET /api/month?year=&month=
func (h *Handler) HandleMonth(w http.ResponseWriter, r *http.Request) {
	records, p, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	today := p.Today()
	year, err := queryInt(r, "year", today.Year, 1, 9999)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	month, err := queryInt(r, "month", int(today.Month), 1, 12)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Month(records, year, time.Month(month), p))
}

// GET /api/history?date=
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	records, p, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	date, err := parseDate(r.URL.Query().Get("date"), p.Today())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, stats.History(records, date, p))
}

// GET /api/graph/year?year=
func (h *Handler) HandleYearGraph(w http.ResponseWriter, r *http.Request) {
	records, p, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	year, err := queryInt(r, "year", p.Today().Year, 1, 9999)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"year": year, "months": stats.YearGraph(records, year, p)})
}

// GET /api/graph/rhythm?weeks=
func (h *Handler) HandleRhythm(w http.ResponseWriter, r *http.Request) {
	records, p, err := h.snapshot(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	weeks, err := queryInt(r, "weeks", h.opts.WeeksPerPage, 1, maxRhythmWeeks)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weeks": stats.Rhythm(records, weeks, p)})
}

// POST /api/records - record one drink now; a missing amount uses the default
func (h *Handler) HandleAddRecord(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
	}
	amount, err := util.ParseAmount(req.Amount.String(), h.opts.DefaultAmount)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	rec, err := h.store.Insert(r.Context(), h.opts.Clock.Now().UnixMilli(), amount)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// DELETE /api/records/latest - undo
func (h *Handler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := h.store.DeleteLatest(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no records"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DELETE /api/records/{id}
func (h *Handler) HandleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	ok, err := h.store.DeleteByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "record not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DELETE /api/records
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.DeleteAll(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

// PUT /api/days/{date}
func (h *Handler) HandleEditDay(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, badRequest("invalid date, want YYYY-MM-DD"))
		return
	}
	var req amountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	total, err := util.ParseDayTotal(req.Amount.String())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	total, err = stats.EditDayAmount(r.Context(), h.store, date, total, h.opts.Rule)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "total": total})
}

// DELETE /api/days/{date}
func (h *Handler) HandleDeleteDay(w http.ResponseWriter, r *http.Request) {
	date, err := calendar.ParseDate(r.PathValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, badRequest("invalid date, want YYYY-MM-DD"))
		return
	}
	n, err := stats.DeleteDay(r.Context(), h.store, date, h.opts.Rule)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "deleted": n})
}

func (h *Handler) priceView(ctx context.Context) (map[string]string, error) {
	price, err := h.prefs.Price(ctx)
	if err != nil {
		return nil, err
	}
	lang, err := h.prefs.Language(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{"price": price.StringFixed(2), "formatted": lang.FormatCost(price)}, nil
}

// GET /api/prefs/price
func (h *Handler) HandleGetPrice(w http.ResponseWriter, r *http.Request) {
	v, err := h.priceView(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// PUT /api/prefs/price
func (h *Handler) HandleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	price, err := util.ParsePrice(req.Price.String())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if err := h.prefs.SetPrice(r.Context(), price); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.HandleGetPrice(w, r)
}

// GET /api/prefs/language
func (h *Handler) HandleGetLanguage(w http.ResponseWriter, r *http.Request) {
	lang, err := h.prefs.Language(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"language": string(lang), "currency": lang.CurrencySymbol()})
}

// PUT /api/prefs/language
func (h *Handler) HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	var req languageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	lang, ok := locale.Parse(req.Language)
	if !ok {
		writeError(w, http.StatusBadRequest, badRequest("unsupported language "+strconv.Quote(req.Language)))
		return
	}
	if err := h.prefs.SetLanguage(r.Context(), lang); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	h.HandleGetLanguage(w, r)
}

// GET /api/ads/should-show
func (h *Handler) HandleShouldShowAd(w http.ResponseWriter, r *http.Request) {
	now := h.opts.Clock.Now()
	show, err := adgate.ShouldShow(r.Context(), h.prefs, now, h.opts.Rule.Loc())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"show": show, "slot": adgate.CurrentSlot(now, h.opts.Rule.Loc())})
}

// POST /api/ads/shown
func (h *Handler) HandleAdShown(w http.ResponseWriter, r *http.Request) {
	if err := adgate.MarkShown(r.Context(), h.prefs, h.opts.Clock.Now(), h.opts.Rule.Loc()); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
