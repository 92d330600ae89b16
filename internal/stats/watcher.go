package stats

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"beertime/internal/calendar"
	"beertime/internal/logging"
	"beertime/internal/metrics"
	"beertime/internal/model"
	"beertime/internal/notify"
)

// Source provides record snapshots and change signals.
type Source interface {
	All(ctx context.Context) ([]model.Record, error)
	Subscribe() (<-chan struct{}, func())
}

// PriceSource provides the current unit price and change signals.
type PriceSource interface {
	Price(ctx context.Context) (decimal.Decimal, error)
	Subscribe() (<-chan struct{}, func())
}

// Watcher keeps a Stats snapshot current. It recomputes whenever the record
// source or the price changes, or when Refresh is called.
type Watcher struct {
	src   Source
	price PriceSource
	clock calendar.Clock
	rule  calendar.Rule

	refresh chan struct{}
	hub     *notify.Hub

	mu      sync.RWMutex
	records []model.Record
	current Stats
	params  Params
}

// NewWatcher builds a watcher; a zero rule means calendar.DefaultRule and a
// nil clock the real one.
func NewWatcher(src Source, price PriceSource, clock calendar.Clock, rule calendar.Rule) *Watcher {
	if rule == (calendar.Rule{}) {
		rule = calendar.DefaultRule()
	}
	if clock == nil {
		clock = calendar.RealClock{}
	}
	return &Watcher{
		src:     src,
		price:   price,
		clock:   clock,
		rule:    rule,
		refresh: make(chan struct{}, 1),
		hub:     notify.NewHub(),
	}
}

// Current returns the latest computed stats.
func (w *Watcher) Current() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Snapshot returns the records and params the current stats were computed from.
func (w *Watcher) Snapshot() ([]model.Record, Params) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.records, w.params
}

// Subscribe returns a channel signalled after every recompute.
func (w *Watcher) Subscribe() (<-chan struct{}, func()) { return w.hub.Subscribe() }

// Refresh asks the running watcher to recompute, e.g. after a day rollover.
func (w *Watcher) Refresh() {
	select {
	case w.refresh <- struct{}{}:
	default:
	}
}

// Recompute loads a fresh snapshot and recomputes synchronously.
func (w *Watcher) Recompute(ctx context.Context) error {
	start := time.Now()
	records, err := w.src.All(ctx)
	if err != nil {
		return err
	}
	price, err := w.price.Price(ctx)
	if err != nil {
		return err
	}
	p := Params{Now: w.clock.Now(), Rule: w.rule, Price: price}
	s := Compute(records, p)

	w.mu.Lock()
	w.records = records
	w.params = p
	w.current = s
	w.mu.Unlock()

	metrics.StatsRecomputes.Inc()
	metrics.ObserveStatsDuration(start)
	w.hub.Publish()
	return nil
}

// Run computes once, then recomputes on each signal until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	records, cancelRecords := w.src.Subscribe()
	defer cancelRecords()
	prices, cancelPrices := w.price.Subscribe()
	defer cancelPrices()

	if err := w.Recompute(ctx); err != nil {
		logging.Error("stats_recompute_error", map[string]any{"error": err.Error()})
	}
	for {
		select {
		case <-ctx.Done():
			logging.Info("stats_watcher_stop", nil)
			return ctx.Err()
		case <-records:
		case <-prices:
		case <-w.refresh:
		}
		if err := w.Recompute(ctx); err != nil {
			logging.Error("stats_recompute_error", map[string]any{"error": err.Error()})
		}
	}
}
