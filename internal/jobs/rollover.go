package jobs

import (
	"context"
	"sync"
	"time"

	"beertime/internal/calendar"
	"beertime/internal/logging"
	"beertime/internal/metrics"
	"beertime/internal/schedule"
)

// minWait keeps the loop from spinning right at a cutoff boundary.
const minWait = time.Second

// Refresher is told to recompute when the logical date changes.
type Refresher interface {
	Refresh()
}

// Rollover tracks the current logical date and signals when it moves.
type Rollover struct {
	clock  calendar.Clock
	rule   calendar.Rule
	target Refresher

	mu   sync.Mutex
	last calendar.Date
	seen bool
}

func NewRollover(clock calendar.Clock, rule calendar.Rule, target Refresher) *Rollover {
	return &Rollover{clock: clock, rule: rule, target: target}
}

// Last returns the logical date observed by the most recent check.
func (r *Rollover) Last() (calendar.Date, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.seen
}

// RunRolloverOnce compares the current logical date with the last one seen
// and refreshes the target when it changed. The first call only records it.
func RunRolloverOnce(ctx context.Context, r *Rollover) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	today := r.rule.DateOf(r.clock.Now())
	r.mu.Lock()
	prev, seen := r.last, r.seen
	r.last, r.seen = today, true
	r.mu.Unlock()

	if !seen || prev == today {
		return false, nil
	}
	metrics.Rollovers.Inc()
	logging.Info("day_rollover", map[string]any{"from": prev.String(), "to": today.String()})
	r.target.Refresh()
	return true, nil
}

// RunRolloverLoop checks for a new logical day at the next cutoff, or every
// interval if that comes first, until ctx is cancelled.
func RunRolloverLoop(ctx context.Context, r *Rollover, interval time.Duration) error {
	_, _ = RunRolloverOnce(ctx, r)
	for {
		wait := schedule.UntilNextCutoff(r.clock.Now(), r.rule.CutoffHour, r.rule.Loc(), minWait)
		if interval > 0 && interval < wait {
			wait = interval
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			logging.Info("rollover_loop_stop", nil)
			return ctx.Err()
		case <-t.C:
			if _, err := RunRolloverOnce(ctx, r); err != nil {
				logging.Error("rollover_once_error", map[string]any{"error": err.Error()})
			}
		}
	}
}
