// Package adgate decides whether an interstitial may be shown: at most once
// per six-hour slot and never for ad-free users. Loading and rendering ads
// is left to the client.
package adgate

import (
	"context"
	"time"

	"beertime/internal/prefs"
)

// Prefs is the subset of the preferences repository the gate needs.
type Prefs interface {
	AdFree(ctx context.Context) (bool, error)
	LastAdSlot(ctx context.Context) (prefs.Slot, error)
	SetLastAdSlot(ctx context.Context, s prefs.Slot) error
}

// CurrentSlot returns the slot of now's wall-clock hour in loc.
func CurrentSlot(now time.Time, loc *time.Location) prefs.Slot {
	return prefs.SlotForHour(now.In(loc).Hour())
}

// ShouldShow reports whether an ad may be shown at now.
func ShouldShow(ctx context.Context, p Prefs, now time.Time, loc *time.Location) (bool, error) {
	free, err := p.AdFree(ctx)
	if err != nil {
		return false, err
	}
	if free {
		return false, nil
	}
	last, err := p.LastAdSlot(ctx)
	if err != nil {
		return false, err
	}
	return CurrentSlot(now, loc) != last, nil
}

// MarkShown consumes the current slot. Call it only after an ad was actually
// displayed and dismissed.
func MarkShown(ctx context.Context, p Prefs, now time.Time, loc *time.Location) error {
	return p.SetLastAdSlot(ctx, CurrentSlot(now, loc))
}
