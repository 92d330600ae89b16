// Package prefs exposes typed user preferences stored in the event database.
// Missing or unreadable values fall back to defaults.
package prefs

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"beertime/internal/locale"
	"beertime/internal/logging"
	"beertime/internal/notify"
)

const (
	keyPrice      = "price_per_unit"
	keyLanguage   = "app_language"
	keyLastAdSlot = "last_ad_time_slot"
	keyAdFree     = "is_ad_free"
)

// DefaultPrice is the price of one unit when none was configured.
var DefaultPrice = decimal.RequireFromString("5.00")

// Store is the key/value backend.
type Store interface {
	LoadPref(ctx context.Context, key string) (string, bool, error)
	SavePref(ctx context.Context, key, value string) error
}

type Repository struct {
	store Store
	hub   *notify.Hub
}

func New(store Store) *Repository {
	return &Repository{store: store, hub: notify.NewHub()}
}

// Subscribe returns a channel signalled after each successful write.
func (r *Repository) Subscribe() (<-chan struct{}, func()) { return r.hub.Subscribe() }

func (r *Repository) save(ctx context.Context, key, value string) error {
	if err := r.store.SavePref(ctx, key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	r.hub.Publish()
	return nil
}

func (r *Repository) load(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := r.store.LoadPref(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	return v, ok, nil
}

func (r *Repository) Price(ctx context.Context) (decimal.Decimal, error) {
	v, ok, err := r.load(ctx, keyPrice)
	if err != nil || !ok {
		return DefaultPrice, err
	}
	p, err := decimal.NewFromString(v)
	if err != nil || p.IsNegative() {
		logging.Warn("prefs_bad_price", map[string]any{"value": v})
		return DefaultPrice, nil
	}
	return p, nil
}

func (r *Repository) SetPrice(ctx context.Context, p decimal.Decimal) error {
	if p.IsNegative() {
		return fmt.Errorf("set price: negative price %s", p)
	}
	return r.save(ctx, keyPrice, p.String())
}

func (r *Repository) Language(ctx context.Context) (locale.Language, error) {
	v, ok, err := r.load(ctx, keyLanguage)
	if err != nil || !ok {
		return locale.System, err
	}
	l, known := locale.Parse(v)
	if !known {
		logging.Warn("prefs_unknown_language", map[string]any{"value": v})
	}
	return l, nil
}

func (r *Repository) SetLanguage(ctx context.Context, l locale.Language) error {
	if _, ok := locale.Parse(string(l)); !ok {
		return fmt.Errorf("set language: unsupported tag %q", l)
	}
	return r.save(ctx, keyLanguage, string(l))
}

func (r *Repository) LastAdSlot(ctx context.Context) (Slot, error) {
	v, ok, err := r.load(ctx, keyLastAdSlot)
	if err != nil || !ok {
		return SlotNone, err
	}
	return ParseSlot(v), nil
}

func (r *Repository) SetLastAdSlot(ctx context.Context, s Slot) error {
	return r.save(ctx, keyLastAdSlot, string(s))
}

func (r *Repository) AdFree(ctx context.Context) (bool, error) {
	v, ok, err := r.load(ctx, keyAdFree)
	if err != nil || !ok {
		return false, err
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, nil
	}
	return b, nil
}

func (r *Repository) SetAdFree(ctx context.Context, adFree bool) error {
	return r.save(ctx, keyAdFree, strconv.FormatBool(adFree))
}
