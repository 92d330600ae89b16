package util

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrNotNumeric     = errors.New("amount is not a number")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrZeroAmount     = errors.New("amount must be positive")
)

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrNotNumeric
	}
	return d, nil
}

// ParseAmount validates a new drink amount: blank input takes fallback, the
// value must be positive and is rounded to one decimal.
func ParseAmount(s string, fallback float64) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return Round1(fallback), nil
	}
	d, err := parse(s)
	if err != nil {
		return 0, err
	}
	if !d.IsPositive() {
		return 0, ErrZeroAmount
	}
	return d.Round(1).InexactFloat64(), nil
}

// ParseDayTotal validates an edited day total: zero is allowed, negatives are not.
func ParseDayTotal(s string) (float64, error) {
	d, err := parse(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, ErrNegativeAmount
	}
	return d.Round(1).InexactFloat64(), nil
}

// ParsePrice validates a non-negative price per unit.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}
