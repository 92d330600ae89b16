package model

import "time"

// DefaultAmount is the quantity of a record created without an explicit amount.
const DefaultAmount = 1.0

// Record is one logged drink.
type Record struct {
	ID        string  `json:"id"`
	Timestamp int64   `json:"timestamp"` // ms since epoch
	Amount    float64 `json:"amount"`
}

// Time returns the record's instant in loc.
func (r Record) Time(loc *time.Location) time.Time {
	return time.UnixMilli(r.Timestamp).In(loc)
}

// Timestamps extracts the record timestamps in input order.
func Timestamps(records []Record) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.Timestamp
	}
	return out
}
