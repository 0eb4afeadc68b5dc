package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one input record as it arrives on the wire, before any
// validation. All fields are strings; the parser decides what they mean.
type RawRecord struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	LoadAmount string `json:"load_amount"`
	Time       string `json:"time"`
}

// LoadRequest is a validated fund-load request. It is created fresh per input
// record, never mutated, and discarded once its audit record is emitted.
type LoadRequest struct {
	ID         string
	CustomerID string
	Amount     decimal.Decimal
	Timestamp  time.Time

	// RawAmount is the amount exactly as submitted (e.g. "$1,234.56").
	// Output records echo this, not the parsed value.
	RawAmount string
}

// Date returns the UTC calendar date of the request in YYYY-MM-DD form,
// the key used for all daily ledger buckets.
func (r LoadRequest) Date() string {
	return r.Timestamp.UTC().Format(time.DateOnly)
}
