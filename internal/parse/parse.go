// Package parse turns one raw input record into either a validated
// LoadRequest or a terminal format-error reason. It is a pure function of the
// record: no ledger state is consulted and nothing is mutated.
package parse

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fund-adjudicator/internal/domain"
)

// amountPattern matches the numeric literal left after stripping the
// currency prefix and comma grouping. A sign is deliberately not allowed:
// load amounts are non-negative by contract.
var amountPattern = regexp.MustCompile(`^\d+\.?\d*$`)

// Record validates a raw record field by field, short-circuiting on the
// first failure. On failure the returned reason is one of the format-error
// tokens and the LoadRequest must not be used.
func Record(raw domain.RawRecord) (domain.LoadRequest, string, bool) {
	if !isDigits(raw.ID) || !isDigits(raw.CustomerID) {
		return domain.LoadRequest{}, domain.ReasonInvalidIDFormat, false
	}

	amount, ok := Amount(raw.LoadAmount)
	if !ok {
		return domain.LoadRequest{}, domain.ReasonMalformedAmount, false
	}

	ts, ok := Timestamp(raw.Time)
	if !ok {
		return domain.LoadRequest{}, domain.ReasonMalformedTime, false
	}

	return domain.LoadRequest{
		ID:         raw.ID,
		CustomerID: raw.CustomerID,
		Amount:     amount,
		Timestamp:  ts,
		RawAmount:  raw.LoadAmount,
	}, "", true
}

// Amount parses a monetary amount string such as "123.45", "$123.45",
// "USD$1,234.56". The result is rounded down to cents.
func Amount(s string) (decimal.Decimal, bool) {
	cleaned := strings.NewReplacer(",", "", "$", "", "USD", "").Replace(s)
	if !amountPattern.MatchString(cleaned) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d.RoundDown(2), true
}

// Timestamp parses a UTC instant in RFC 3339 form ("2023-01-02T10:00:00Z").
// The result is normalized to UTC regardless of the offset on the wire.
func Timestamp(s string) (time.Time, bool) {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts.UTC(), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
