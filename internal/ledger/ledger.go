// Package ledger holds the per-customer running state the velocity rules
// read. Every entry reflects accepted loads only: declined requests never
// touch a ledger, which is what makes daily and weekly totals trustworthy.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// dateKey is a UTC calendar date in YYYY-MM-DD form.
type dateKey = string

// Customer is the accumulated state for one customer within one run.
// It is created lazily on first sight and mutated only through Record,
// which the adjudicator calls immediately after an accepted decision.
type Customer struct {
	dailyTotals      map[dateKey]decimal.Decimal
	dailyCounts      map[dateKey]int
	primeDailyTotals map[dateKey]decimal.Decimal
	primeDailyCounts map[dateKey]int
	seenIDs          map[string]struct{}
}

func newCustomer() *Customer {
	return &Customer{
		dailyTotals:      make(map[dateKey]decimal.Decimal),
		dailyCounts:      make(map[dateKey]int),
		primeDailyTotals: make(map[dateKey]decimal.Decimal),
		primeDailyCounts: make(map[dateKey]int),
		seenIDs:          make(map[string]struct{}),
	}
}

// DailyTotal returns the accumulated effective amount accepted on date.
func (c *Customer) DailyTotal(date string) decimal.Decimal {
	return c.dailyTotals[date]
}

// DailyCount returns the number of loads accepted on date.
func (c *Customer) DailyCount(date string) int {
	return c.dailyCounts[date]
}

// WeeklyTotal returns the rolling 7-day total for the window [day-6, day]
// inclusive. It is recomputed from the daily totals on every call, so there
// is no cached window to invalidate.
func (c *Customer) WeeklyTotal(day time.Time) decimal.Decimal {
	day = day.UTC()
	total := decimal.Zero
	for i := 0; i < 7; i++ {
		total = total.Add(c.dailyTotals[day.AddDate(0, 0, -i).Format(time.DateOnly)])
	}
	return total
}

// PrimeDailyTotal returns the accepted prime-ID effective amount for date.
func (c *Customer) PrimeDailyTotal(date string) decimal.Decimal {
	return c.primeDailyTotals[date]
}

// PrimeDailyCount returns the accepted prime-ID load count for date.
func (c *Customer) PrimeDailyCount(date string) int {
	return c.primeDailyCounts[date]
}

// Seen reports whether a transaction ID was already accepted for this
// customer.
func (c *Customer) Seen(id string) bool {
	_, ok := c.seenIDs[id]
	return ok
}

// AcceptedCount returns the number of distinct accepted transactions for
// this customer across the whole run.
func (c *Customer) AcceptedCount() int {
	return len(c.seenIDs)
}

// Record adds one accepted load to the ledger. There is no rollback: the
// adjudicator only calls this after the decision is final.
func (c *Customer) Record(date string, effective decimal.Decimal, id string, prime bool) {
	c.dailyTotals[date] = c.dailyTotals[date].Add(effective)
	c.dailyCounts[date]++
	c.seenIDs[id] = struct{}{}
	if prime {
		c.primeDailyTotals[date] = c.primeDailyTotals[date].Add(effective)
		c.primeDailyCounts[date]++
	}
}

// Book is the ledger collection for one run. One Book per Configuration and
// input source; independent runs never share a Book.
type Book struct {
	customers map[string]*Customer
}

// NewBook creates an empty ledger collection.
func NewBook() *Book {
	return &Book{customers: make(map[string]*Customer)}
}

// Customer returns the ledger for a customer, creating it on first sight.
func (b *Book) Customer(id string) *Customer {
	c, ok := b.customers[id]
	if !ok {
		c = newCustomer()
		b.customers[id] = c
	}
	return c
}

// Size returns the number of distinct customers tracked so far.
func (b *Book) Size() int {
	return len(b.customers)
}
