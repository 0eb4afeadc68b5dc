package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCustomer_DailyAccumulation(t *testing.T) {
	c := NewBook().Customer("999")

	assert.True(t, c.DailyTotal("2025-01-07").IsZero())
	assert.Zero(t, c.DailyCount("2025-01-07"))

	c.Record("2025-01-07", d("1000.00"), "100", false)
	c.Record("2025-01-07", d("250.50"), "101", false)
	c.Record("2025-01-08", d("99.99"), "102", false)

	assert.True(t, c.DailyTotal("2025-01-07").Equal(d("1250.50")))
	assert.Equal(t, 2, c.DailyCount("2025-01-07"))
	assert.True(t, c.DailyTotal("2025-01-08").Equal(d("99.99")))
	assert.Equal(t, 1, c.DailyCount("2025-01-08"))
}

func TestCustomer_WeeklyTotal(t *testing.T) {
	c := NewBook().Customer("999")

	// Window ending 2025-01-13 covers [2025-01-07, 2025-01-13].
	c.Record("2025-01-06", d("5000.00"), "100", false) // outside
	c.Record("2025-01-07", d("1000.00"), "101", false) // oldest day inside
	c.Record("2025-01-10", d("2000.00"), "102", false)
	c.Record("2025-01-13", d("300.00"), "103", false) // window end

	end := time.Date(2025, 1, 13, 23, 0, 0, 0, time.UTC)
	assert.True(t, c.WeeklyTotal(end).Equal(d("3300.00")))

	// One day later the 2025-01-07 load falls out of the window.
	assert.True(t, c.WeeklyTotal(end.AddDate(0, 0, 1)).Equal(d("2300.00")))

	// An empty window sums to zero.
	assert.True(t, c.WeeklyTotal(end.AddDate(0, 1, 0)).IsZero())
}

func TestCustomer_PrimeTracking(t *testing.T) {
	c := NewBook().Customer("999")

	c.Record("2025-01-07", d("9999.00"), "101", true)
	c.Record("2025-01-07", d("100.00"), "102", false)

	assert.True(t, c.PrimeDailyTotal("2025-01-07").Equal(d("9999.00")))
	assert.Equal(t, 1, c.PrimeDailyCount("2025-01-07"))

	// Non-prime loads still land in the plain daily buckets.
	assert.True(t, c.DailyTotal("2025-01-07").Equal(d("10099.00")))
	assert.Equal(t, 2, c.DailyCount("2025-01-07"))
}

func TestCustomer_SeenAndAcceptedCount(t *testing.T) {
	c := NewBook().Customer("999")

	assert.False(t, c.Seen("100"))
	assert.Zero(t, c.AcceptedCount())

	c.Record("2025-01-07", d("10.00"), "100", false)
	c.Record("2025-01-08", d("10.00"), "101", false)

	assert.True(t, c.Seen("100"))
	assert.True(t, c.Seen("101"))
	assert.False(t, c.Seen("102"))
	assert.Equal(t, 2, c.AcceptedCount())
}

func TestBook_LazyPerCustomer(t *testing.T) {
	b := NewBook()
	assert.Zero(t, b.Size())

	first := b.Customer("999")
	again := b.Customer("999")
	other := b.Customer("343")

	assert.Same(t, first, again)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, b.Size())

	// State never leaks across customers.
	first.Record("2025-01-07", d("500.00"), "100", false)
	assert.True(t, other.DailyTotal("2025-01-07").IsZero())
	assert.False(t, other.Seen("100"))
}
