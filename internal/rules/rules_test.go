package rules

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fund-adjudicator/internal/config"
	"fund-adjudicator/internal/domain"
	"fund-adjudicator/internal/ledger"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// makeInput builds a rule input over an empty ledger unless one is supplied.
func makeInput(id, customerID, amount, ts string, led *ledger.Customer) Input {
	if led == nil {
		led = ledger.NewBook().Customer(customerID)
	}
	t, _ := time.Parse(time.RFC3339, ts)
	amt := d(amount)
	return Input{
		Request: domain.LoadRequest{
			ID:         id,
			CustomerID: customerID,
			Amount:     amt,
			Timestamp:  t,
			RawAmount:  amount,
		},
		Effective: amt,
		Date:      t.UTC().Format(time.DateOnly),
		Prime:     IsPrime(id),
		Ledger:    led,
		Config:    config.Default(),
	}
}

func TestEffectiveAmount(t *testing.T) {
	monday := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	got, isMonday := EffectiveAmount(monday, d("2500.00"), 2)
	assert.True(t, isMonday)
	assert.True(t, got.Equal(d("5000.00")))

	got, isMonday = EffectiveAmount(tuesday, d("2500.00"), 2)
	assert.False(t, isMonday)
	assert.True(t, got.Equal(d("2500.00")))

	// Multiplier 1 keeps Mondays unremarkable, but still flags them.
	got, isMonday = EffectiveAmount(monday, d("2500.00"), 1)
	assert.True(t, isMonday)
	assert.True(t, got.Equal(d("2500.00")))

	// A Sunday 23:30 UTC-5 instant is Monday in UTC; the UTC date decides.
	sundayLocal := time.Date(2025, 1, 5, 23, 30, 0, 0, time.FixedZone("EST", -5*3600))
	got, isMonday = EffectiveAmount(sundayLocal, d("100.00"), 2)
	assert.True(t, isMonday)
	assert.True(t, got.Equal(d("200.00")))
}

func TestAnomaly(t *testing.T) {
	t.Run("short customer id", func(t *testing.T) {
		v := Anomaly(makeInput("1000", "99", "10.00", "2025-01-07T10:00:00Z", nil))
		assert.False(t, v.Passed)
		assert.Equal(t, domain.ReasonCustomerIDTooShort, v.Reason)
	})

	t.Run("short transaction id", func(t *testing.T) {
		v := Anomaly(makeInput("10", "999", "10.00", "2025-01-07T10:00:00Z", nil))
		assert.False(t, v.Passed)
		assert.Equal(t, domain.ReasonTransactionIDTooShort, v.Reason)
	})

	t.Run("duplicate accepted transaction id", func(t *testing.T) {
		led := ledger.NewBook().Customer("999")
		led.Record("2025-01-06", d("10.00"), "1000", false)

		v := Anomaly(makeInput("1000", "999", "10.00", "2025-01-07T10:00:00Z", led))
		assert.False(t, v.Passed)
		assert.Equal(t, domain.ReasonDuplicateTransactionID, v.Reason)
	})

	t.Run("customer over anomaly threshold", func(t *testing.T) {
		led := ledger.NewBook().Customer("999")
		for i := 0; i < 11; i++ {
			led.Record("2025-01-06", d("1.00"), string(rune('a'+i)), false)
		}

		in := makeInput("1000", "999", "10.00", "2025-01-07T10:00:00Z", led)
		v := Anomaly(in)
		assert.False(t, v.Passed)
		assert.Equal(t, domain.ReasonCustomerAnomalyDetected, v.Reason)

		// Zero threshold disables the heuristic entirely.
		in.Config.CustomerAnomalyThreshold = 0
		v = Anomaly(in)
		assert.True(t, v.Passed)
	})

	t.Run("clean request passes", func(t *testing.T) {
		v := Anomaly(makeInput("1000", "999", "10.00", "2025-01-07T10:00:00Z", nil))
		assert.True(t, v.Passed)
		assert.Equal(t, domain.ReasonNoAnomalyDetected, v.Reason)
	})
}

// ruleByName resolves a rule from the fixed evaluation order.
func ruleByName(t *testing.T, name string) Rule {
	t.Helper()
	for _, r := range Velocity() {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("no rule named %s", name)
	return Rule{}
}

func TestVelocityOrder(t *testing.T) {
	var names []string
	for _, r := range Velocity() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		domain.RuleDailyCount,
		domain.RuleDailyLimit,
		domain.RuleWeeklyLimit,
		domain.RulePrimeID,
	}, names)
}

func TestDailyCountRule(t *testing.T) {
	rule := ruleByName(t, domain.RuleDailyCount)
	led := ledger.NewBook().Customer("999")

	// Two loads recorded; the third (count limit 3) is still allowed.
	led.Record("2025-01-07", d("1.00"), "1000", false)
	led.Record("2025-01-07", d("1.00"), "1001", false)
	v := rule.Evaluate(makeInput("1002", "999", "1.00", "2025-01-07T10:00:00Z", led))
	assert.True(t, v.Passed)

	// A third recorded load pushes the next attempt over.
	led.Record("2025-01-07", d("1.00"), "1002", false)
	v = rule.Evaluate(makeInput("1003", "999", "1.00", "2025-01-07T10:00:00Z", led))
	require.False(t, v.Passed)
	assert.Equal(t, domain.ReasonDailyCountExceeded, v.Reason)

	// A fresh date starts a fresh count.
	v = rule.Evaluate(makeInput("1003", "999", "1.00", "2025-01-08T10:00:00Z", led))
	assert.True(t, v.Passed)
}

func TestDailyLimitRule(t *testing.T) {
	rule := ruleByName(t, domain.RuleDailyLimit)
	led := ledger.NewBook().Customer("999")
	led.Record("2025-01-07", d("4999.00"), "1000", false)

	// Landing exactly on the limit is accepted.
	v := rule.Evaluate(makeInput("1001", "999", "1.00", "2025-01-07T10:00:00Z", led))
	assert.True(t, v.Passed)

	led.Record("2025-01-07", d("1.00"), "1001", false)

	// One cent over is not.
	v = rule.Evaluate(makeInput("1002", "999", "0.01", "2025-01-07T10:00:00Z", led))
	require.False(t, v.Passed)
	assert.Equal(t, domain.ReasonDailyLimitExceeded, v.Reason)
	assert.Equal(t, "5000.00", v.Details["current_daily_total"])
	assert.Equal(t, "5000.00", v.Details["limit"])
}

func TestWeeklyLimitRule(t *testing.T) {
	rule := ruleByName(t, domain.RuleWeeklyLimit)
	led := ledger.NewBook().Customer("999")
	for i, date := range []string{"2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10"} {
		led.Record(date, d("5000.00"), string(rune('a'+i)), false)
	}

	// 20000 already inside the window: any further amount trips the limit.
	v := rule.Evaluate(makeInput("1001", "999", "1.00", "2025-01-11T10:00:00Z", led))
	require.False(t, v.Passed)
	assert.Equal(t, domain.ReasonWeeklyLimitExceeded, v.Reason)

	// A week later the 2025-01-07 load has rolled out of the window, so a
	// load that lands exactly on the limit is accepted.
	v = rule.Evaluate(makeInput("1001", "999", "5000.00", "2025-01-14T10:00:00Z", led))
	assert.True(t, v.Passed)
}

func TestPrimeIDRule(t *testing.T) {
	rule := ruleByName(t, domain.RulePrimeID)

	t.Run("not prime passes through", func(t *testing.T) {
		v := rule.Evaluate(makeInput("1000", "999", "10.00", "2025-01-07T10:00:00Z", nil))
		assert.True(t, v.Passed)
		assert.Equal(t, domain.ReasonNotPrimeID, v.Reason)
	})

	t.Run("amount over prime limit", func(t *testing.T) {
		v := rule.Evaluate(makeInput("101", "999", "10000.00", "2025-01-07T10:00:00Z", nil))
		require.False(t, v.Passed)
		assert.Equal(t, domain.ReasonPrimeIDDailyLimitExceeded, v.Reason)
	})

	t.Run("amount exactly at prime limit", func(t *testing.T) {
		v := rule.Evaluate(makeInput("101", "999", "9999.00", "2025-01-07T10:00:00Z", nil))
		assert.True(t, v.Passed)
		assert.Equal(t, domain.ReasonPrimeIDApproved, v.Reason)
	})

	t.Run("count checked before amount", func(t *testing.T) {
		led := ledger.NewBook().Customer("999")
		led.Record("2025-01-07", d("9999.00"), "101", true)

		v := rule.Evaluate(makeInput("103", "999", "10000.00", "2025-01-07T10:00:00Z", led))
		require.False(t, v.Passed)
		assert.Equal(t, domain.ReasonPrimeIDDailyCountExceeded, v.Reason)
	})
}

func TestPrimeExemptFromPlainDailyRules(t *testing.T) {
	led := ledger.NewBook().Customer("999")
	for i := 0; i < 3; i++ {
		led.Record("2025-01-07", d("2000.00"), string(rune('a'+i)), false)
	}

	// Daily count and total are both maxed out, but a prime-ID request is
	// governed by the prime rule instead.
	in := makeInput("101", "999", "9999.00", "2025-01-07T10:00:00Z", led)
	v := ruleByName(t, domain.RuleDailyCount).Evaluate(in)
	assert.True(t, v.Passed)
	assert.Equal(t, domain.ReasonPrimeID, v.Reason)

	v = ruleByName(t, domain.RuleDailyLimit).Evaluate(in)
	assert.True(t, v.Passed)
	assert.Equal(t, domain.ReasonPrimeID, v.Reason)
}
