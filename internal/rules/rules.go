// Package rules implements the adjudication rule set as a fixed, ordered
// list of pure functions. Each rule reads the pre-mutation ledger and the
// run configuration and produces a RuleVerdict; none of them writes
// anything, so every rule is independently testable.
package rules

import (
	"time"

	"github.com/shopspring/decimal"

	"fund-adjudicator/internal/config"
	"fund-adjudicator/internal/domain"
	"fund-adjudicator/internal/ledger"
)

// Input is everything a rule may consult for one request. Ledger is the
// customer's state before this request; rules never see their own effect.
type Input struct {
	Request   domain.LoadRequest
	Effective decimal.Decimal
	Date      string
	Prime     bool
	Ledger    *ledger.Customer
	Config    config.Configuration
}

// Rule is one named predicate in the evaluation order.
type Rule struct {
	Name     string
	Evaluate func(Input) domain.RuleVerdict
}

// EffectiveAmount applies the Monday multiplier: a load dated on a UTC
// Monday counts at multiplier times its face value against every limit and
// in every ledger accumulation. The raw amount is what output echoes.
func EffectiveAmount(ts time.Time, amount decimal.Decimal, multiplier int) (decimal.Decimal, bool) {
	if ts.UTC().Weekday() != time.Monday {
		return amount, false
	}
	return amount.Mul(decimal.NewFromInt(int64(multiplier))), true
}

// Anomaly screens a request before any velocity rule runs. A failed verdict
// is terminal: the request is declined without evaluating the rest of the
// rule set and without touching the ledger.
func Anomaly(in Input) domain.RuleVerdict {
	if len(in.Request.CustomerID) < in.Config.MinCustomerIDLength {
		return domain.RuleVerdict{
			Rule:   domain.RuleAnomaly,
			Reason: domain.ReasonCustomerIDTooShort,
			Details: map[string]any{
				"customer_id_length": len(in.Request.CustomerID),
				"minimum_length":     in.Config.MinCustomerIDLength,
			},
		}
	}
	if len(in.Request.ID) < in.Config.MinTransactionIDLength {
		return domain.RuleVerdict{
			Rule:   domain.RuleAnomaly,
			Reason: domain.ReasonTransactionIDTooShort,
			Details: map[string]any{
				"transaction_id_length": len(in.Request.ID),
				"minimum_length":        in.Config.MinTransactionIDLength,
			},
		}
	}
	if in.Ledger.Seen(in.Request.ID) {
		return domain.RuleVerdict{
			Rule:   domain.RuleAnomaly,
			Reason: domain.ReasonDuplicateTransactionID,
			Details: map[string]any{
				"transaction_id": in.Request.ID,
			},
		}
	}
	if t := in.Config.CustomerAnomalyThreshold; t > 0 && in.Ledger.AcceptedCount() > t {
		return domain.RuleVerdict{
			Rule:   domain.RuleAnomaly,
			Reason: domain.ReasonCustomerAnomalyDetected,
			Details: map[string]any{
				"customer_transaction_count": in.Ledger.AcceptedCount(),
				"threshold":                  t,
			},
		}
	}
	return domain.RuleVerdict{
		Rule:   domain.RuleAnomaly,
		Passed: true,
		Reason: domain.ReasonNoAnomalyDetected,
		Details: map[string]any{
			"customer_transaction_count": in.Ledger.AcceptedCount(),
		},
	}
}

// Velocity returns the rule set in its fixed evaluation order. All rules run
// for every non-anomalous request regardless of earlier failures, so the
// audit record explains every limit, not just the first one violated.
func Velocity() []Rule {
	return []Rule{
		{Name: domain.RuleDailyCount, Evaluate: dailyCount},
		{Name: domain.RuleDailyLimit, Evaluate: dailyLimit},
		{Name: domain.RuleWeeklyLimit, Evaluate: weeklyLimit},
		{Name: domain.RulePrimeID, Evaluate: primeID},
	}
}

// dailyCount checks the count after this attempt against the daily load
// count, so the Nth load where N equals the limit is the last one accepted.
// Prime-ID requests are governed by the prime rule's own count instead.
func dailyCount(in Input) domain.RuleVerdict {
	if in.Prime {
		return domain.RuleVerdict{Rule: domain.RuleDailyCount, Passed: true, Reason: domain.ReasonPrimeID}
	}
	current := in.Ledger.DailyCount(in.Date)
	if current+1 > in.Config.DailyLoadCount {
		return domain.RuleVerdict{
			Rule:   domain.RuleDailyCount,
			Reason: domain.ReasonDailyCountExceeded,
			Details: map[string]any{
				"current_daily_count": current,
				"limit":               in.Config.DailyLoadCount,
			},
		}
	}
	return domain.RuleVerdict{
		Rule:    domain.RuleDailyCount,
		Passed:  true,
		Details: map[string]any{"current_daily_count": current},
	}
}

// dailyLimit enforces the per-date amount cap with strict-> semantics:
// landing exactly on the limit is accepted.
func dailyLimit(in Input) domain.RuleVerdict {
	if in.Prime {
		return domain.RuleVerdict{Rule: domain.RuleDailyLimit, Passed: true, Reason: domain.ReasonPrimeID}
	}
	current := in.Ledger.DailyTotal(in.Date)
	if current.Add(in.Effective).GreaterThan(in.Config.DailyLimit) {
		return domain.RuleVerdict{
			Rule:   domain.RuleDailyLimit,
			Reason: domain.ReasonDailyLimitExceeded,
			Details: map[string]any{
				"current_daily_total": current.StringFixed(2),
				"attempted":           in.Effective.StringFixed(2),
				"limit":               in.Config.DailyLimit.StringFixed(2),
			},
		}
	}
	return domain.RuleVerdict{
		Rule:   domain.RuleDailyLimit,
		Passed: true,
		Details: map[string]any{
			"current_daily_total": current.StringFixed(2),
			"attempted":           in.Effective.StringFixed(2),
		},
	}
}

// weeklyLimit enforces the rolling 7-day cap over [D-6, D] inclusive.
// It applies to every request, prime or not.
func weeklyLimit(in Input) domain.RuleVerdict {
	current := in.Ledger.WeeklyTotal(in.Request.Timestamp)
	if current.Add(in.Effective).GreaterThan(in.Config.WeeklyLimit) {
		return domain.RuleVerdict{
			Rule:   domain.RuleWeeklyLimit,
			Reason: domain.ReasonWeeklyLimitExceeded,
			Details: map[string]any{
				"rolling_7d_total": current.StringFixed(2),
				"attempted":        in.Effective.StringFixed(2),
				"limit":            in.Config.WeeklyLimit.StringFixed(2),
			},
		}
	}
	return domain.RuleVerdict{
		Rule:   domain.RuleWeeklyLimit,
		Passed: true,
		Details: map[string]any{
			"rolling_7d_total": current.StringFixed(2),
			"attempted":        in.Effective.StringFixed(2),
		},
	}
}

// primeID enforces the stricter per-day count and amount limits for prime
// transaction IDs. The count check runs first; a request blocked on count is
// reported on count even if the amount also exceeds the limit.
func primeID(in Input) domain.RuleVerdict {
	if !in.Prime {
		return domain.RuleVerdict{Rule: domain.RulePrimeID, Passed: true, Reason: domain.ReasonNotPrimeID}
	}

	count := in.Ledger.PrimeDailyCount(in.Date)
	if count+1 > in.Config.PrimeIDDailyCount {
		return domain.RuleVerdict{
			Rule:   domain.RulePrimeID,
			Reason: domain.ReasonPrimeIDDailyCountExceeded,
			Details: map[string]any{
				"prime_id_daily_count": count,
				"limit":                in.Config.PrimeIDDailyCount,
			},
		}
	}

	current := in.Ledger.PrimeDailyTotal(in.Date)
	if current.Add(in.Effective).GreaterThan(in.Config.PrimeIDDailyLimit) {
		return domain.RuleVerdict{
			Rule:   domain.RulePrimeID,
			Reason: domain.ReasonPrimeIDDailyLimitExceeded,
			Details: map[string]any{
				"prime_id_daily_total": current.StringFixed(2),
				"attempted":            in.Effective.StringFixed(2),
				"limit":                in.Config.PrimeIDDailyLimit.StringFixed(2),
			},
		}
	}

	return domain.RuleVerdict{
		Rule:   domain.RulePrimeID,
		Passed: true,
		Reason: domain.ReasonPrimeIDApproved,
		Details: map[string]any{
			"prime_id_daily_count": count,
			"prime_id_daily_total": current.StringFixed(2),
			"attempted":            in.Effective.StringFixed(2),
		},
	}
}
