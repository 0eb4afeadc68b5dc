package domain

// Decline reason tokens. Every declined record carries at least one of these,
// either as a rule verdict reason or as the audit record's error field.
const (
	// Format errors: the record never reaches the ledger.
	ReasonInvalidIDFormat = "INVALID_ID_FORMAT"
	ReasonMalformedAmount = "MALFORMED_AMOUNT"
	ReasonMalformedTime   = "MALFORMED_TIME"

	// Anomaly errors: terminal, no velocity rule is evaluated.
	ReasonCustomerIDTooShort      = "CUSTOMER_ID_TOO_SHORT"
	ReasonTransactionIDTooShort   = "TRANSACTION_ID_TOO_SHORT"
	ReasonDuplicateTransactionID  = "DUPLICATE_TRANSACTION_ID"
	ReasonCustomerAnomalyDetected = "CUSTOMER_ANOMALY_DETECTED"

	// Velocity errors: declared after full rule evaluation.
	ReasonDailyLimitExceeded        = "DAILY_LIMIT_EXCEEDED"
	ReasonWeeklyLimitExceeded       = "WEEKLY_LIMIT_EXCEEDED"
	ReasonDailyCountExceeded        = "DAILY_COUNT_EXCEEDED"
	ReasonPrimeIDDailyLimitExceeded = "PRIME_ID_DAILY_LIMIT_EXCEEDED"
	ReasonPrimeIDDailyCountExceeded = "PRIME_ID_DAILY_COUNT_EXCEEDED"
)

// Informational verdict reasons for rules that passed.
const (
	ReasonNoAnomalyDetected = "NO_ANOMALY_DETECTED"
	ReasonNotPrimeID        = "NOT_PRIME_ID"
	ReasonPrimeID           = "PRIME_ID"
	ReasonPrimeIDApproved   = "PRIME_ID_APPROVED"
)

// Rule names as they appear in audit records, in evaluation order.
const (
	RuleAnomaly     = "anomaly"
	RuleDailyCount  = "daily_count"
	RuleDailyLimit  = "daily_limit"
	RuleWeeklyLimit = "weekly_limit"
	RulePrimeID     = "prime_id"
)

// RuleVerdict is the outcome of one rule for one request. Details carry the
// diagnostic values the rule looked at (current totals, attempted amount,
// limit in effect) so an audit record can be interpreted without replaying
// the run against a live configuration.
type RuleVerdict struct {
	Rule    string         `json:"rule"`
	Passed  bool           `json:"passed"`
	Reason  string         `json:"reason,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Decision is the canonical per-record output contract.
type Decision struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Accepted   bool   `json:"accepted"`
}

// AuditRecord is the full explainability record for one input line, emitted
// exactly once per record whether accepted or declined. RulesEvaluated is an
// ordered array (not an object) so evaluation order survives JSON encoding.
type AuditRecord struct {
	ID              string        `json:"id"`
	CustomerID      string        `json:"customer_id"`
	Accepted        bool          `json:"accepted"`
	OriginalAmount  string        `json:"original_amount"`
	EffectiveAmount string        `json:"effective_amount"`
	IsMonday        bool          `json:"is_monday"`
	RulesEvaluated  []RuleVerdict `json:"rules_evaluated"`
	Time            string        `json:"time,omitempty"`

	// Error holds the format-error reason when the record never parsed;
	// empty for records that reached rule evaluation.
	Error string `json:"error,omitempty"`
}

// Decision folds an audit record down to the decision output contract.
func (a AuditRecord) Decision() Decision {
	return Decision{ID: a.ID, CustomerID: a.CustomerID, Accepted: a.Accepted}
}

// FailedReasons lists the reasons of every failed verdict, in rule order.
func (a AuditRecord) FailedReasons() []string {
	var reasons []string
	if a.Error != "" {
		reasons = append(reasons, a.Error)
	}
	for _, v := range a.RulesEvaluated {
		if !v.Passed && v.Reason != "" {
			reasons = append(reasons, v.Reason)
		}
	}
	return reasons
}
