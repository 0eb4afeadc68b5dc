// Package engine drives the adjudication pipeline: parse, validate, evaluate
// the rule set in order, mutate the ledger on acceptance, emit one decision
// and one audit record per input record.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fund-adjudicator/internal/config"
	"fund-adjudicator/internal/domain"
	"fund-adjudicator/internal/ledger"
	"fund-adjudicator/internal/parse"
	"fund-adjudicator/internal/rules"
)

// Summary aggregates the outcomes of one processing run.
type Summary struct {
	Processed      int            `json:"processed"`
	Accepted       int            `json:"accepted"`
	Declined       int            `json:"declined"`
	DeclineReasons map[string]int `json:"decline_reasons,omitempty"`
}

// Adjudicator owns the ledgers for exactly one run. It is single-threaded:
// requests are adjudicated strictly one at a time, in input order, because
// each decision both reads and conditionally mutates per-customer state.
// Independent runs get independent Adjudicators and never share ledgers.
type Adjudicator struct {
	cfg      config.Configuration
	book     *ledger.Book
	velocity []rules.Rule
	runID    string
	summary  Summary
}

// New creates an adjudicator with fresh ledgers for one run.
func New(cfg config.Configuration) *Adjudicator {
	return &Adjudicator{
		cfg:      cfg,
		book:     ledger.NewBook(),
		velocity: rules.Velocity(),
		runID:    uuid.NewString(),
		summary:  Summary{DeclineReasons: make(map[string]int)},
	}
}

// RunID identifies this run in statistics output.
func (a *Adjudicator) RunID() string {
	return a.runID
}

// Adjudicate processes one record through the full pipeline and returns its
// audit record. The decision output is a fold of the audit record
// (AuditRecord.Decision). The ledger is mutated only when the record is
// accepted, after every rule has been evaluated.
func (a *Adjudicator) Adjudicate(raw domain.RawRecord) domain.AuditRecord {
	audit := a.adjudicate(raw)

	a.summary.Processed++
	if audit.Accepted {
		a.summary.Accepted++
	} else {
		a.summary.Declined++
		for _, reason := range audit.FailedReasons() {
			a.summary.DeclineReasons[reason]++
		}
	}
	return audit
}

func (a *Adjudicator) adjudicate(raw domain.RawRecord) domain.AuditRecord {
	req, reason, ok := parse.Record(raw)
	if !ok {
		// Format errors never reach the ledger; echo the raw fields as-is.
		return domain.AuditRecord{
			ID:              raw.ID,
			CustomerID:      raw.CustomerID,
			OriginalAmount:  raw.LoadAmount,
			EffectiveAmount: raw.LoadAmount,
			RulesEvaluated:  []domain.RuleVerdict{},
			Time:            raw.Time,
			Error:           reason,
		}
	}

	effective, isMonday := rules.EffectiveAmount(req.Timestamp, req.Amount, a.cfg.MondayMultiplier)
	in := rules.Input{
		Request:   req,
		Effective: effective,
		Date:      req.Date(),
		Prime:     rules.IsPrime(req.ID),
		Ledger:    a.book.Customer(req.CustomerID),
		Config:    a.cfg,
	}

	audit := domain.AuditRecord{
		ID:              req.ID,
		CustomerID:      req.CustomerID,
		OriginalAmount:  req.RawAmount,
		EffectiveAmount: formatEffective(req.RawAmount, effective),
		IsMonday:        isMonday,
		Time:            raw.Time,
	}

	// The anomaly screen is terminal: a hit declines the request without
	// evaluating the velocity rules or touching the ledger.
	anomaly := rules.Anomaly(in)
	audit.RulesEvaluated = append(audit.RulesEvaluated, anomaly)
	if !anomaly.Passed {
		return audit
	}

	// All velocity rules evaluate against pre-mutation ledger state
	// regardless of earlier failures; the decision is the AND of them.
	accepted := true
	for _, rule := range a.velocity {
		verdict := rule.Evaluate(in)
		audit.RulesEvaluated = append(audit.RulesEvaluated, verdict)
		accepted = accepted && verdict.Passed
	}

	if accepted {
		in.Ledger.Record(in.Date, effective, req.ID, in.Prime)
	}
	audit.Accepted = accepted
	return audit
}

// Run streams records from src until io.EOF, emitting exactly one decision
// and one audit record per input record. Aborting via ctx leaves the output
// consistent with "processed up to the last fully adjudicated record".
// Source and sink failures are fatal for the run; record-level problems are
// declines, never errors.
func (a *Adjudicator) Run(ctx context.Context, src RecordSource, decisions DecisionSink, audits AuditSink) (Summary, error) {
	for {
		if err := ctx.Err(); err != nil {
			return a.Summary(), err
		}

		raw, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return a.Summary(), nil
			}
			return a.Summary(), fmt.Errorf("failed to read record: %w", err)
		}

		audit := a.Adjudicate(*raw)
		if err := decisions.WriteDecision(audit.Decision()); err != nil {
			return a.Summary(), fmt.Errorf("failed to write decision for %s: %w", audit.ID, err)
		}
		if err := audits.WriteAudit(audit); err != nil {
			return a.Summary(), fmt.Errorf("failed to write audit record for %s: %w", audit.ID, err)
		}
	}
}

// Summary returns a copy of the run totals so far.
func (a *Adjudicator) Summary() Summary {
	s := a.summary
	s.DeclineReasons = make(map[string]int, len(a.summary.DeclineReasons))
	for k, v := range a.summary.DeclineReasons {
		s.DeclineReasons[k] = v
	}
	return s
}

// Statistics reports run state for monitoring: the configuration in effect,
// the run identifier, and how many customers the ledgers track.
func (a *Adjudicator) Statistics() map[string]any {
	s := a.Summary()
	return map[string]any{
		"run_id":            a.runID,
		"configuration":     a.cfg.Snapshot(),
		"customers_tracked": a.book.Size(),
		"processed":         s.Processed,
		"accepted":          s.Accepted,
		"declined":          s.Declined,
		"decline_reasons":   s.DeclineReasons,
	}
}

// formatEffective renders the effective amount for audit output, keeping the
// "$" prefix when the submitted amount carried one.
func formatEffective(raw string, effective decimal.Decimal) string {
	if strings.HasPrefix(raw, "$") || strings.HasPrefix(raw, "USD$") {
		return "$" + effective.StringFixed(2)
	}
	return effective.StringFixed(2)
}
