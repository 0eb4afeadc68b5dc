package engine

import (
	"context"

	"fund-adjudicator/internal/domain"
)

// RecordSource supplies raw records one at a time, in input order. Next
// returns io.EOF when the stream is exhausted; any other error aborts the
// run. The engine does not care whether the wire format is JSONL or CSV.
//
//go:generate mockgen -destination=mocks/mock_streams.go -source=interface.go RecordSource,DecisionSink,AuditSink
type RecordSource interface {
	Next(ctx context.Context) (*domain.RawRecord, error)
}

// DecisionSink receives the canonical per-record decision output.
type DecisionSink interface {
	WriteDecision(d domain.Decision) error
}

// AuditSink receives the full audit record for every input record, an
// additive stream alongside the decision output.
type AuditSink interface {
	WriteAudit(a domain.AuditRecord) error
}
