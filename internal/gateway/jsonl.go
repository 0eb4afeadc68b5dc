// Package gateway adapts files and streams to the engine's record source and
// sink interfaces. It owns the wire formats (JSONL and headered CSV); the
// engine only ever sees RawRecords.
package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fund-adjudicator/internal/domain"
)

// JSONLSource reads one JSON object per line. Blank lines are skipped;
// malformed JSON is a fatal run error, not a per-record decline, matching
// the error taxonomy for unreadable input.
type JSONLSource struct {
	scanner *bufio.Scanner
	line    int
}

// NewJSONLSource wraps a reader producing JSON-lines records.
func NewJSONLSource(r io.Reader) *JSONLSource {
	return &JSONLSource{scanner: bufio.NewScanner(r)}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
func (s *JSONLSource) Next(ctx context.Context) (*domain.RawRecord, error) {
	for s.scanner.Scan() {
		s.line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := strings.TrimSpace(s.scanner.Text())
		if text == "" {
			continue
		}

		var rec domain.RawRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", s.line, err)
		}
		return &rec, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return nil, io.EOF
}

// JSONLDecisionSink writes one compact decision object per line.
type JSONLDecisionSink struct {
	enc *json.Encoder
}

// NewJSONLDecisionSink wraps a writer for decision output.
func NewJSONLDecisionSink(w io.Writer) *JSONLDecisionSink {
	return &JSONLDecisionSink{enc: json.NewEncoder(w)}
}

// WriteDecision emits one decision line.
func (s *JSONLDecisionSink) WriteDecision(d domain.Decision) error {
	if err := s.enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode decision: %w", err)
	}
	return nil
}

// JSONLAuditSink writes one audit record object per line.
type JSONLAuditSink struct {
	enc *json.Encoder
}

// NewJSONLAuditSink wraps a writer for audit output.
func NewJSONLAuditSink(w io.Writer) *JSONLAuditSink {
	return &JSONLAuditSink{enc: json.NewEncoder(w)}
}

// WriteAudit emits one audit line.
func (s *JSONLAuditSink) WriteAudit(a domain.AuditRecord) error {
	if err := s.enc.Encode(a); err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}
	return nil
}
