package gateway

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"fund-adjudicator/internal/domain"
)

// Canonical record fields a CSV column can map to.
const (
	fieldID         = "id"
	fieldCustomerID = "customer_id"
	fieldAmount     = "load_amount"
	fieldTime       = "time"
)

// headerAliases maps common column names onto the record fields. Unknown
// columns are ignored.
var headerAliases = map[string]string{
	"id":                 fieldID,
	"transaction_id":     fieldID,
	"transactionid":      fieldID,
	"customer_id":        fieldCustomerID,
	"customerid":         fieldCustomerID,
	"customer":           fieldCustomerID,
	"amount":             fieldAmount,
	"load_amount":        fieldAmount,
	"transaction_amount": fieldAmount,
	"time":               fieldTime,
	"timestamp":          fieldTime,
	"date":               fieldTime,
	"datetime":           fieldTime,
}

// CSVSource reads headered CSV input. The header row is consumed on the
// first Next call; rows whose cells are all blank are skipped, and rows with
// a wrong field count are fatal run errors.
type CSVSource struct {
	reader  *csv.Reader
	columns map[int]string
	line    int
}

// NewCSVSource wraps a reader producing headered CSV records.
func NewCSVSource(r io.Reader) *CSVSource {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	return &CSVSource{reader: cr}
}

// Next returns the next record, or io.EOF when the stream is exhausted.
func (s *CSVSource) Next(ctx context.Context) (*domain.RawRecord, error) {
	if s.columns == nil {
		if err := s.readHeader(); err != nil {
			return nil, err
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := s.reader.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		s.line++

		if blankRow(row) {
			continue
		}

		var rec domain.RawRecord
		for i, cell := range row {
			switch s.columns[i] {
			case fieldID:
				rec.ID = strings.TrimSpace(cell)
			case fieldCustomerID:
				rec.CustomerID = strings.TrimSpace(cell)
			case fieldAmount:
				rec.LoadAmount = strings.TrimSpace(cell)
			case fieldTime:
				rec.Time = strings.TrimSpace(cell)
			}
		}
		return &rec, nil
	}
}

func (s *CSVSource) readHeader() error {
	header, err := s.reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}
	s.columns = make(map[int]string, len(header))
	for i, name := range header {
		if field, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			s.columns[i] = field
		}
	}
	s.line = 1
	return nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
