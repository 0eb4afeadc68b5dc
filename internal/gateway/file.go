package gateway

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"fund-adjudicator/internal/domain"
	"fund-adjudicator/internal/engine"
)

// Format is a wire format the gateway can read.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// SniffFormat inspects the first non-blank line of the input: a line opening
// a JSON object means JSONL, a comma-bearing line means CSV. Anything else
// defaults to JSONL.
func SniffFormat(r *bufio.Reader) Format {
	peek, _ := r.Peek(4096)
	for _, line := range strings.Split(string(peek), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "{") {
			return FormatJSONL
		}
		if strings.Contains(line, ",") {
			return FormatCSV
		}
		break
	}
	return FormatJSONL
}

// FileSource is a record source backed by a file, with the format sniffed
// from its content. Close releases the file once the run is over.
type FileSource struct {
	file   *os.File
	format Format
	src    engine.RecordSource
}

// OpenFileSource opens an input file and picks a reader for its format.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", path, err)
	}

	buf := bufio.NewReader(f)
	format := SniffFormat(buf)

	fs := &FileSource{file: f, format: format}
	switch format {
	case FormatCSV:
		fs.src = NewCSVSource(buf)
	default:
		fs.src = NewJSONLSource(buf)
	}
	return fs, nil
}

// Format reports the sniffed wire format.
func (s *FileSource) Format() Format {
	return s.format
}

// Next delegates to the format-specific source.
func (s *FileSource) Next(ctx context.Context) (*domain.RawRecord, error) {
	return s.src.Next(ctx)
}

// Close releases the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}

// NewReaderSource picks a record source for an in-memory or network stream,
// sniffing the format the same way OpenFileSource does.
func NewReaderSource(r io.Reader) engine.RecordSource {
	buf := bufio.NewReader(r)
	if SniffFormat(buf) == FormatCSV {
		return NewCSVSource(buf)
	}
	return NewJSONLSource(buf)
}
