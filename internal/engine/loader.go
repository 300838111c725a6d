package engine

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/zeebo/xxh3"

	"techjobs/internal/models"
)

// Table is the immutable result of one successful load.
type Table struct {
	Columns []string
	Rows    []models.Row

	// Fingerprint is the xxh3 hash of the raw source bytes.
	Fingerprint uint64
}

// RowSource yields the header and rows of a tabular resource.
type RowSource interface {
	Open(ctx context.Context) (*Table, error)
}

// CSVSource reads an RFC 4180 file whose first record is the header.
type CSVSource struct {
	Path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

func (s *CSVSource) Open(ctx context.Context) (*Table, error) {
	start := time.Now()
	content, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	table, err := ParseCSV(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	slog.DebugContext(ctx, "parsed csv", "path", s.Path, "rows", len(table.Rows), "columns", len(table.Columns), "dur", time.Since(start))
	return table, nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

// ParseCSV decodes content into a Table. Every record must have as many
// fields as the header; header names must be unique and non-empty.
func ParseCSV(content []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: missing header", ErrParse)
		}
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if name == "" {
			return nil, fmt.Errorf("%w: header column %d is empty", ErrParse, i+1)
		}
		if _, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w: duplicate header column %q", ErrParse, name)
		}
		seen[name] = struct{}{}
	}

	table := &Table{
		Columns:     header,
		Rows:        []models.Row{},
		Fingerprint: xxh3.Hash(content),
	}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		table.Rows = append(table.Rows, models.NewRow(header, record))
	}
	return table, nil
}
