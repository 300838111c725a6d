package engine

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Store owns one Table, loaded from its RowSource on first use.
//
// A failed load installs nothing: the store stays unloaded and the error
// goes back to the caller. The next query tries again.
type Store struct {
	source RowSource

	mu      sync.Mutex
	table   *Table
	columns *ColumnStore
	loads   int
}

func NewStore(source RowSource) *Store {
	return &Store{source: source}
}

// Load loads the table if it is not loaded yet.
func (s *Store) Load(ctx context.Context) error {
	_, err := s.snapshot(ctx)
	return err
}

// Loaded reports whether the table is in memory.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table != nil
}

// Loads returns the number of successful source reads. It never exceeds 1.
func (s *Store) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

// Fingerprint identifies the loaded content.
func (s *Store) Fingerprint(ctx context.Context) (uint64, error) {
	t, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return t.Fingerprint, nil
}

// Len returns the number of rows.
func (s *Store) Len(ctx context.Context) (int, error) {
	t, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}
	return len(t.Rows), nil
}

// snapshot returns the loaded table, loading it first when needed.
func (s *Store) snapshot(ctx context.Context) (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table != nil {
		return s.table, nil
	}

	start := time.Now()
	t, err := s.source.Open(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load job data", "err", err)
		return nil, err
	}
	s.columns = NewColumnStore(t)
	s.table = t
	s.loads++
	slog.InfoContext(ctx, "loaded job data", "rows", len(t.Rows), "columns", len(t.Columns), "dur", time.Since(start))
	return t, nil
}

func (s *Store) columnStore(ctx context.Context) (*ColumnStore, error) {
	if _, err := s.snapshot(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.columns, nil
}

func hasColumn(t *Table, column string) bool {
	return slices.Contains(t.Columns, column)
}
