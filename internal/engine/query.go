package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"techjobs/internal/models"
)

// Columns returns the column names in header order.
func (s *Store) Columns(ctx context.Context) ([]string, error) {
	t, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(t.Columns), nil
}

// All returns every row in load order.
func (s *Store) All(ctx context.Context) ([]models.Row, error) {
	t, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Row, 0, len(t.Rows))
	for _, row := range t.Rows {
		out = append(out, models.CloneRow(row))
	}
	return out, nil
}

// DistinctValues returns the values of column in load order, skipping a
// value when an already collected value contains it, ignoring case.
//
// This is containment, not equality: "Engineer" hides a later "engineer"
// and a later "Eng", but not a later "Senior Engineer".
func (s *Store) DistinctValues(ctx context.Context, column string) ([]string, error) {
	t, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !hasColumn(t, column) {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}

	values := []string{}
	var folded []string
	for _, row := range t.Rows {
		v, _ := row.GetString(column)
		lv := strings.ToLower(v)
		if slices.ContainsFunc(folded, func(existing string) bool {
			return strings.Contains(existing, lv)
		}) {
			continue
		}
		values = append(values, v)
		folded = append(folded, lv)
	}
	return values, nil
}

// SearchAll returns the rows where any column contains term, ignoring case.
// Columns are checked in header order.
func (s *Store) SearchAll(ctx context.Context, term string) ([]models.Row, error) {
	t, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	out := []models.Row{}
	for _, row := range t.Rows {
		for _, column := range t.Columns {
			v, _ := row.GetString(column)
			if strings.Contains(strings.ToLower(v), needle) {
				out = append(out, models.CloneRow(row))
				break
			}
		}
	}
	return out, nil
}

// SearchColumn returns the rows whose column value contains term, ignoring
// case.
func (s *Store) SearchColumn(ctx context.Context, column, term string) ([]models.Row, error) {
	t, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !hasColumn(t, column) {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, column)
	}
	needle := strings.ToLower(term)
	out := []models.Row{}
	for _, row := range t.Rows {
		v, _ := row.GetString(column)
		if strings.Contains(strings.ToLower(v), needle) {
			out = append(out, models.CloneRow(row))
		}
	}
	return out, nil
}
