package db

import (
	"github.com/jackc/pgx/v5"
)

// CopyRow is any serving row that can emit its values in COPY column order.
type CopyRow interface {
	CopyValues() []any
}

// SliceSource implements pgx.CopyFromSource over an in-memory row slice.
// The publish phase builds both serving sets fully before the swap
// transaction opens, so rows are already materialized when COPY runs.
type SliceSource[T CopyRow] struct {
	rows []T
	idx  int
}

// NewSliceSource creates a CopyFromSource over the given rows.
func NewSliceSource[T CopyRow](rows []T) *SliceSource[T] {
	return &SliceSource[T]{rows: rows, idx: -1}
}

// Next advances to the next row.
func (s *SliceSource[T]) Next() bool {
	s.idx++
	return s.idx < len(s.rows)
}

// Values returns the current row's values in COPY column order.
func (s *SliceSource[T]) Values() ([]any, error) {
	return s.rows[s.idx].CopyValues(), nil
}

// Err returns any error encountered during iteration.
func (s *SliceSource[T]) Err() error {
	return nil
}

// Compile-time check that SliceSource satisfies the interface.
var _ pgx.CopyFromSource = (*SliceSource[CopyRow])(nil)
