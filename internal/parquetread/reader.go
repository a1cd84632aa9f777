// Package parquetread streams claim snapshot rows from Parquet exports
// of the claims feed.
package parquetread

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/pacstays/internal/model"
)

// Reader wraps a parquet GenericReader for streaming ClaimLineRow records.
type Reader struct {
	file   *os.File
	reader *parquet.GenericReader[model.ClaimLineRow]
}

// Open opens a Parquet claims snapshot and returns a streaming Reader.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat snapshot file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	r := parquet.NewGenericReader[model.ClaimLineRow](pf)
	return &Reader{file: f, reader: r}, nil
}

// NumRows returns the total number of rows in the snapshot.
func (r *Reader) NumRows() int64 {
	return r.reader.NumRows()
}

// Read reads up to len(rows) records into the provided slice.
// Returns the number of rows read and io.EOF when done.
func (r *Reader) Read(rows []model.ClaimLineRow) (int, error) {
	n, err := r.reader.Read(rows)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("read snapshot rows: %w", err)
	}
	return n, err
}

// Schema returns the Parquet schema for validation.
func (r *Reader) Schema() *parquet.Schema {
	return r.reader.Schema()
}

// Close releases all resources.
func (r *Reader) Close() error {
	if err := r.reader.Close(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

// ReadAll slurps the whole snapshot; the pipeline operates on the full
// corpus anyway, so there is nothing to stream against.
func ReadAll(path string) ([]model.ClaimLineRow, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := ValidateSchema(r.Schema()); err != nil {
		return nil, err
	}

	all := make([]model.ClaimLineRow, 0, r.NumRows())
	buf := make([]model.ClaimLineRow, 1024)
	for {
		n, readErr := r.Read(buf)
		all = append(all, buf[:n]...)
		if readErr == io.EOF {
			return all, nil
		}
		if readErr != nil {
			return nil, readErr
		}
	}
}
