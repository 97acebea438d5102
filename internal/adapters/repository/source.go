// Package repository reads athlete rows from the configured data source.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/ranksum/internal/domain/model"
)

// Query selects the athletes of one division, optionally restricted to a region.
type Query struct {
	// Division is required.
	Division int64
	// Region 0 means worldwide.
	Region int64
	// Columns are the fields to return.
	Columns []string
	// Metrics are the scoring columns; rows with a DNF in any of them are skipped.
	Metrics []string
}

// Validate reports whether q can be executed.
func (q Query) Validate() error {
	if q.Division <= 0 {
		return fmt.Errorf("%w: division must be positive, got %d", ErrInvalidQuery, q.Division)
	}
	if q.Region < 0 {
		return fmt.Errorf("%w: region must not be negative, got %d", ErrInvalidQuery, q.Region)
	}
	if len(q.Columns) == 0 {
		return fmt.Errorf("%w: no columns requested", ErrInvalidQuery)
	}
	return nil
}

// selection returns Columns followed by any metric not already listed, without repeats.
func (q Query) selection() []string {
	seen := make(map[string]struct{}, len(q.Columns)+len(q.Metrics))
	out := make([]string, 0, len(q.Columns)+len(q.Metrics))
	for _, group := range [][]string{q.Columns, q.Metrics} {
		for _, c := range group {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// Source provides athlete rows.
type Source interface {
	// Athletes returns the rows matching q. Returned rows are owned by the caller.
	Athletes(ctx context.Context, q Query) ([]model.Row, error)

	// Close releases the underlying resources.
	Close() error
}
