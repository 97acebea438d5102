package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/ranksum/internal/domain/model"
)

// MemorySource serves athletes from rows held in memory. It applies the same
// filters as SQLSource.
type MemorySource struct {
	settings
	mu      sync.RWMutex
	rows    []model.Row
	columns map[string]struct{}
	closed  bool
}

var _ Source = (*MemorySource)(nil)

// NewMemorySource creates a source over a copy of rows.
func NewMemorySource(rows []model.Row, opts ...Option) *MemorySource {
	m := &MemorySource{settings: defaultSettings(), columns: make(map[string]struct{})}
	for _, opt := range opts {
		opt(&m.settings)
	}
	m.Add(rows...)
	return m
}

// Add appends copies of rows.
func (m *MemorySource) Add(rows ...model.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range rows {
		m.rows = append(m.rows, r.Clone())
		for c := range r {
			m.columns[c] = struct{}{}
		}
	}
}

// Len returns the number of stored athletes.
func (m *MemorySource) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Athletes returns copies of the matching rows projected onto the selection.
func (m *MemorySource) Athletes(ctx context.Context, q Query) ([]model.Row, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}

	// A column no stored athlete carries is the caller's mistake, whatever
	// the filters select.
	columns := q.selection()
	for _, c := range columns {
		if _, ok := m.columns[c]; !ok {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalidQuery, c)
		}
	}
	out := make([]model.Row, 0)
	for _, r := range m.rows {
		if !matches(r[m.divisionColumn], q.Division) {
			continue
		}
		if q.Region != 0 && !matches(r[m.regionColumn], q.Region) {
			continue
		}
		if hasDNF(r, q.Metrics) {
			continue
		}
		out = append(out, r.Project(columns))
	}
	return out, nil
}

func matches(v any, want int64) bool {
	f, ok := model.Number(v)
	return ok && f == float64(want)
}

func hasDNF(r model.Row, metrics []string) bool {
	for _, c := range metrics {
		if model.IsDNF(r[c]) {
			return true
		}
	}
	return false
}

// Close drops the stored rows.
func (m *MemorySource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.rows = nil
	clear(m.columns)
	return nil
}
