package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/ranksum/internal/domain/metric"
	"github.com/okian/ranksum/internal/domain/model"
)

// Func is an aggregate applied to the top of a leaderboard.
type Func string

// Supported aggregates.
const (
	Max Func = "MAX"
	Min Func = "MIN"
	Avg Func = "AVG"
)

// ParseFunc accepts MAX, MIN or AVG in any case.
func ParseFunc(s string) (Func, error) {
	switch f := Func(strings.ToUpper(strings.TrimSpace(s))); f {
	case Max, Min, Avg:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown summary function %q", ErrInvalidRequest, s)
	}
}

// SummaryValue is the aggregate of one metric over the top athletes.
type SummaryValue struct {
	// Label follows the "<FUNC>top<n> <metric>" convention, e.g. "AVGtop10 back_squat_lbs".
	Label  string
	Metric string
	Value  float64
}

// Summarize aggregates each metric over the first n athletes of board. The
// metric values are read from rows, matched on the identifier. An n larger
// than the board covers the whole board but the label keeps the requested n;
// an empty board yields no values.
func (a *Aggregator) Summarize(board, rows []Row, metrics []metric.Metric, n int, fn Func) ([]SummaryValue, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: summary size must be positive, got %d", ErrInvalidRequest, n)
	}
	if _, err := ParseFunc(string(fn)); err != nil {
		return nil, err
	}
	if len(metrics) == 0 {
		return nil, fmt.Errorf("%w: no scoring metrics supplied", ErrInvalidRequest)
	}
	if len(board) == 0 {
		return []SummaryValue{}, nil
	}
	count := min(n, len(board))

	byKey := make(map[string]Row, len(rows))
	for _, r := range rows {
		if key, ok := model.Key(r[a.idColumn]); ok {
			byKey[key] = r
		}
	}

	top := make([]Row, 0, count)
	for i, b := range board[:count] {
		key, ok := model.Key(b[a.idColumn])
		if !ok {
			return nil, fmt.Errorf("%w: leaderboard row %d has no %q value", ErrInvalidRequest, i, a.idColumn)
		}
		r, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("%w: athlete %q not found in source rows", ErrInvalidRequest, key)
		}
		top = append(top, r)
	}

	out := make([]SummaryValue, 0, len(metrics))
	for _, m := range metrics {
		v, err := aggregate(top, m.Column, fn)
		if err != nil {
			return nil, err
		}
		out = append(out, SummaryValue{
			Label:  fmt.Sprintf("%stop%d %s", fn, n, m.Column),
			Metric: m.Column,
			Value:  v,
		})
	}
	return out, nil
}

func aggregate(rows []Row, column string, fn Func) (float64, error) {
	var acc float64
	switch fn {
	case Max:
		acc = math.Inf(-1)
	case Min:
		acc = math.Inf(1)
	}
	for _, r := range rows {
		v, ok := model.Number(r[column])
		if !ok {
			return 0, fmt.Errorf("%w: metric %q is not numeric: %v", ErrInvalidRequest, column, r[column])
		}
		switch fn {
		case Max:
			acc = math.Max(acc, v)
		case Min:
			acc = math.Min(acc, v)
		case Avg:
			acc += v
		}
	}
	if fn == Avg {
		acc /= float64(len(rows))
	}
	return acc, nil
}
