// Package scoring computes rank-sum leaderboards.
//
// Each scoring metric is ranked independently (zero-based position after a
// stable sort, ascending for elapsed time, descending otherwise). The
// per-metric ranks are inner-joined on the athlete identifier and summed
// into a composite score, labelled "points". The final table holds the
// requested descriptive fields plus points, sorted ascending.
//
// Tie policy: equal metric values keep their input row order, and equal
// composite scores keep their input row order. No other tie-break applies.
//
// All functions are pure over their inputs and safe for concurrent use as
// long as callers do not mutate the rows they pass in.
package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/ranksum/internal/domain/metric"
	"github.com/okian/ranksum/internal/domain/model"
)

// PointsField labels the composite score in leaderboard rows.
const PointsField = "points"

// rankFieldPrefix labels per-metric rank fields inside the merge.
const rankFieldPrefix = "score "

// Row is an athlete record keyed by column name.
type Row = model.Row

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithIDColumn sets the identifier column used as the join key.
func WithIDColumn(column string) Option {
	return func(a *Aggregator) {
		if column != "" {
			a.idColumn = column
		}
	}
}

// Aggregator computes leaderboards. It holds configuration only.
type Aggregator struct {
	idColumn string
}

// NewAggregator creates an Aggregator keyed on the "id" column by default.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{idColumn: model.DefaultIDColumn}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// IDColumn returns the identifier column.
func (a *Aggregator) IDColumn() string { return a.idColumn }

// Result is a computed leaderboard.
type Result struct {
	// Rows holds descriptive fields plus PointsField, best first.
	Rows []Row
	// Excluded counts rows dropped for a DNF value in a scoring metric.
	Excluded int
}

// ComputeLeaderboard ranks rows with the default Aggregator.
func ComputeLeaderboard(rows []Row, metrics []metric.Metric, descriptive []string) ([]Row, error) {
	res, err := NewAggregator().Compute(rows, metrics, descriptive)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Compute validates the request, drops DNF rows, and returns the rank-sum
// leaderboard. Validation runs before any ranking work; on error no partial
// result is returned.
func (a *Aggregator) Compute(rows []Row, metrics []metric.Metric, descriptive []string) (Result, error) {
	tbl, err := a.buildTable(rows, metrics, descriptive)
	if err != nil {
		return Result{}, err
	}

	eligible := excludeDNF(tbl)
	excluded := len(tbl.records) - len(eligible.records)

	boards := make([]*scoreTable, len(metrics))
	for i := range metrics {
		boards[i] = rankMetric(eligible, i, metrics[i])
	}

	merged := boards[0]
	for _, b := range boards[1:] {
		merged = innerJoin(merged, b)
	}

	points := composite(merged)

	out := make([]Row, 0, len(points.order))
	scores := make([]int, 0, len(points.order))
	// Re-join onto the full descriptive table; DNF rows fall out here.
	for _, rec := range tbl.records {
		fields, ok := points.rows[rec.key]
		if !ok {
			continue
		}
		row := rec.row.Project(descriptive)
		row[PointsField] = fields[PointsField]
		out = append(out, row)
		scores = append(scores, fields[PointsField])
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return scores[idx[i]] < scores[idx[j]] })

	sorted := make([]Row, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}

	return Result{Rows: sorted, Excluded: excluded}, nil
}

// record is one validated input row.
type record struct {
	key    string
	row    Row
	values []float64 // aligned with the metric list
}

// table is the validated input in row order.
type table struct {
	records []record
}

// buildTable runs every validation check.
func (a *Aggregator) buildTable(rows []Row, metrics []metric.Metric, descriptive []string) (table, error) {
	if len(metrics) == 0 {
		return table{}, fmt.Errorf("%w: no scoring metrics supplied", ErrInvalidRequest)
	}

	descSet := make(map[string]struct{}, len(descriptive))
	for _, d := range descriptive {
		descSet[d] = struct{}{}
	}
	if _, ok := descSet[a.idColumn]; !ok {
		return table{}, fmt.Errorf("%w: identifier column %q missing from descriptive fields", ErrInvalidRequest, a.idColumn)
	}
	if _, clash := descSet[PointsField]; clash {
		return table{}, fmt.Errorf("%w: descriptive field %q collides with the composite score", ErrInvalidRequest, PointsField)
	}

	metricSet := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		if m.Kind == metric.Unknown {
			return table{}, fmt.Errorf("%w: column %q has no metric kind", ErrInvalidRequest, m.Column)
		}
		if _, dup := metricSet[m.Column]; dup {
			return table{}, fmt.Errorf("%w: metric %q listed twice", ErrInvalidRequest, m.Column)
		}
		if _, both := descSet[m.Column]; both {
			return table{}, fmt.Errorf("%w: column %q is both metric and descriptive", ErrInvalidRequest, m.Column)
		}
		metricSet[m.Column] = struct{}{}
	}

	tbl := table{records: make([]record, 0, len(rows))}
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		key, ok := model.Key(row[a.idColumn])
		if !ok {
			return table{}, fmt.Errorf("%w: row %d has no %q value", ErrInvalidRequest, i, a.idColumn)
		}
		if prev, dup := seen[key]; dup {
			return table{}, fmt.Errorf("%w: identifier %q appears in rows %d and %d", ErrInvalidRequest, key, prev, i)
		}
		seen[key] = i

		for _, d := range descriptive {
			if _, ok := row[d]; !ok {
				return table{}, fmt.Errorf("%w: row %d lacks descriptive field %q", ErrInvalidRequest, i, d)
			}
		}

		values := make([]float64, len(metrics))
		for j, m := range metrics {
			raw, ok := row[m.Column]
			if !ok {
				return table{}, fmt.Errorf("%w: metric %q absent from row %d", ErrInvalidRequest, m.Column, i)
			}
			v, ok := model.Number(raw)
			if !ok {
				return table{}, fmt.Errorf("%w: metric %q in row %d is not numeric: %v", ErrInvalidRequest, m.Column, i, raw)
			}
			values[j] = v
		}
		tbl.records = append(tbl.records, record{key: key, row: row, values: values})
	}
	return tbl, nil
}

// excludeDNF drops every record holding the sentinel in any scoring metric.
func excludeDNF(t table) table {
	out := table{records: make([]record, 0, len(t.records))}
	for _, rec := range t.records {
		dnf := false
		for _, v := range rec.values {
			if v == model.DNF {
				dnf = true
				break
			}
		}
		if !dnf {
			out.records = append(out.records, rec)
		}
	}
	return out
}

// rankMetric builds the sub-table for metric i: identifier plus a rank field
// holding the zero-based position after a stable sort on the metric value.
func rankMetric(t table, i int, m metric.Metric) *scoreTable {
	sub := make([]record, len(t.records))
	copy(sub, t.records)

	if m.Ascending() {
		sort.SliceStable(sub, func(a, b int) bool { return sub[a].values[i] < sub[b].values[i] })
	} else {
		sort.SliceStable(sub, func(a, b int) bool { return sub[a].values[i] > sub[b].values[i] })
	}

	field := RankField(m.Column)
	st := newScoreTable(len(sub))
	for rank, rec := range sub {
		st.add(rec.key, map[string]int{field: rank})
	}
	return st
}

// RankField names the per-metric rank field for column.
func RankField(column string) string { return rankFieldPrefix + column }

// composite sums the rank fields of every merged row into PointsField and
// drops the individual rank fields.
func composite(t *scoreTable) *scoreTable {
	out := newScoreTable(len(t.order))
	for _, key := range t.order {
		sum := 0
		for field, v := range t.rows[key] {
			if strings.HasPrefix(field, rankFieldPrefix) {
				sum += v
			}
		}
		out.add(key, map[string]int{PointsField: sum})
	}
	return out
}
