// Package metric classifies requested columns into scoring metrics and
// descriptive fields.
//
// Every metric carries an explicit Kind. By default the kind is inferred
// from the column name suffix:
//
//	secs        -> ElapsedTime      (lower is better)
//	lbs         -> WeightLifted     (higher is better)
//	reps, ups   -> RepetitionCount  (higher is better)
//
// A Classifier can be configured with explicit kinds per column, which take
// precedence over the suffix rule.
package metric

import (
	"fmt"
	"strings"
)

// Kind is the semantic unit of a metric column.
type Kind int

// Metric kinds. Unknown is never a scoring metric.
const (
	Unknown Kind = iota
	ElapsedTime
	WeightLifted
	RepetitionCount
)

var kindNames = map[Kind]string{
	Unknown:         "unknown",
	ElapsedTime:     "elapsed_time",
	WeightLifted:    "weight_lifted",
	RepetitionCount: "repetition_count",
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Ascending reports whether smaller values rank better.
func (k Kind) Ascending() bool { return k == ElapsedTime }

// ParseKind maps a configuration name to a Kind. Suffixes ("secs", "lbs",
// "reps", "ups") are accepted as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "elapsed_time", "time", "secs":
		return ElapsedTime, nil
	case "weight_lifted", "weight", "lbs":
		return WeightLifted, nil
	case "repetition_count", "reps", "ups":
		return RepetitionCount, nil
	default:
		return Unknown, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// suffixes is ordered so that the lookup is deterministic.
var suffixes = []struct {
	suffix string
	kind   Kind
}{
	{"secs", ElapsedTime},
	{"lbs", WeightLifted},
	{"reps", RepetitionCount},
	{"ups", RepetitionCount},
}

// InferKind applies the suffix convention to a column name.
func InferKind(column string) Kind {
	for _, s := range suffixes {
		if strings.HasSuffix(column, s.suffix) {
			return s.kind
		}
	}
	return Unknown
}

// Metric is a scoring column together with its kind.
type Metric struct {
	Column string
	Kind   Kind
}

// Ascending reports whether the metric ranks smaller values first.
func (m Metric) Ascending() bool { return m.Kind.Ascending() }

// Columns returns the column names of ms in order.
func Columns(ms []Metric) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Column
	}
	return out
}
