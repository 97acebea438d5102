package metric

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithKind pins the kind of a column, overriding suffix inference. Passing
// Unknown forces the column to be descriptive.
func WithKind(column string, kind Kind) Option {
	return func(c *Classifier) {
		if column != "" {
			c.overrides[column] = kind
		}
	}
}

// WithKinds pins several columns at once. Copied so later changes to the map
// do not leak into the classifier.
func WithKinds(kinds map[string]Kind) Option {
	return func(c *Classifier) {
		for column, kind := range kinds {
			if column != "" {
				c.overrides[column] = kind
			}
		}
	}
}

// Classifier partitions requested columns. It is immutable after
// construction and safe for concurrent use.
type Classifier struct {
	overrides map[string]Kind
}

// NewClassifier creates a Classifier with the suffix rule plus any overrides.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{overrides: make(map[string]Kind)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kind returns the kind assigned to column.
func (c *Classifier) Kind(column string) Kind {
	if k, ok := c.overrides[column]; ok {
		return k
	}
	return InferKind(column)
}

// Classify splits columns into metrics and descriptive fields, preserving the
// request order within each list. An empty metric list is not an error here;
// the aggregator rejects it. Repeated columns are kept once.
func (c *Classifier) Classify(columns []string) (metrics []Metric, descriptive []string) {
	metrics = make([]Metric, 0, len(columns))
	descriptive = make([]string, 0, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if _, dup := seen[col]; dup {
			continue
		}
		seen[col] = struct{}{}
		if k := c.Kind(col); k != Unknown {
			metrics = append(metrics, Metric{Column: col, Kind: k})
			continue
		}
		descriptive = append(descriptive, col)
	}
	return metrics, descriptive
}

// Classify uses the suffix convention only.
func Classify(columns []string) ([]Metric, []string) {
	return NewClassifier().Classify(columns)
}
