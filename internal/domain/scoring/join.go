package scoring

// scoreTable is an ordered set of integer-valued rows keyed by athlete
// identifier. It replaces positional column manipulation with an explicit
// key -> fields mapping.
type scoreTable struct {
	order []string
	rows  map[string]map[string]int
}

func newScoreTable(capacity int) *scoreTable {
	return &scoreTable{
		order: make([]string, 0, capacity),
		rows:  make(map[string]map[string]int, capacity),
	}
}

// add appends a row. A repeated key overwrites its fields in place.
func (t *scoreTable) add(key string, fields map[string]int) {
	if _, ok := t.rows[key]; !ok {
		t.order = append(t.order, key)
	}
	t.rows[key] = fields
}

// innerJoin keeps the keys present in both tables, in left order, with the
// union of both field sets. Neither input is modified.
func innerJoin(left, right *scoreTable) *scoreTable {
	out := newScoreTable(len(left.order))
	for _, key := range left.order {
		r, ok := right.rows[key]
		if !ok {
			continue
		}
		l := left.rows[key]
		fields := make(map[string]int, len(l)+len(r))
		for k, v := range l {
			fields[k] = v
		}
		for k, v := range r {
			fields[k] = v
		}
		out.add(key, fields)
	}
	return out
}
