package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/ranksum/internal/domain/model"
	"github.com/okian/ranksum/pkg/logger"
	"github.com/okian/ranksum/pkg/metrics"
)

// SQLSource reads athletes from a relational table over database/sql.
// Values are always bound as parameters; identifiers are validated and quoted.
type SQLSource struct {
	settings
	db      *sql.DB
	dialect Dialect
	closed  atomic.Bool
}

var _ Source = (*SQLSource)(nil)

// Open connects to dsn with the dialect's driver and verifies the connection.
func Open(ctx context.Context, dialect Dialect, dsn string, opts ...Option) (*SQLSource, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect.Name, err)
	}
	if dialect.Name == SQLite.Name {
		// SQLite allows one writer and :memory: databases are per connection.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to %s database: %w", dialect.Name, err)
	}
	s, err := NewSQLSource(db, dialect, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLSource wraps an open database handle.
func NewSQLSource(db *sql.DB, dialect Dialect, opts ...Option) (*SQLSource, error) {
	s := &SQLSource{settings: defaultSettings(), db: db, dialect: dialect}
	for _, opt := range opts {
		opt(&s.settings)
	}
	for _, name := range []string{s.table, s.idColumn, s.divisionColumn, s.regionColumn} {
		if err := validateIdentifier(name); err != nil {
			return nil, err
		}
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("sql-source")
	}
	return s, nil
}

// Statement builds the parameterized SELECT for q.
func (s *SQLSource) Statement(q Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	columns := q.selection()
	for _, c := range columns {
		if err := validateIdentifier(c); err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = s.dialect.Quote(c)
	}

	var b strings.Builder
	args := make([]any, 0, 2+len(q.Metrics))
	bind := func(v any) string {
		args = append(args, v)
		return s.dialect.Placeholder(len(args))
	}

	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s = %s",
		strings.Join(quoted, ", "), s.dialect.Quote(s.table), s.dialect.Quote(s.divisionColumn), bind(q.Division))
	if q.Region != 0 {
		fmt.Fprintf(&b, " AND %s = %s", s.dialect.Quote(s.regionColumn), bind(q.Region))
	}
	for _, m := range q.Metrics {
		fmt.Fprintf(&b, " AND %s <> %s", s.dialect.Quote(m), bind(model.DNF))
	}
	return b.String(), args, nil
}

// Athletes runs the query for q and returns one row per athlete.
func (s *SQLSource) Athletes(ctx context.Context, q Query) ([]model.Row, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	stmt, args, err := s.Statement(q)
	if err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := s.query(ctx, stmt, args)
	latency := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordSourceQueryError()
		metrics.RecordErrorByComponent("source", "query_error")
		metrics.RecordErrorLatency("source", "query_error", latency)
		s.logger.Error(ctx, "athlete query failed",
			logger.Int64("division", q.Division),
			logger.Int64("region", q.Region),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	metrics.RecordSourceQuery(latency, len(out))
	s.logger.Debug(ctx, "athlete query",
		logger.Int64("division", q.Division),
		logger.Int64("region", q.Region),
		logger.Int("rows", len(out)),
		logger.Float64("latencyMs", latency),
	)
	return out, nil
}

func (s *SQLSource) query(ctx context.Context, stmt string, args []any) ([]model.Row, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := make([]model.Row, 0)
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(model.Row, len(names))
		for i, n := range names {
			row[n] = normalize(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// normalize converts driver byte slices to strings so rows are safe to hold.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// Load creates the athlete table when missing and inserts rows in one
// transaction. Column types are inferred from the first row.
func (s *SQLSource) Load(ctx context.Context, columns []string, rows []model.Row) error {
	if len(columns) == 0 || len(rows) == 0 {
		return nil
	}
	quoted := make([]string, len(columns))
	defs := make([]string, len(columns))
	marks := make([]string, len(columns))
	for i, c := range columns {
		if err := validateIdentifier(c); err != nil {
			return err
		}
		quoted[i] = s.dialect.Quote(c)
		defs[i] = quoted[i] + " " + s.columnType(rows[0][c])
		if c == s.idColumn {
			defs[i] += " PRIMARY KEY"
		}
		marks[i] = s.dialect.Placeholder(i + 1)
	}

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.dialect.Quote(s.table), strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.dialect.Quote(s.table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	args := make([]any, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			args[i] = row[c]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert athlete %v: %w", row[s.idColumn], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	s.logger.Info(ctx, "athletes loaded", logger.String("table", s.table), logger.Int("rows", len(rows)))
	return nil
}

func (s *SQLSource) columnType(sample any) string {
	switch sample.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return s.dialect.integerType
	case float32, float64:
		return s.dialect.floatType
	default:
		return s.dialect.textType
	}
}

// Close closes the database handle.
func (s *SQLSource) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
