package sqlsrc

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

const (
	defaultSchema   = "public"
	maxConns        = 4
	connectTimeout  = 10 * time.Second
	maxConnIdleTime = 5 * time.Minute
)

const listTablesQuery = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = $1 AND table_type IN ('BASE TABLE', 'VIEW')
ORDER BY table_name`

// Source is a source.Source over a PostgreSQL database.
type Source struct {
	Name string
	DSN  string
	// Schema holds the listed tables; public when empty.
	Schema string
	// Queries are extra tables defined by a SELECT statement.
	Queries map[string]string

	mu   sync.RWMutex
	pool *pgxpool.Pool
}

var _ source.Source = (*Source)(nil)

// New returns a source for the database at dsn.
func New(name, dsn string, queries map[string]string) *Source {
	return &Source{Name: name, DSN: dsn, Queries: maps.Clone(queries)}
}

func (s *Source) schema() string {
	if s.Schema == "" {
		return defaultSchema
	}

	return s.Schema
}

// Connect creates the connection pool and checks the database answers.
func (s *Source) Connect(ctx context.Context) error {
	poolConfig, err := pgxpool.ParseConfig(s.DSN)
	if err != nil {
		return &source.ConnectionError{Source: s.Name, Err: fmt.Errorf("failed to parse postgres config: %w", err)}
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MaxConnIdleTime = maxConnIdleTime

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return &source.ConnectionError{Source: s.Name, Err: fmt.Errorf("failed to create postgres pool: %w", err)}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return &source.ConnectionError{Source: s.Name, Err: fmt.Errorf("failed to ping postgres: %w", err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		s.pool.Close()
	}

	s.pool = pool

	return nil
}

func (s *Source) connected() *pgxpool.Pool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.pool
}

// Tables lists the tables and views of the schema plus the named queries.
func (s *Source) Tables(ctx context.Context) (map[string]mapping.Root, error) {
	pool := s.connected()
	if pool == nil {
		return nil, &source.ConnectionError{Source: s.Name, Err: source.ErrNotConnected}
	}

	rows, err := pool.Query(ctx, listTablesQuery, s.schema())
	if err != nil {
		return nil, &source.ConnectionError{Source: s.Name, Err: fmt.Errorf("failed to list tables: %w", err)}
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, &source.ConnectionError{Source: s.Name, Err: fmt.Errorf("failed to list tables: %w", err)}
	}

	out := make(map[string]mapping.Root, len(names)+len(s.Queries))
	for _, name := range names {
		out[name] = nil
	}

	for name := range s.Queries {
		out[name] = nil
	}

	return out, nil
}

func (s *Source) statement(table string) string {
	if q, ok := s.Queries[table]; ok {
		return q
	}

	return "SELECT * FROM " + pgx.Identifier{s.schema(), table}.Sanitize()
}

// Open runs the table's query. The header is always the result's column
// names; HasHeader is ignored and SkipRows drops leading result rows.
func (s *Source) Open(ctx context.Context, table string, opts source.Options) (*source.Table, error) {
	fail := func(err error) (*source.Table, error) {
		return nil, &source.ConnectionError{Source: s.Name, Table: table, Err: err}
	}

	pool := s.connected()
	if pool == nil {
		return fail(source.ErrNotConnected)
	}

	rows, err := pool.Query(ctx, s.statement(table))
	if err != nil {
		return fail(fmt.Errorf("failed to query table: %w", err))
	}

	fields := rows.FieldDescriptions()
	header := make([]string, len(fields))

	for i, fd := range fields {
		header[i] = fd.Name
	}

	cursor := &Rows{rows: rows}

	for range opts.SkipRows {
		if !cursor.Next() {
			break
		}
	}

	if err := cursor.Err(); err != nil {
		return fail(err)
	}

	return &source.Table{Name: table, Header: header, ColumnCount: len(header), Rows: cursor}, nil
}

// Close closes the pool.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}

	return nil
}

// Rows adapts pgx rows to source.Rows.
type Rows struct {
	rows pgx.Rows
	row  []any
	err  error
}

// Next advances to the next result row.
func (r *Rows) Next() bool {
	if r.err != nil || !r.rows.Next() {
		r.row = nil
		return false
	}

	values, err := r.rows.Values()
	if err != nil {
		r.err = fmt.Errorf("failed to decode row: %w", err)
		r.rows.Close()

		return false
	}

	r.row = make([]any, len(values))
	for i, v := range values {
		r.row[i] = cell(v)
	}

	return true
}

// Row returns the current row.
func (r *Rows) Row() []any {
	return r.row
}

// Err returns the decode error or the error the query ended with.
func (r *Rows) Err() error {
	if r.err != nil {
		return r.err
	}

	return r.rows.Err()
}

// Close releases the connection.
func (r *Rows) Close() error {
	r.rows.Close()
	return nil
}

// cell narrows driver values to the scalars the converters understand.
func cell(v any) any {
	switch val := v.(type) {
	case nil, string, bool, float64, int64, time.Time:
		return val
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case float32:
		return float64(val)
	case []byte:
		return string(val)
	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}

		return f.Float64
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
