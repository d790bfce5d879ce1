package source

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
)

// SliceRows iterates over rows held in memory.
type SliceRows struct {
	rows [][]any
	pos  int
}

// NewSliceRows returns a cursor over rows. The rows are not copied.
func NewSliceRows(rows [][]any) *SliceRows {
	return &SliceRows{rows: rows, pos: -1}
}

// StringRows converts rows of strings into raw rows.
func StringRows(rows ...[]string) [][]any {
	out := make([][]any, len(rows))

	for i, row := range rows {
		out[i] = make([]any, len(row))
		for j, cell := range row {
			out[i][j] = cell
		}
	}

	return out
}

// Next advances to the next row.
func (r *SliceRows) Next() bool {
	if r.pos+1 >= len(r.rows) {
		r.pos = len(r.rows)
		return false
	}

	r.pos++

	return true
}

// Row returns the current row.
func (r *SliceRows) Row() []any {
	if r.pos < 0 || r.pos >= len(r.rows) {
		return nil
	}

	return r.rows[r.pos]
}

// Err always returns nil.
func (r *SliceRows) Err() error {
	return nil
}

// Close is a no-op.
func (r *SliceRows) Close() error {
	return nil
}

// MemoryTable is a table held by a Memory source.
type MemoryTable struct {
	Header  []string
	Rows    [][]any
	Mapping mapping.Root
}

// Memory is a Source over in-memory tables.
type Memory struct {
	Name string

	mu        sync.RWMutex
	tables    map[string]MemoryTable
	connected bool
	// ConnectErr, when set, is returned by Connect.
	ConnectErr error
}

// NewMemory returns a source holding the given tables.
func NewMemory(name string, tables map[string]MemoryTable) *Memory {
	return &Memory{Name: name, tables: maps.Clone(tables)}
}

// Put adds or replaces a table.
func (m *Memory) Put(name string, t MemoryTable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tables == nil {
		m.tables = map[string]MemoryTable{}
	}

	m.tables[name] = t
}

// Connect implements Source.
func (m *Memory) Connect(_ context.Context) error {
	if m.ConnectErr != nil {
		return &ConnectionError{Source: m.Name, Err: m.ConnectErr}
	}

	m.mu.Lock()
	m.connected = true
	m.mu.Unlock()

	return nil
}

// Tables implements Source.
func (m *Memory) Tables(_ context.Context) (map[string]mapping.Root, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return nil, &ConnectionError{Source: m.Name, Err: ErrNotConnected}
	}

	out := make(map[string]mapping.Root, len(m.tables))
	for name, t := range m.tables {
		out[name] = t.Mapping
	}

	return out, nil
}

// Open implements Source. Options are ignored; the header is the table's
// declared header.
func (m *Memory) Open(_ context.Context, table string, _ Options) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return nil, &ConnectionError{Source: m.Name, Table: table, Err: ErrNotConnected}
	}

	t, ok := m.tables[table]
	if !ok {
		return nil, &ConnectionError{Source: m.Name, Table: table, Err: fmt.Errorf("%w %q", ErrUnknownTable, table)}
	}

	width := len(t.Header)
	for _, row := range t.Rows {
		width = max(width, len(row))
	}

	return &Table{
		Name:        table,
		Header:      append([]string(nil), t.Header...),
		ColumnCount: width,
		Rows:        NewSliceRows(t.Rows),
	}, nil
}

// Close implements Source.
func (m *Memory) Close() error {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()

	return nil
}
