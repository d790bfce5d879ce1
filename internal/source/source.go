package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
)

// ErrNotConnected is returned by sources used before Connect.
var ErrNotConnected = errors.New("source is not connected")

// ErrUnknownTable is returned when opening a table the source does not hold.
var ErrUnknownTable = errors.New("unknown table")

// ConnectionError reports a source that could not be reached or read. It is
// fatal to the affected table only.
type ConnectionError struct {
	Source string
	Table  string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("source %s: %v", e.Source, e.Err)
	}

	return fmt.Sprintf("source %s, table %s: %v", e.Source, e.Table, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Rows is a forward-only cursor over raw rows. Cells are strings or native
// scalars (float64, int64, bool, time.Time) depending on the adapter; nil is
// an empty cell.
type Rows interface {
	Next() bool
	Row() []any
	Err() error
	Close() error
}

// Table is an opened table.
type Table struct {
	Name        string
	Header      []string
	ColumnCount int
	Rows        Rows
}

// Options are read directives passed to Open. Adapters ignore options that
// do not apply to them.
type Options struct {
	// HasHeader takes the first row as the header.
	HasHeader bool `yaml:"has_header"`
	// SkipRows drops leading rows before the header.
	SkipRows int `yaml:"skip_rows"`
	// Delimiter separates fields of delimited text; comma when empty.
	Delimiter string `yaml:"delimiter"`
	// Comment starts comment lines of delimited text.
	Comment string `yaml:"comment"`
}

// Source is a connection to a store of tables.
type Source interface {
	// Connect opens the underlying resource.
	Connect(ctx context.Context) error
	// Tables lists table names with an optional default mapping; the mapping
	// is nil when the source has no hint.
	Tables(ctx context.Context) (map[string]mapping.Root, error)
	// Open starts a fresh pass over a table.
	Open(ctx context.Context, table string, opts Options) (*Table, error)
	// Close releases the resource.
	Close() error
}

// ReadAll drains rows and closes them.
func ReadAll(rows Rows) ([][]any, error) {
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		out = append(out, rows.Row())
	}

	return out, rows.Err()
}
