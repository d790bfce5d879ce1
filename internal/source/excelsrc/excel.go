package excelsrc

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

// Source is a source.Source over the sheets of one workbook.
type Source struct {
	Name string
	Path string

	mu   sync.RWMutex
	file *excelize.File
}

var _ source.Source = (*Source)(nil)

// New returns a source over the workbook at path.
func New(name, path string) *Source {
	return &Source{Name: name, Path: path}
}

// Connect opens the workbook.
func (s *Source) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return &source.ConnectionError{Source: s.Name, Err: fmt.Errorf("failed to open workbook: %w", err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		_ = s.file.Close()
	}

	s.file = f

	return nil
}

// Tables lists the sheets. Workbooks carry no mapping hints.
func (s *Source) Tables(_ context.Context) (map[string]mapping.Root, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.file == nil {
		return nil, &source.ConnectionError{Source: s.Name, Err: source.ErrNotConnected}
	}

	sheets := s.file.GetSheetList()
	out := make(map[string]mapping.Root, len(sheets))

	for _, sheet := range sheets {
		out[sheet] = nil
	}

	return out, nil
}

// Open starts a pass over a sheet. Cells are the formatted strings excelize
// reports; missing trailing cells are absent.
func (s *Source) Open(_ context.Context, table string, opts source.Options) (*source.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fail := func(err error) (*source.Table, error) {
		return nil, &source.ConnectionError{Source: s.Name, Table: table, Err: err}
	}

	if s.file == nil {
		return fail(source.ErrNotConnected)
	}

	if !slices.Contains(s.file.GetSheetList(), table) {
		return fail(fmt.Errorf("%w %q", source.ErrUnknownTable, table))
	}

	iter, err := s.file.Rows(table)
	if err != nil {
		return fail(fmt.Errorf("failed to open rows iterator for sheet %s: %w", table, err))
	}

	rows := &Rows{iter: iter, sheet: table}
	t := &source.Table{Name: table, Rows: rows}

	for range opts.SkipRows {
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return fail(err)
			}

			return t, nil
		}
	}

	if opts.HasHeader && rows.Next() {
		row := rows.Row()
		t.Header = make([]string, len(row))

		for i, cell := range row {
			t.Header[i], _ = cell.(string)
		}

		t.ColumnCount = len(t.Header)
	}

	if err := rows.Err(); err != nil {
		return fail(err)
	}

	return t, nil
}

// Close closes the workbook.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}

	err := s.file.Close()
	s.file = nil

	return err
}

// Rows wraps an excelize row iterator.
type Rows struct {
	iter  *excelize.Rows
	sheet string
	row   []any
	err   error
	done  bool
}

// Next advances to the next row.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}

	if !r.iter.Next() {
		if err := r.iter.Error(); err != nil {
			r.err = fmt.Errorf("failed to iterate sheet %s: %w", r.sheet, err)
		}

		_ = r.Close()

		return false
	}

	cols, err := r.iter.Columns()
	if err != nil {
		r.err = fmt.Errorf("failed to read row in sheet %s: %w", r.sheet, err)
		_ = r.Close()

		return false
	}

	r.row = make([]any, len(cols))
	for i, cell := range cols {
		if cell != "" {
			r.row[i] = cell
		}
	}

	return true
}

// Row returns the current row; empty cells are nil.
func (r *Rows) Row() []any {
	return r.row
}

// Err returns the first iteration error.
func (r *Rows) Err() error {
	return r.err
}

// Close releases the iterator.
func (r *Rows) Close() error {
	if r.done {
		return nil
	}

	r.done = true
	r.row = nil

	return r.iter.Close()
}
