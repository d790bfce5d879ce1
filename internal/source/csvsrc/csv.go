package csvsrc

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

var extensions = []string{".csv", ".tsv", ".txt"}

const bom = "\ufeff"

// Source is a source.Source over delimited text files.
type Source struct {
	Name  string
	paths []string

	mu     sync.RWMutex
	tables map[string]string
}

var _ source.Source = (*Source)(nil)

// New returns a source over the given files and directories.
func New(name string, paths ...string) *Source {
	return &Source{Name: name, paths: slices.Clone(paths)}
}

// Connect resolves the configured paths into tables.
func (s *Source) Connect(ctx context.Context) error {
	tables := map[string]string{}

	for _, path := range s.paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		info, err := os.Stat(path)
		if err != nil {
			return &source.ConnectionError{Source: s.Name, Err: err}
		}

		if !info.IsDir() {
			tables[tableName(path)] = path
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return &source.ConnectionError{Source: s.Name, Err: err}
		}

		for _, e := range entries {
			if e.IsDir() || !slices.Contains(extensions, strings.ToLower(filepath.Ext(e.Name()))) {
				continue
			}

			file := filepath.Join(path, e.Name())
			tables[tableName(file)] = file
		}
	}

	s.mu.Lock()
	s.tables = tables
	s.mu.Unlock()

	return nil
}

// Tables implements source.Source. Delimited files carry no mapping hints.
func (s *Source) Tables(_ context.Context) (map[string]mapping.Root, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.tables == nil {
		return nil, &source.ConnectionError{Source: s.Name, Err: source.ErrNotConnected}
	}

	out := make(map[string]mapping.Root, len(s.tables))
	for name := range s.tables {
		out[name] = nil
	}

	return out, nil
}

// Open implements source.Source. The returned rows hold the file open until
// closed.
func (s *Source) Open(_ context.Context, table string, opts source.Options) (*source.Table, error) {
	s.mu.RLock()
	path, ok := s.tables[table]
	connected := s.tables != nil
	s.mu.RUnlock()

	if !connected {
		return nil, &source.ConnectionError{Source: s.Name, Table: table, Err: source.ErrNotConnected}
	}

	if !ok {
		return nil, &source.ConnectionError{Source: s.Name, Table: table, Err: fmt.Errorf("%w %q", source.ErrUnknownTable, table)}
	}

	fail := func(err error) (*source.Table, error) {
		return nil, &source.ConnectionError{Source: s.Name, Table: table, Err: err}
	}

	reader, err := newReader(opts)
	if err != nil {
		return fail(err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fail(err)
	}

	cr := reader(bufio.NewReader(f))
	rows := &Rows{file: f, reader: cr}

	for range opts.SkipRows {
		if _, err := rows.read(); err != nil {
			_ = rows.Close()

			if errors.Is(err, io.EOF) {
				return &source.Table{Name: table, Rows: rows}, nil
			}

			return fail(fmt.Errorf("failed to skip rows: %w", err))
		}
	}

	t := &source.Table{Name: table, Rows: rows}

	if opts.HasHeader {
		header, err := rows.read()

		switch {
		case errors.Is(err, io.EOF):
			_ = rows.Close()
			return t, nil
		case err != nil:
			_ = rows.Close()
			return fail(fmt.Errorf("failed to read header: %w", err))
		}

		t.Header = header
		t.ColumnCount = len(header)
	}

	return t, nil
}

// Close implements source.Source.
func (s *Source) Close() error {
	s.mu.Lock()
	s.tables = nil
	s.mu.Unlock()

	return nil
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// newReader validates the options before any file is opened.
func newReader(opts source.Options) (func(io.Reader) *csv.Reader, error) {
	comma, err := delimiter(opts.Delimiter)
	if err != nil {
		return nil, err
	}

	var comment rune
	if opts.Comment != "" {
		comment, _ = utf8.DecodeRuneInString(opts.Comment)
	}

	return func(r io.Reader) *csv.Reader {
		cr := csv.NewReader(r)
		cr.Comma = comma
		cr.Comment = comment
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true

		return cr
	}, nil
}

func delimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}

	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}

	return r, nil
}

// Rows is a lazy cursor over the records of one file.
type Rows struct {
	file   *os.File
	reader *csv.Reader
	row    []any
	err    error
	first  bool
	done   bool
}

func (r *Rows) read() ([]string, error) {
	if r.done {
		return nil, io.EOF
	}

	rec, err := r.reader.Read()
	if err != nil {
		return nil, err
	}

	if !r.first {
		r.first = true
		if len(rec) > 0 {
			rec[0] = strings.TrimPrefix(rec[0], bom)
		}
	}

	return rec, nil
}

// Next advances to the next record.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}

	rec, err := r.read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			r.err = err
		}

		r.row = nil
		_ = r.Close()

		return false
	}

	r.row = make([]any, len(rec))
	for i, cell := range rec {
		r.row[i] = cell
	}

	return true
}

// Row returns the current record as strings.
func (r *Rows) Row() []any {
	return r.row
}

// Err returns the first read error.
func (r *Rows) Err() error {
	return r.err
}

// Close releases the file.
func (r *Rows) Close() error {
	if r.done {
		return nil
	}

	r.done = true

	return r.file.Close()
}
