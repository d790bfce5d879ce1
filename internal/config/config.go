package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/convert"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/engine"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/importer"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

// VerboseEnv turns on debug logging when set to a true value.
const VerboseEnv = "SPINE_IMPORT_VERBOSE"

// SourceType selects a source adapter.
type SourceType string

// Known source types.
const (
	SourceCSV      SourceType = "csv"
	SourceExcel    SourceType = "excel"
	SourcePostgres SourceType = "postgres"
	SourceMemory   SourceType = "memory"
)

var sourceTypes = []SourceType{SourceCSV, SourceExcel, SourcePostgres, SourceMemory}

// ReadOptions are the read directives of a source or table.
type ReadOptions struct {
	HasHeader *bool  `yaml:"has_header,omitempty"`
	SkipRows  int    `yaml:"skip_rows,omitempty"`
	Delimiter string `yaml:"delimiter,omitempty"`
	Comment   string `yaml:"comment,omitempty"`
}

// Options converts to adapter options; a header is assumed unless disabled.
func (o ReadOptions) Options() source.Options {
	return source.Options{
		HasHeader: o.HasHeader == nil || *o.HasHeader,
		SkipRows:  o.SkipRows,
		Delimiter: o.Delimiter,
		Comment:   o.Comment,
	}
}

// Source declares one source.
type Source struct {
	ID   string     `yaml:"id"`
	Type SourceType `yaml:"type"`
	// Location is a path for file sources and a DSN for postgres.
	Location string `yaml:"location"`
	// Paths adds files or directories to a csv source.
	Paths []string `yaml:"paths,omitempty"`
	// Schema and Queries apply to postgres sources.
	Schema  string            `yaml:"schema,omitempty"`
	Queries map[string]string `yaml:"queries,omitempty"`
	// Tables holds the rows of a memory source, keyed by table name.
	Tables  map[string][][]string `yaml:"tables,omitempty"`
	Options ReadOptions           `yaml:"options,omitempty"`
}

// Table declares one table to import.
type Table struct {
	Source      string               `yaml:"source"`
	Table       string               `yaml:"table"`
	Selected    *bool                `yaml:"selected,omitempty"`
	Mapping     *mapping.Document    `yaml:"mapping,omitempty"`
	ColumnTypes map[int]convert.Spec `yaml:"column_types,omitempty"`
	RowTypes    map[int]convert.Spec `yaml:"row_types,omitempty"`
	Options     *ReadOptions         `yaml:"options,omitempty"`
}

// IsSelected reports whether the table takes part in the import.
func (t Table) IsSelected() bool {
	return t.Selected == nil || *t.Selected
}

// Spec is an import specification.
type Spec struct {
	Sources       []Source `yaml:"sources"`
	Tables        []Table  `yaml:"tables"`
	MaxRows       *int     `yaml:"max_rows,omitempty"`
	CancelOnError bool     `yaml:"cancel_on_error,omitempty"`
	Output        string   `yaml:"output,omitempty"`
	ErrorLog      string   `yaml:"error_log,omitempty"`
}

// LoadEnv loads KEY=value pairs from path into the environment. A missing
// file is not an error; variables already set are kept.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}

	return nil
}

// Verbose reports whether VerboseEnv asks for debug logging.
func Verbose() bool {
	v, err := strconv.ParseBool(os.Getenv(VerboseEnv))
	return err == nil && v
}

// LoadFile loads and parses an import specification from path.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import spec %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a Spec, applies defaults and checks
// references between tables and sources.
func Parse(data []byte) (*Spec, error) {
	var s Spec

	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse import spec YAML: %w", err)
	}

	applyDefaults(&s)

	if err := s.check(); err != nil {
		return nil, err
	}

	return &s, nil
}

// applyDefaults fills in default values and expands environment variables
// in source locations.
func applyDefaults(s *Spec) {
	if s.MaxRows == nil {
		unbounded := engine.Unbounded
		s.MaxRows = &unbounded
	}

	for i := range s.Sources {
		src := &s.Sources[i]
		src.Location = os.ExpandEnv(src.Location)

		for j, p := range src.Paths {
			src.Paths[j] = os.ExpandEnv(p)
		}
	}

	s.Output = os.ExpandEnv(s.Output)
	s.ErrorLog = os.ExpandEnv(s.ErrorLog)
}

func (s *Spec) check() error {
	ids := map[string]bool{}

	for i, src := range s.Sources {
		if src.ID == "" {
			return fmt.Errorf("source %d: missing id", i)
		}

		if ids[src.ID] {
			return fmt.Errorf("source %s: duplicate id", src.ID)
		}

		ids[src.ID] = true

		if !slices.Contains(sourceTypes, src.Type) {
			return fmt.Errorf("source %s: unknown type %q", src.ID, src.Type)
		}

		if src.Location == "" && len(src.Paths) == 0 && src.Type != SourceMemory {
			return fmt.Errorf("source %s: missing location", src.ID)
		}
	}

	tables := map[string]string{}

	for i, t := range s.Tables {
		if t.Table == "" {
			return fmt.Errorf("table %d: missing table name", i)
		}

		if !ids[t.Source] {
			return fmt.Errorf("table %s: unknown source %q", t.Table, t.Source)
		}

		if other, ok := tables[t.Table]; ok {
			return fmt.Errorf("table %s: declared for sources %s and %s", t.Table, other, t.Source)
		}

		tables[t.Table] = t.Source
	}

	return nil
}

// Source returns the source declaration with the given id.
func (s *Spec) Source(id string) (Source, bool) {
	i := slices.IndexFunc(s.Sources, func(src Source) bool { return src.ID == id })
	if i < 0 {
		return Source{}, false
	}

	return s.Sources[i], true
}

// Request builds the coordinator input. Table options replace the options
// of their source.
func (s *Spec) Request() importer.Request {
	req := importer.Request{
		Tables:        make([]importer.TableRef, 0, len(s.Tables)),
		Mappings:      map[string]mapping.Root{},
		Types:         map[string]importer.TableTypes{},
		Options:       map[string]source.Options{},
		MaxRows:       engine.Unbounded,
		CancelOnError: s.CancelOnError,
	}

	if s.MaxRows != nil {
		req.MaxRows = *s.MaxRows
	}

	for _, t := range s.Tables {
		req.Tables = append(req.Tables, importer.TableRef{Source: t.Source, Table: t.Table, Selected: t.IsSelected()})

		if t.Mapping != nil && t.Mapping.Root != nil {
			req.Mappings[t.Table] = t.Mapping.Root
		}

		req.Types[t.Table] = importer.TableTypes{Columns: maps.Clone(t.ColumnTypes), Rows: maps.Clone(t.RowTypes)}

		opts := ReadOptions{}
		if src, ok := s.Source(t.Source); ok {
			opts = src.Options
		}

		if t.Options != nil {
			opts = *t.Options
		}

		req.Options[t.Table] = opts.Options()
	}

	return req
}
