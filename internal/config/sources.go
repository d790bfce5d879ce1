package config

import (
	"fmt"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source/csvsrc"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source/excelsrc"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source/sqlsrc"
)

// BuildSources creates an unconnected adapter for every declared source.
func (s *Spec) BuildSources() (map[string]source.Source, error) {
	out := make(map[string]source.Source, len(s.Sources))

	for _, decl := range s.Sources {
		src, err := decl.build()
		if err != nil {
			return nil, err
		}

		out[decl.ID] = src
	}

	return out, nil
}

func (d Source) build() (source.Source, error) {
	switch d.Type {
	case SourceCSV:
		paths := d.Paths
		if d.Location != "" {
			paths = append([]string{d.Location}, paths...)
		}

		return csvsrc.New(d.ID, paths...), nil
	case SourceExcel:
		return excelsrc.New(d.ID, d.Location), nil
	case SourcePostgres:
		src := sqlsrc.New(d.ID, d.Location, d.Queries)
		src.Schema = d.Schema

		return src, nil
	case SourceMemory:
		return d.memory(), nil
	default:
		return nil, fmt.Errorf("source %s: unknown type %q", d.ID, d.Type)
	}
}

// memory builds an in-memory source; the first row of each table is its
// header unless the source options disable headers.
func (d Source) memory() *source.Memory {
	hasHeader := d.Options.Options().HasHeader
	tables := make(map[string]source.MemoryTable, len(d.Tables))

	for name, rows := range d.Tables {
		var t source.MemoryTable

		if hasHeader && len(rows) > 0 {
			t.Header = rows[0]
			rows = rows[1:]
		}

		t.Rows = source.StringRows(rows...)
		tables[name] = t
	}

	return source.NewMemory(d.ID, tables)
}
