package importer

import (
	"maps"
	"slices"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/convert"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

// TableRef names one table of one source.
type TableRef struct {
	Source   string
	Table    string
	Selected bool
}

// TableTypes are the conversions applied to a table's cells.
type TableTypes struct {
	Columns map[int]convert.Spec
	Rows    map[int]convert.Spec
}

// Request is the complete input of a run. Mappings, Types and Options are
// keyed by table name.
type Request struct {
	Tables        []TableRef
	Mappings      map[string]mapping.Root
	Types         map[string]TableTypes
	Options       map[string]source.Options
	MaxRows       int
	CancelOnError bool
}

// Clone returns a copy sharing no mutable state with r. Mapping roots are
// values and are shared.
func (r Request) Clone() Request {
	out := r
	out.Tables = slices.Clone(r.Tables)
	out.Mappings = maps.Clone(r.Mappings)
	out.Options = maps.Clone(r.Options)

	if r.Types != nil {
		out.Types = make(map[string]TableTypes, len(r.Types))
		for name, tt := range r.Types {
			out.Types[name] = TableTypes{Columns: maps.Clone(tt.Columns), Rows: maps.Clone(tt.Rows)}
		}
	}

	return out
}
