package engine

import (
	"fmt"
	"slices"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/common"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/diagnostic"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/match"
)

// Diagnostic codes of resolution failures.
const (
	CodeUnknownHeader    = "unknown_header"
	CodeMissingHeader    = "missing_header"
	CodeColumnOutOfRange = "column_out_of_range"
)

// maxSuggestions bounds the header names offered for an unknown header.
const maxSuggestions = 3

type fieldKind int

const (
	fieldNone  fieldKind = iota
	fieldFixed           // constant, column header or table name
	fieldCell            // cell of the current row
	fieldPivot           // pivot value of the current column
)

// field is a node resolved against one table.
type field struct {
	kind fieldKind
	text string
	col  int
	row  int
	node mapping.Node
}

type dimension struct {
	class   field
	objects field
}

type parameter struct {
	kind   mapping.ParameterKind
	name   field
	value  field
	extra  []field
	alt    field
	repeat bool
}

// plan is the resolved form of a root mapping.
type plan struct {
	root          mapping.Root
	name          field
	objects       field
	dims          []dimension
	groups        field
	members       field
	active        field
	alternative   field
	before        field
	param         parameter
	importObjects bool

	pivoted   bool
	lastPivot int
	dataStart int
	implicit  bool
	// cells are the distinct columns read by cell fields.
	cells []int
	// pivotRows are the distinct rows read by pivot fields.
	pivotRows []int
	skip      []int
}

// readsData reports whether any field depends on data rows.
func (p *plan) readsData() bool {
	return len(p.cells) > 0 || p.implicit
}

type resolver struct {
	in    Input
	diags diagnostic.Diagnostics
	cells []int
	rows  []int
}

func resolve(in Input) (*plan, error) {
	if in.Mapping == nil {
		return nil, &StructuralError{Table: in.Table, Diagnostics: *mapping.Validate(nil)}
	}

	r := &resolver{in: in}
	r.diags.Merge(*mapping.Validate(in.Mapping))

	root := in.Mapping
	p := &plan{root: root}

	switch m := root.(type) {
	case mapping.ObjectClass:
		p.name = r.field(m.Name, "name")
		p.objects = r.field(m.Objects, "objects")
		p.param = r.parameter(m.Parameter)
	case mapping.RelationshipClass:
		p.name = r.field(m.Name, "name")
		for i, d := range m.Dimensions {
			p.dims = append(p.dims, dimension{
				class:   r.field(d.Class, fmt.Sprintf("object_classes[%d]", i)),
				objects: r.field(d.Objects, fmt.Sprintf("objects[%d]", i)),
			})
		}

		p.param = r.parameter(m.Parameter)
		p.importObjects = m.ImportObjects
	case mapping.ObjectGroup:
		p.name = r.field(m.Name, "name")
		p.groups = r.field(m.Groups, "groups")
		p.members = r.field(m.Members, "members")
		p.importObjects = m.ImportObjects
	case mapping.Alternative:
		p.name = r.field(m.Name, "name")
	case mapping.Scenario:
		p.name = r.field(m.Name, "name")
		p.active = r.field(m.Active, "active")
	case mapping.ScenarioAlternative:
		p.name = r.field(m.Name, "name")
		p.alternative = r.field(m.Alternative, "alternative_name")
		p.before = r.field(m.Before, "before_alternative_name")
	default:
		r.diags.AddError(mapping.CodeNilMapping, fmt.Sprintf("unsupported mapping %T", root), "")
	}

	if r.diags.HasErrors() {
		return nil, &StructuralError{Table: in.Table, Diagnostics: r.diags}
	}

	p.lastPivot, p.pivoted = mapping.LastPivotRow(root)
	p.dataStart = mapping.DataStartRow(root)
	p.implicit = mapping.ImplicitValue(root)
	p.cells = common.SortedUnique(r.cells)
	p.pivotRows = common.SortedUnique(r.rows)
	p.skip = mapping.SkipColumns(root)

	return p, nil
}

func (r *resolver) parameter(mp mapping.Parameter) parameter {
	p := parameter{kind: mp.Kind, repeat: mp.Repeat}
	if mp.Kind == mapping.ParameterNone {
		return p
	}

	p.name = r.field(mp.Name, "parameters.name")
	p.value = r.field(mp.Value, "parameters.value")
	p.alt = r.field(mp.Alternative, "parameters.alternative_name")

	for i, n := range mp.ExtraDimensions {
		p.extra = append(p.extra, r.field(n, fmt.Sprintf("parameters.extra_dimensions[%d]", i)))
	}

	return p
}

func (r *resolver) field(n mapping.Node, path string) field {
	f := field{node: n}

	switch n.Kind {
	case mapping.NodeNone:
		f.kind = fieldNone
	case mapping.NodeConstant:
		f.kind = fieldFixed
		f.text = n.Value
	case mapping.NodeTableName:
		f.kind = fieldFixed
		f.text = r.in.Table
	case mapping.NodeColumn:
		col, ok := r.column(n.Ref, path)
		if ok {
			f.kind = fieldCell
			f.col = col
			r.cells = append(r.cells, col)
		}
	case mapping.NodeColumnHeader:
		f.kind = fieldFixed
		if col, ok := r.column(n.Ref, path); ok {
			if col >= len(r.in.Header) {
				r.diags.AddError(CodeMissingHeader,
					fmt.Sprintf("column %d has no header", col), path)
			} else {
				f.text = r.in.Header[col]
			}
		}
	case mapping.NodeRow:
		f.kind = fieldPivot
		f.row = n.Ref.Index

		if f.row == mapping.HeaderRow && len(r.in.Header) == 0 {
			r.diags.AddError(CodeMissingHeader, "table has no header to pivot on", path)
		}

		r.rows = append(r.rows, f.row)
	}

	return f
}

// column resolves a column reference to an index.
func (r *resolver) column(ref mapping.Reference, path string) (int, bool) {
	if !ref.ByName() {
		if r.in.ColumnCount > 0 && ref.Index >= r.in.ColumnCount {
			r.diags.AddError(CodeColumnOutOfRange,
				fmt.Sprintf("column %d is out of range for %d columns", ref.Index, r.in.ColumnCount), path)

			return 0, false
		}

		return ref.Index, true
	}

	header := r.in.Header
	if len(header) == 0 {
		r.diags.AddError(CodeMissingHeader,
			fmt.Sprintf("column %q is referenced by name but the table has no header", ref.Name), path)

		return 0, false
	}

	if i := slices.Index(header, ref.Name); i >= 0 {
		return i, true
	}

	if i, ok := normalizedIndex(header, ref.Name); ok {
		return i, true
	}

	r.diags.AddError(CodeUnknownHeader, fmt.Sprintf("no column named %q", ref.Name), path,
		match.Suggest(ref.Name, header, maxSuggestions)...)

	return 0, false
}

// normalizedIndex finds the single header equal to name after
// normalization.
func normalizedIndex(header []string, name string) (int, bool) {
	want := match.NormalizeHeader(name)
	if want == "" {
		return 0, false
	}

	found := -1

	for i, h := range header {
		if match.NormalizeHeader(h) != want {
			continue
		}

		if found >= 0 {
			return 0, false
		}

		found = i
	}

	return found, found >= 0
}
