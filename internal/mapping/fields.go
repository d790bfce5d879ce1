package mapping

import (
	"fmt"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/common"
)

// Role names the semantic slot a node fills within a root.
type Role int

const (
	RoleName Role = iota
	RoleObjects
	RoleDimensionClass
	RoleDimensionObjects
	RoleGroups
	RoleMembers
	RoleActive
	RoleAlternative
	RoleBefore
	RoleParameterName
	RoleParameterValue
	RoleExtraDimension
	RoleParameterAlternative
)

// String returns the serialized key of the role.
func (r Role) String() string {
	switch r {
	case RoleName:
		return "name"
	case RoleObjects:
		return "objects"
	case RoleDimensionClass:
		return "object_classes"
	case RoleDimensionObjects:
		return "objects"
	case RoleGroups:
		return "groups"
	case RoleMembers:
		return "members"
	case RoleActive:
		return "active"
	case RoleAlternative:
		return "alternative_name"
	case RoleBefore:
		return "before_alternative_name"
	case RoleParameterName:
		return "parameters.name"
	case RoleParameterValue:
		return "parameters.value"
	case RoleExtraDimension:
		return "parameters.extra_dimensions"
	case RoleParameterAlternative:
		return "parameters.alternative_name"
	default:
		return common.UnknownStr
	}
}

// Field is one node of a root together with its slot.
type Field struct {
	Role Role
	// Position is the dimension or extra-dimension index; 0 otherwise.
	Position int
	Node     Node
}

// Path returns a human readable location such as object_classes[1].
func (f Field) Path() string {
	switch f.Role {
	case RoleDimensionClass, RoleDimensionObjects, RoleExtraDimension:
		return fmt.Sprintf("%s[%d]", f.Role, f.Position)
	default:
		return f.Role.String()
	}
}

// Fields enumerates every node slot of the root in declaration order,
// including absent ones.
func Fields(r Root) []Field {
	var out []Field

	add := func(role Role, pos int, n Node) {
		out = append(out, Field{Role: role, Position: pos, Node: n})
	}

	switch m := r.(type) {
	case ObjectClass:
		add(RoleName, 0, m.Name)
		add(RoleObjects, 0, m.Objects)
		out = append(out, parameterFields(m.Parameter)...)
	case RelationshipClass:
		add(RoleName, 0, m.Name)

		for i, d := range m.Dimensions {
			add(RoleDimensionClass, i, d.Class)
			add(RoleDimensionObjects, i, d.Objects)
		}

		out = append(out, parameterFields(m.Parameter)...)
	case ObjectGroup:
		add(RoleName, 0, m.Name)
		add(RoleGroups, 0, m.Groups)
		add(RoleMembers, 0, m.Members)
	case Alternative:
		add(RoleName, 0, m.Name)
	case Scenario:
		add(RoleName, 0, m.Name)
		add(RoleActive, 0, m.Active)
	case ScenarioAlternative:
		add(RoleName, 0, m.Name)
		add(RoleAlternative, 0, m.Alternative)
		add(RoleBefore, 0, m.Before)
	}

	return out
}

func parameterFields(p Parameter) []Field {
	if p.Kind == ParameterNone {
		return nil
	}

	out := []Field{{Role: RoleParameterName, Node: p.Name}}
	if p.Kind.HasValue() {
		out = append(out, Field{Role: RoleParameterValue, Node: p.Value})
	}

	for i, n := range p.ExtraDimensions {
		out = append(out, Field{Role: RoleExtraDimension, Position: i, Node: n})
	}

	if p.Kind.HasValue() {
		out = append(out, Field{Role: RoleParameterAlternative, Node: p.Alternative})
	}

	return out
}

// LastPivotRow returns the highest row referenced by a Row node. ok is false
// when the mapping is not pivoted; the result is HeaderRow when only the
// header is pivoted.
func LastPivotRow(r Root) (last int, ok bool) {
	last = HeaderRow

	for _, f := range Fields(r) {
		if !f.Node.IsPivoted() {
			continue
		}

		ok = true
		last = max(last, f.Node.Ref.Index)
	}

	return last, ok
}

// IsPivoted reports whether any node of the root reads a row.
func IsPivoted(r Root) bool {
	_, ok := LastPivotRow(r)
	return ok
}

// DataStartRow returns the first row holding data. Pivot header rows are
// never read as data.
func DataStartRow(r Root) int {
	start := r.Options().ReadStartRow

	last, ok := LastPivotRow(r)
	if !ok {
		return start
	}

	return max(last, start-1) + 1
}

// ImplicitValue reports whether parameter values come from the pivoted data
// cells rather than a value node.
func ImplicitValue(r Root) bool {
	p := ParameterOf(r)

	return p.Kind.HasValue() && p.Value.IsNone() && IsPivoted(r)
}

// ClaimedColumns returns the sorted column indices read by Column nodes.
// Columns referenced by name are not included.
func ClaimedColumns(r Root) []int {
	var cols []int

	for _, f := range Fields(r) {
		if f.Node.Kind == NodeColumn && !f.Node.Ref.ByName() {
			cols = append(cols, f.Node.Ref.Index)
		}
	}

	return common.SortedUnique(cols)
}

// SkipColumns returns the sorted, deduplicated skip list of the root.
func SkipColumns(r Root) []int {
	return common.SortedUnique(r.Options().SkipColumns)
}
