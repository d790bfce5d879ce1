package mapping

import (
	"strconv"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/common"
)

// HeaderRow is the row reference that stands for the table header.
const HeaderRow = -1

// NodeKind identifies where a Node takes its value from.
type NodeKind int

const (
	NodeNone         NodeKind = iota // field absent
	NodeConstant                     // literal, same for every row
	NodeColumn                       // one cell per row at a fixed column
	NodeColumnHeader                 // the header text of a column
	NodeRow                          // one cell per column at a fixed row
	NodeTableName                    // the source table's name
)

// String returns the map_type used for the kind when serialized.
func (k NodeKind) String() string {
	switch k {
	case NodeNone:
		return "None"
	case NodeConstant:
		return "constant"
	case NodeColumn:
		return "column"
	case NodeColumnHeader:
		return "column_header"
	case NodeRow:
		return "row"
	case NodeTableName:
		return "table_name"
	default:
		return common.UnknownStr
	}
}

// Reference addresses a column or row. Columns may be referenced by header
// name; a non-empty Name takes precedence over Index.
type Reference struct {
	Index int
	Name  string
}

// ByName reports whether the reference must be resolved against a header.
func (r Reference) ByName() bool {
	return r.Name != ""
}

// String returns the reference as written in a mapping.
func (r Reference) String() string {
	if r.ByName() {
		return strconv.Quote(r.Name)
	}

	return strconv.Itoa(r.Index)
}

// Node is a declarative pointer to where one field's value is found.
type Node struct {
	Kind NodeKind
	// Value is the literal of a constant node.
	Value string
	// Ref addresses the column or row of column, column header and row nodes.
	Ref Reference
	// Prepend and Append decorate the value when it is used as a name.
	Prepend string
	Append  string
}

// None returns the absent node.
func None() Node {
	return Node{}
}

// Constant returns a node with a literal value.
func Constant(value string) Node {
	return Node{Kind: NodeConstant, Value: value}
}

// Column returns a node reading the cell at column index.
func Column(index int) Node {
	return Node{Kind: NodeColumn, Ref: Reference{Index: index}}
}

// ColumnNamed returns a node reading the cell under the named header.
func ColumnNamed(header string) Node {
	return Node{Kind: NodeColumn, Ref: Reference{Name: header}}
}

// ColumnHeader returns a node yielding the header text of a column.
func ColumnHeader(index int) Node {
	return Node{Kind: NodeColumnHeader, Ref: Reference{Index: index}}
}

// ColumnHeaderNamed returns a node yielding a header name, validated against
// the table header.
func ColumnHeaderNamed(header string) Node {
	return Node{Kind: NodeColumnHeader, Ref: Reference{Name: header}}
}

// Row returns a node reading the cell at row index for each pivoted column.
// Use HeaderRow to read the table header.
func Row(index int) Node {
	return Node{Kind: NodeRow, Ref: Reference{Index: index}}
}

// TableName returns a node yielding the source table's name.
func TableName() Node {
	return Node{Kind: NodeTableName}
}

// Decorated returns a copy of n with the given prepend and append text.
func (n Node) Decorated(prefix, suffix string) Node {
	n.Prepend = prefix
	n.Append = suffix

	return n
}

// IsNone reports whether the field is absent.
func (n Node) IsNone() bool {
	return n.Kind == NodeNone
}

// IsPivoted reports whether the node reads a row.
func (n Node) IsPivoted() bool {
	return n.Kind == NodeRow
}

// Decorate applies the prepend and append text to s.
func (n Node) Decorate(s string) string {
	if n.Prepend == "" && n.Append == "" {
		return s
	}

	return n.Prepend + s + n.Append
}

// String returns a compact description such as column(2) or row(-1).
func (n Node) String() string {
	switch n.Kind {
	case NodeConstant:
		return "constant(" + strconv.Quote(n.Value) + ")"
	case NodeColumn, NodeColumnHeader, NodeRow:
		return n.Kind.String() + "(" + n.Ref.String() + ")"
	default:
		return n.Kind.String()
	}
}
