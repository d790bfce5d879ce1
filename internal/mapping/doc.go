// Package mapping declares where, within a table, each semantic field of an
// import is found.
//
// A mapping is a small immutable tree:
//
//   - Node points at one value: a constant, a column, a column's header, a
//     row (pivot), or the table name. Nodes may carry prepend/append text.
//   - Parameter describes the parameter captured per row: its shape
//     (definition, single value, array, map, time series, time pattern), the
//     nodes for its name and value, and one extra-dimension node per index
//     level.
//   - Root is the top-level declaration of what a table describes: object
//     classes, relationship classes, object groups, alternatives, scenarios
//     or scenario alternatives. Every root carries TableOptions with the
//     first data row and the columns excluded from the pivoted region.
//
// # Pivoting
//
// A mapping is pivoted when any node reads a row. Rows up to and including
// LastPivotRow are header rows enumerating index values; every column not
// claimed by a Column node and not skipped then holds one value per data
// row. A Row(HeaderRow) node pivots on the table header without consuming
// any rows.
//
// # Serialization
//
// Mappings round-trip through plain maps, lists and scalars with a
// "map_type" discriminator per node (see ToDict and FromDict), and through
// YAML or JSON text built from that representation:
//
//	map_type: ObjectClass
//	name: {map_type: constant, reference: unit}
//	objects: {map_type: column, reference: 0}
//	parameters:
//	  map_type: parameter
//	  parameter_type: single value
//	  name: {map_type: row, reference: -1}
//	skip_columns: [0]
//
// Shorthand accepted on input: a bare string is a constant and a bare
// integer is a column index.
package mapping
