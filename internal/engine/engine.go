package engine

import (
	"fmt"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/convert"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/dataset"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/diagnostic"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

// Unbounded disables the MaxRows limit.
const Unbounded = -1

// Input is everything one execution needs.
type Input struct {
	// Table names the table in errors and TableName nodes.
	Table string
	Rows  source.Rows
	// Header is the table header; may be empty.
	Header []string
	// ColumnCount is the table width when known, 0 otherwise.
	ColumnCount int
	Mapping     mapping.Root
	// ColumnTypes convert cells of a column; RowTypes convert pivot header
	// cells and, for pivoted values, cells of columns without a column type.
	ColumnTypes map[int]convert.Spec
	RowTypes    map[int]convert.Spec
	// MaxRows bounds the number of data rows read; negative is unbounded.
	MaxRows int
}

// StructuralError reports a mapping that cannot be executed against the
// table at all.
type StructuralError struct {
	Table       string
	Diagnostics diagnostic.Diagnostics
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("invalid mapping for table %s: %v", e.Table, e.Diagnostics.Err())
}

// Execute runs the mapping over the rows. It returns a nil dataset and an
// error for structural problems and for failures of the row cursor itself;
// data problems only ever produce RowErrors.
func Execute(in Input) (*dataset.Dataset, []dataset.RowError, error) {
	if in.Rows == nil {
		return nil, nil, fmt.Errorf("table %s: no rows to read", in.Table)
	}

	p, err := resolve(in)
	if err != nil {
		return nil, nil, err
	}

	x := newExecutor(in, p)

	if err := x.run(); err != nil {
		return nil, x.errs, fmt.Errorf("failed to read table %s: %w", in.Table, err)
	}

	return x.ds, x.errs, nil
}
