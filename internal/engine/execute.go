package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/common"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/convert"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/dataset"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
)

// cursor locates the record being built.
type cursor struct {
	row   []any
	index int
	// col is the pivoted column, -1 outside the pivoted region.
	col int
}

// fieldError is a record-level failure. Pivot failures concern a single
// pivoted cell; all others concern the whole row.
type fieldError struct {
	msg   string
	pivot bool
}

func (e *fieldError) Error() string {
	return e.msg
}

type executor struct {
	in   Input
	p    *plan
	ds   *dataset.Dataset
	errs []dataset.RowError

	// pivot holds, per pivot row, the converted value of every column.
	pivot     map[int][]any
	pivotCols []int
	// cells caches the converted cells of the current row.
	cells map[int]any
}

func newExecutor(in Input, p *plan) *executor {
	return &executor{
		in:    in,
		p:     p,
		ds:    dataset.New(),
		cells: make(map[int]any, len(p.cells)),
	}
}

func (x *executor) run() error {
	rows := x.in.Rows
	next := 0

	if x.p.pivoted {
		var headerRows [][]any

		for next <= x.p.lastPivot && rows.Next() {
			headerRows = append(headerRows, rows.Row())
			next++
		}

		if err := rows.Err(); err != nil {
			return err
		}

		x.buildPivot(headerRows)

		if !x.p.readsData() {
			x.emitStatic()
			return nil
		}
	}

	processed := 0

	for x.in.MaxRows < 0 || processed < x.in.MaxRows {
		if !rows.Next() {
			break
		}

		index := next
		next++

		if index < x.p.dataStart {
			continue
		}

		processed++
		x.processRow(rows.Row(), index)
	}

	return rows.Err()
}

// buildPivot computes the pivot values of every eligible column. Columns
// with an empty or unconvertible pivot header cell are left out.
func (x *executor) buildPivot(headerRows [][]any) {
	width := max(x.in.ColumnCount, len(x.in.Header))
	for _, row := range headerRows {
		width = max(width, len(row))
	}

	excluded := make([]bool, width)
	for _, c := range slices.Concat(x.p.cells, x.p.skip) {
		if c >= 0 && c < width {
			excluded[c] = true
		}
	}

	x.pivot = make(map[int][]any, len(x.p.pivotRows))

	for _, r := range x.p.pivotRows {
		values := make([]any, width)
		spec, typed := x.in.RowTypes[r]

		for c := range width {
			if excluded[c] {
				continue
			}

			v := x.headerCell(headerRows, r, c)
			if convert.IsEmpty(v) {
				excluded[c] = true
				continue
			}

			if typed {
				conv, err := spec.Convert(v)
				if err != nil {
					x.rowError(r, fmt.Sprintf("column %d: %v", c, err))
					excluded[c] = true

					continue
				}

				v = conv
			}

			values[c] = v
		}

		x.pivot[r] = values
	}

	for c := range width {
		if !excluded[c] {
			x.pivotCols = append(x.pivotCols, c)
		}
	}
}

func (x *executor) headerCell(headerRows [][]any, r, c int) any {
	if r == mapping.HeaderRow {
		if c < len(x.in.Header) {
			return x.in.Header[c]
		}

		return nil
	}

	if r < len(headerRows) {
		return cell(headerRows[r], c)
	}

	return nil
}

// emitStatic emits one record per pivoted column for mappings that read no
// data rows.
func (x *executor) emitStatic() {
	seen := map[string]struct{}{}

	for _, c := range x.pivotCols {
		cur := cursor{index: x.p.lastPivot, col: c}
		if err := x.emit(cur, seen); err != nil {
			x.rowError(cur.index, err.Error())
		}
	}
}

func (x *executor) processRow(row []any, index int) {
	if !x.prefetch(row, index) {
		return
	}

	seen := map[string]struct{}{}

	if !x.p.pivoted {
		if err := x.emit(cursor{row: row, index: index, col: -1}, seen); err != nil {
			x.rowError(index, err.Error())
		}

		return
	}

	for _, c := range x.pivotCols {
		err := x.emit(cursor{row: row, index: index, col: c}, seen)
		if err == nil {
			continue
		}

		x.rowError(index, err.Error())

		var fe *fieldError
		if !errors.As(err, &fe) || !fe.pivot {
			return
		}
	}
}

// prefetch converts the cells read by cell fields. A conversion failure
// drops the row.
func (x *executor) prefetch(row []any, index int) bool {
	clear(x.cells)

	for _, col := range x.p.cells {
		v := cell(row, col)

		if spec, ok := x.in.ColumnTypes[col]; ok && !convert.IsEmpty(v) {
			conv, err := spec.Convert(v)
			if err != nil {
				x.rowError(index, fmt.Sprintf("column %d: %v", col, err))
				return false
			}

			v = conv
		}

		x.cells[col] = v
	}

	return true
}

func (x *executor) rowError(index int, msg string) {
	x.errs = append(x.errs, dataset.RowError{Table: x.in.Table, Row: index, Message: msg})
}

func (x *executor) eval(f field, c cursor) any {
	switch f.kind {
	case fieldFixed:
		return f.text
	case fieldCell:
		return x.cells[f.col]
	case fieldPivot:
		if c.col < 0 {
			return nil
		}

		return x.pivot[f.row][c.col]
	default:
		return nil
	}
}

// text evaluates f as a decorated name; empty when absent.
func (x *executor) text(f field, c cursor) string {
	s := convert.Stringify(x.eval(f, c))
	if s == "" {
		return ""
	}

	return f.node.Decorate(s)
}

// require evaluates a mandatory name.
func (x *executor) require(f field, c cursor, what string) (string, error) {
	s := x.text(f, c)
	if s == "" {
		return "", &fieldError{msg: what + " is empty", pivot: f.kind == fieldPivot}
	}

	return s, nil
}

// typed evaluates f keeping the converted type; strings are decorated.
func (x *executor) typed(f field, c cursor) any {
	v := x.eval(f, c)
	if s, ok := v.(string); ok && s != "" {
		return f.node.Decorate(s)
	}

	return v
}

func cell(row []any, col int) any {
	if col < len(row) {
		return row[col]
	}

	return nil
}

func once(seen map[string]struct{}, parts ...string) bool {
	key := common.JoinKey(parts...)
	if _, ok := seen[key]; ok {
		return false
	}

	seen[key] = struct{}{}

	return true
}
