package engine

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/convert"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/dataset"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()

	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)

	return ts
}

// pivotPair is one parameter value keyed by its entity and index.
type pivotPair struct {
	entity string
	index  string
	value  any
}

func pairsOf(values []dataset.ParameterValue) []pivotPair {
	out := make([]pivotPair, 0, len(values))
	for _, v := range values {
		out = append(out, pivotPair{entity: v.Entity[0], index: convert.Stringify(v.Index[0]), value: v.Value})
	}

	return out
}

func pivotMapping(skip ...int) mapping.ObjectClass {
	return mapping.ObjectClass{
		Name:         mapping.Constant("unit"),
		Objects:      mapping.Column(0),
		Parameter:    mapping.Indexed(mapping.ParameterMap, mapping.Constant("p"), mapping.None(), mapping.Row(0)),
		TableOptions: mapping.TableOptions{SkipColumns: skip},
	}
}

func TestExecute_PivotScenario(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows:        rowsOf([]string{"x", "1", "2"}, []string{"a", "10", "20"}),
		Mapping:     pivotMapping(0),
		ColumnTypes: map[int]convert.Spec{1: convert.FloatSpec, 2: convert.FloatSpec},
		MaxRows:     Unbounded,
	})

	assert.Empty(t, errs)
	assert.Equal(t, []pivotPair{{"a", "1", 10.0}, {"a", "2", 20.0}}, pairsOf(ds.ObjectParameterValues))
	assert.Equal(t, []dataset.Entity{{Class: "unit", Name: "a"}}, ds.Objects, "one object per row")
	assert.Equal(t, dataset.ShapeMap, ds.ObjectParameterValues[0].Shape)
}

func TestExecute_PivotRoundTrip(t *testing.T) {
	const (
		entities = 4
		indexes  = 5
	)

	want := map[[2]string]float64{}
	header := []string{""}

	for c := 1; c <= indexes; c++ {
		header = append(header, fmt.Sprintf("i%d", c))
	}

	rows := [][]string{header}
	types := map[int]convert.Spec{}

	for r := 1; r <= entities; r++ {
		row := []string{fmt.Sprintf("e%d", r)}

		for c := 1; c <= indexes; c++ {
			v := float64(r*100 + c)
			want[[2]string{row[0], header[c]}] = v
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			types[c] = convert.FloatSpec
		}

		rows = append(rows, row)
	}

	ds, errs := execute(t, Input{Rows: rowsOf(rows...), Mapping: pivotMapping(), ColumnTypes: types, MaxRows: Unbounded})
	assert.Empty(t, errs)

	got := map[[2]string]float64{}
	for _, p := range pairsOf(ds.ObjectParameterValues) {
		got[[2]string{p.entity, p.index}] = p.value.(float64)
	}

	assert.Equal(t, want, got)

	// Ordered by data row, then pivot column.
	pairs := pairsOf(ds.ObjectParameterValues)
	assert.Equal(t, pivotPair{"e1", "i1", 101.0}, pairs[0])
	assert.Equal(t, pivotPair{"e1", "i2", 102.0}, pairs[1])
	assert.Equal(t, pivotPair{"e2", "i1", 201.0}, pairs[indexes])
}

func TestExecute_SkipColumnsIdempotent(t *testing.T) {
	rows := [][]string{{"", "i1", "i2", "i3"}, {"a", "1", "2", "3"}, {"b", "4", "5", "6"}}

	once, errs := execute(t, Input{Rows: rowsOf(rows...), Mapping: pivotMapping(2), MaxRows: Unbounded})
	require.Empty(t, errs)

	twice, errs := execute(t, Input{Rows: rowsOf(rows...), Mapping: pivotMapping(2, 2), MaxRows: Unbounded})
	require.Empty(t, errs)

	assert.Equal(t, pairsOf(once.ObjectParameterValues), pairsOf(twice.ObjectParameterValues))
	assert.Equal(t, []pivotPair{
		{"a", "i1", "1"}, {"a", "i3", "3"},
		{"b", "i1", "4"}, {"b", "i3", "6"},
	}, pairsOf(once.ObjectParameterValues))
}

func TestExecute_PivotCellIsolation(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows: rowsOf(
			[]string{"", "i1", "i2"},
			[]string{"a", "1", "oops"},
			[]string{"b", "3", "4"},
		),
		Mapping:     pivotMapping(),
		ColumnTypes: map[int]convert.Spec{1: convert.FloatSpec, 2: convert.FloatSpec},
		MaxRows:     Unbounded,
	})

	require.Len(t, errs, 1)
	assert.Equal(t, 1, errs[0].Row)
	assert.Contains(t, errs[0].Message, "column 2")
	assert.Equal(t, []pivotPair{{"a", "i1", 1.0}, {"b", "i1", 3.0}, {"b", "i2", 4.0}}, pairsOf(ds.ObjectParameterValues))
}

func TestExecute_PivotRowLevelFailureReportedOnce(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows:    rowsOf([]string{"", "i1", "i2", "i3"}, []string{"", "1", "2", "3"}, []string{"b", "4", "", "6"}),
		Mapping: pivotMapping(),
		MaxRows: Unbounded,
	})

	require.Len(t, errs, 1)
	assert.Equal(t, dataset.RowError{Table: "table", Row: 1, Message: "object name is empty"}, errs[0])
	assert.Equal(t, []pivotPair{{"b", "i1", "4"}, {"b", "i3", "6"}}, pairsOf(ds.ObjectParameterValues))
}

func TestExecute_PivotHeaderConversionFailure(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows:     rowsOf([]string{"", "1", "x", ""}, []string{"a", "10", "20", "30"}),
		Mapping:  pivotMapping(),
		RowTypes: map[int]convert.Spec{0: convert.FloatSpec},
		MaxRows:  Unbounded,
	})

	require.Len(t, errs, 1)
	assert.Equal(t, 0, errs[0].Row)
	assert.Contains(t, errs[0].Message, "column 2")

	require.Len(t, ds.ObjectParameterValues, 1, "columns with bad or empty pivot headers are left out")
	assert.Equal(t, []any{1.0}, ds.ObjectParameterValues[0].Index)
	assert.Equal(t, "10", ds.ObjectParameterValues[0].Value)
}

func TestExecute_TwoPivotRows(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows: rowsOf(
			[]string{"", "a", "a", "b"},
			[]string{"", "capacity", "efficiency", "capacity"},
			[]string{"2024-01-01T00:00:00Z", "1", "0.5", "2"},
			[]string{"2024-01-01T01:00:00Z", "1.5", "", "2.5"},
		),
		Mapping: mapping.ObjectClass{
			Name:    mapping.Constant("unit"),
			Objects: mapping.Row(0),
			Parameter: mapping.Indexed(mapping.ParameterTimeSeries,
				mapping.Row(1), mapping.None(), mapping.Column(0)),
		},
		ColumnTypes: map[int]convert.Spec{0: convert.DateTimeSpec},
		RowTypes:    map[int]convert.Spec{2: convert.FloatSpec, 3: convert.FloatSpec},
		MaxRows:     Unbounded,
	})

	require.Empty(t, errs)

	assert.Equal(t, []dataset.Entity{
		{Class: "unit", Name: "a"}, {Class: "unit", Name: "b"},
		{Class: "unit", Name: "a"}, {Class: "unit", Name: "b"},
	}, ds.Objects)
	assert.Equal(t, []dataset.ParameterDefinition{
		{Class: "unit", Name: "capacity"},
		{Class: "unit", Name: "efficiency"},
	}, ds.ObjectParameters)

	var got []string
	for _, v := range ds.ObjectParameterValues {
		got = append(got, fmt.Sprintf("%s.%s@%s=%v", v.Entity[0], v.Parameter, convert.Stringify(v.Index[0]), v.Value))
	}

	assert.Equal(t, []string{
		"a.capacity@2024-01-01T00:00:00Z=1",
		"a.efficiency@2024-01-01T00:00:00Z=0.5",
		"b.capacity@2024-01-01T00:00:00Z=2",
		"a.capacity@2024-01-01T01:00:00Z=1.5",
		"b.capacity@2024-01-01T01:00:00Z=2.5",
	}, got)
}

func TestExecute_HeaderPivot(t *testing.T) {
	ds, errs := execute(t, Input{
		Header: []string{"time", "a", "b"},
		Rows: rowsOf(
			[]string{"2024-01-01T00:00:00Z", "1", "2"},
			[]string{"2024-01-01T01:00:00Z", "3", "4"},
			[]string{"2024-01-01T02:00:00Z", "5", "6"},
		),
		Mapping: mapping.ObjectClass{
			Name:    mapping.Constant("node"),
			Objects: mapping.Row(mapping.HeaderRow),
			Parameter: mapping.Parameter{
				Kind:            mapping.ParameterTimeSeries,
				Name:            mapping.Constant("demand"),
				ExtraDimensions: []mapping.Node{mapping.Column(0)},
				Repeat:          true,
			},
		},
		ColumnTypes: map[int]convert.Spec{0: convert.DateTimeSpec, 1: convert.FloatSpec, 2: convert.FloatSpec},
		MaxRows:     2,
	})

	require.Empty(t, errs)
	require.Len(t, ds.ObjectParameterValues, 4, "max_rows counts data rows only")

	first := ds.ObjectParameterValues[0]
	assert.Equal(t, []string{"a"}, first.Entity)
	assert.Equal(t, []any{mustTime(t, "2024-01-01T00:00:00Z")}, first.Index)
	assert.Equal(t, 1.0, first.Value)
	assert.True(t, first.Repeat)

	folded, foldErrs := dataset.FoldValues(ds.ObjectParameterValues)
	require.Empty(t, foldErrs)
	require.Len(t, folded, 2)
	assert.Equal(t, dataset.TimeSeries{
		Index:  []time.Time{mustTime(t, "2024-01-01T00:00:00Z"), mustTime(t, "2024-01-01T01:00:00Z")},
		Values: []any{2.0, 4.0},
		Repeat: true,
	}, folded[1].Value)
}

func TestExecute_PivotMaxRows(t *testing.T) {
	rows := [][]string{{"", "i1"}, {"a", "1"}, {"b", "2"}, {"c", "3"}}

	ds, errs := execute(t, Input{Rows: rowsOf(rows...), Mapping: pivotMapping(), MaxRows: 2})
	assert.Empty(t, errs)
	assert.Equal(t, []pivotPair{{"a", "i1", "1"}, {"b", "i1", "2"}}, pairsOf(ds.ObjectParameterValues))

	ds, errs = execute(t, Input{Rows: rowsOf(rows...), Mapping: pivotMapping(), MaxRows: 0})
	assert.Empty(t, errs)
	assert.Empty(t, ds.ObjectParameterValues)
}

func TestExecute_PivotReadStartRow(t *testing.T) {
	root := pivotMapping()
	root.ReadStartRow = 3

	ds, errs := execute(t, Input{
		Rows:    rowsOf([]string{"", "i1"}, []string{"a", "1"}, []string{"b", "2"}, []string{"c", "3"}),
		Mapping: root,
		MaxRows: Unbounded,
	})

	assert.Empty(t, errs)
	assert.Equal(t, []pivotPair{{"c", "i1", "3"}}, pairsOf(ds.ObjectParameterValues))
}

func TestExecute_PivotWithoutDataRows(t *testing.T) {
	ds, errs := execute(t, Input{
		Header: []string{"a", "b", "", "a"},
		Rows:   rowsOf([]string{"1", "2", "3", "4"}),
		Mapping: mapping.ObjectClass{
			Name:      mapping.Constant("unit"),
			Objects:   mapping.Row(mapping.HeaderRow),
			Parameter: mapping.Definition(mapping.Constant("capacity")),
		},
		MaxRows: Unbounded,
	})

	assert.Empty(t, errs)
	assert.Equal(t, []dataset.Entity{{Class: "unit", Name: "a"}, {Class: "unit", Name: "b"}}, ds.Objects)
	assert.Equal(t, []dataset.ParameterDefinition{{Class: "unit", Name: "capacity"}}, ds.ObjectParameters)
}

func TestExecute_PivotedParameterDefinitions(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows: rowsOf([]string{"capacity", "demand"}),
		Mapping: mapping.ObjectClass{
			Name:      mapping.Constant("unit"),
			Parameter: mapping.Definition(mapping.Row(0)),
		},
		MaxRows: Unbounded,
	})

	assert.Empty(t, errs)
	assert.Equal(t, []dataset.ParameterDefinition{
		{Class: "unit", Name: "capacity"},
		{Class: "unit", Name: "demand"},
	}, ds.ObjectParameters)
}
