package engine

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/convert"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/dataset"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

func rowsOf(rows ...[]string) source.Rows {
	return source.NewSliceRows(source.StringRows(rows...))
}

func execute(t *testing.T, in Input) (*dataset.Dataset, []dataset.RowError) {
	t.Helper()

	if in.Table == "" {
		in.Table = "table"
	}

	ds, errs, err := Execute(in)
	require.NoError(t, err)
	require.NotNil(t, ds)

	return ds, errs
}

func TestExecute_ObjectsFromColumns(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows:    rowsOf([]string{"a", "1"}, []string{"b", "2"}),
		Mapping: mapping.ObjectClass{Name: mapping.Column(0), Objects: mapping.Column(1)},
		MaxRows: Unbounded,
	})

	assert.Empty(t, errs)
	assert.Equal(t, []dataset.Entity{{Class: "a", Name: "1"}, {Class: "b", Name: "2"}}, ds.Objects)
	assert.Equal(t, []string{"a", "b"}, ds.ObjectClasses)
}

func TestExecute_ConversionFailureDropsOnlyThatRow(t *testing.T) {
	ds, errs := execute(t, Input{
		Table:       "units",
		Rows:        rowsOf([]string{"a", "1"}, []string{"b", "not a number"}),
		Mapping:     mapping.ObjectClass{Name: mapping.Column(0), Objects: mapping.Column(1)},
		ColumnTypes: map[int]convert.Spec{1: convert.FloatSpec},
		MaxRows:     Unbounded,
	})

	assert.Equal(t, []dataset.Entity{{Class: "a", Name: "1"}}, ds.Objects)
	require.Len(t, errs, 1)
	assert.Equal(t, "units", errs[0].Table)
	assert.Equal(t, 1, errs[0].Row)
	assert.Contains(t, errs[0].Message, "column 1")
	assert.Equal(t, []string{"a"}, ds.ObjectClasses)
}

func TestExecute_EntityCountMatchesRows(t *testing.T) {
	var rows [][]string
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		rows = append(rows, []string{name})
	}

	for _, maxRows := range []int{Unbounded, 0, 1, 3, 5, 10} {
		ds, errs := execute(t, Input{
			Rows:    rowsOf(rows...),
			Mapping: mapping.ObjectClass{Name: mapping.Constant("unit"), Objects: mapping.Column(0)},
			MaxRows: maxRows,
		})

		want := len(rows)
		if maxRows >= 0 {
			want = min(maxRows, len(rows))
		}

		assert.Empty(t, errs)
		assert.Len(t, ds.Objects, want, "max_rows=%d", maxRows)
	}
}

func TestExecute_ReadStartRow(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows: rowsOf([]string{"comment"}, []string{"name"}, []string{"a"}, []string{"b"}),
		Mapping: mapping.ObjectClass{
			Name:         mapping.Constant("unit"),
			Objects:      mapping.Column(0),
			TableOptions: mapping.TableOptions{ReadStartRow: 2},
		},
		MaxRows: 1,
	})

	assert.Empty(t, errs)
	assert.Equal(t, []dataset.Entity{{Class: "unit", Name: "a"}}, ds.Objects)
}

func TestExecute_SingleValueParameters(t *testing.T) {
	ds, errs := execute(t, Input{
		Header: []string{"unit", "capacity"},
		Rows:   rowsOf([]string{"a", "1.5"}, []string{"b", ""}, []string{"c", "x"}),
		Mapping: mapping.ObjectClass{
			Name:    mapping.Constant("unit"),
			Objects: mapping.ColumnNamed("unit"),
			Parameter: mapping.SingleValue(mapping.ColumnHeader(1), mapping.Column(1)).
				WithAlternative(mapping.Constant("Base")),
		},
		ColumnTypes: map[int]convert.Spec{1: convert.FloatSpec},
		MaxRows:     Unbounded,
	})

	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Row)

	assert.Equal(t, []dataset.Entity{{Class: "unit", Name: "a"}, {Class: "unit", Name: "b"}}, ds.Objects)
	assert.Equal(t, []dataset.ParameterDefinition{{Class: "unit", Name: "capacity"}}, ds.ObjectParameters)
	assert.Equal(t, []dataset.ParameterValue{{
		Class:       "unit",
		Entity:      []string{"a"},
		Parameter:   "capacity",
		Alternative: "Base",
		Value:       1.5,
		Shape:       dataset.ShapeScalar,
	}}, ds.ObjectParameterValues, "empty value cells produce no record")
	assert.Equal(t, []string{"Base"}, ds.Alternatives)
}

func TestExecute_Decoration(t *testing.T) {
	ds, errs := execute(t, Input{
		Table: "plants",
		Rows:  rowsOf([]string{"a", "cap", "v"}),
		Mapping: mapping.ObjectClass{
			Name:      mapping.TableName().Decorated("", "_unit"),
			Objects:   mapping.Column(0).Decorated("u_", ""),
			Parameter: mapping.SingleValue(mapping.Column(1), mapping.Column(2).Decorated("<", ">")),
		},
		MaxRows: Unbounded,
	})

	assert.Empty(t, errs)
	assert.Equal(t, []dataset.Entity{{Class: "plants_unit", Name: "u_a"}}, ds.Objects)
	require.Len(t, ds.ObjectParameterValues, 1)
	assert.Equal(t, "<v>", ds.ObjectParameterValues[0].Value)
}

func TestExecute_MissingNameIsRowError(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows:    rowsOf([]string{"", "1"}, []string{"b", "2"}, []string{"c", ""}),
		Mapping: mapping.ObjectClass{Name: mapping.Column(0), Objects: mapping.Column(1)},
		MaxRows: Unbounded,
	})

	require.Len(t, errs, 2)
	assert.Equal(t, 0, errs[0].Row)
	assert.Equal(t, "object class name is empty", errs[0].Message)
	assert.Equal(t, 2, errs[1].Row)
	assert.Equal(t, "object name is empty", errs[1].Message)
	assert.Equal(t, []dataset.Entity{{Class: "b", Name: "2"}}, ds.Objects)
	assert.Equal(t, []string{"b"}, ds.ObjectClasses)
}

func TestExecute_IndexedValues(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows: rowsOf(
			[]string{"a", "t0001", "1"},
			[]string{"a", "t0002", "2"},
			[]string{"a", "", "3"},
		),
		Mapping: mapping.ObjectClass{
			Name:      mapping.Constant("unit"),
			Objects:   mapping.Column(0),
			Parameter: mapping.Indexed(mapping.ParameterTimeSeries, mapping.Constant("demand"), mapping.Column(2), mapping.Column(1)),
		},
		ColumnTypes: map[int]convert.Spec{
			1: convert.IntegerSequenceDateTime(mustTime(t, "2024-01-01T00:00:00Z"), 1, convert.Duration{Amount: 1, Unit: convert.UnitHour}),
			2: convert.FloatSpec,
		},
		MaxRows: Unbounded,
	})

	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Row)
	assert.Equal(t, "index 1 of parameter demand is empty", errs[0].Message)

	require.Len(t, ds.ObjectParameterValues, 2)
	assert.Equal(t, []any{mustTime(t, "2024-01-01T00:00:00Z")}, ds.ObjectParameterValues[0].Index)
	assert.Equal(t, []any{mustTime(t, "2024-01-01T01:00:00Z")}, ds.ObjectParameterValues[1].Index)
	assert.Equal(t, dataset.ShapeTimeSeries, ds.ObjectParameterValues[1].Shape)
	assert.Len(t, ds.Objects, 2, "the failing row contributes nothing")
}

func TestExecute_DefinitionsOnly(t *testing.T) {
	ds, errs := execute(t, Input{
		Rows:    rowsOf([]string{"unit", "capacity"}, []string{"unit", "capacity"}, []string{"node", "demand"}),
		Mapping: mapping.ObjectClass{Name: mapping.Column(0), Parameter: mapping.Definition(mapping.Column(1))},
		MaxRows: Unbounded,
	})

	assert.Empty(t, errs)
	assert.Empty(t, ds.Objects)
	assert.Empty(t, ds.ObjectParameterValues)
	assert.Equal(t, []dataset.ParameterDefinition{
		{Class: "unit", Name: "capacity"},
		{Class: "node", Name: "demand"},
	}, ds.ObjectParameters)
}

func TestExecute_AlternativesAndScenarios(t *testing.T) {
	t.Run("alternatives", func(t *testing.T) {
		ds, errs := execute(t, Input{
			Rows:    rowsOf([]string{"Base"}, []string{"high"}, []string{"Base"}),
			Mapping: mapping.Alternative{Name: mapping.Column(0)},
			MaxRows: Unbounded,
		})

		assert.Empty(t, errs)
		assert.Equal(t, []string{"Base", "high"}, ds.Alternatives)
	})

	t.Run("scenarios", func(t *testing.T) {
		ds, errs := execute(t, Input{
			Rows:    rowsOf([]string{"s1", "true"}, []string{"s2", "no"}, []string{"s3", "maybe"}, []string{"s4", ""}),
			Mapping: mapping.Scenario{Name: mapping.Column(0), Active: mapping.Column(1)},
			MaxRows: Unbounded,
		})

		require.Len(t, errs, 1)
		assert.Equal(t, 2, errs[0].Row)
		assert.Equal(t, []dataset.Scenario{
			{Name: "s1", Active: true},
			{Name: "s2", Active: false},
			{Name: "s4", Active: false},
		}, ds.Scenarios)
	})

	t.Run("scenario alternatives", func(t *testing.T) {
		ds, errs := execute(t, Input{
			Rows: rowsOf([]string{"s1", "high", "Base"}, []string{"s1", "Base", ""}, []string{"s1", "", ""}),
			Mapping: mapping.ScenarioAlternative{
				Name:        mapping.Column(0),
				Alternative: mapping.Column(1),
				Before:      mapping.Column(2),
			},
			MaxRows: Unbounded,
		})

		require.Len(t, errs, 1)
		assert.Equal(t, "alternative name is empty", errs[0].Message)
		assert.Equal(t, []dataset.ScenarioAlternative{
			{Scenario: "s1", Alternative: "high", Before: "Base"},
			{Scenario: "s1", Alternative: "Base"},
		}, ds.ScenarioAlternatives)
	})
}

func TestExecute_ObjectGroups(t *testing.T) {
	rows := [][]string{{"north", "n1"}, {"north", "n2"}}

	for _, importObjects := range []bool{false, true} {
		ds, errs := execute(t, Input{
			Rows: rowsOf(rows...),
			Mapping: mapping.ObjectGroup{
				Name:          mapping.Constant("node"),
				Groups:        mapping.Column(0),
				Members:       mapping.Column(1),
				ImportObjects: importObjects,
			},
			MaxRows: Unbounded,
		})

		assert.Empty(t, errs)
		assert.Equal(t, []dataset.Group{
			{Class: "node", Group: "north", Member: "n1"},
			{Class: "node", Group: "north", Member: "n2"},
		}, ds.ObjectGroups)

		if importObjects {
			assert.Equal(t, []string{"node"}, ds.ObjectClasses)
			assert.Equal(t, []dataset.Entity{
				{Class: "node", Name: "north"}, {Class: "node", Name: "n1"},
				{Class: "node", Name: "north"}, {Class: "node", Name: "n2"},
			}, ds.Objects)
		} else {
			assert.Empty(t, ds.ObjectClasses)
			assert.Empty(t, ds.Objects)
		}
	}
}

type failingRows struct {
	source.Rows
	err error
}

func (r *failingRows) Err() error {
	return r.err
}

func TestExecute_RowCursorFailure(t *testing.T) {
	boom := errors.New("disk gone")

	ds, _, err := Execute(Input{
		Table:   "units",
		Rows:    &failingRows{Rows: rowsOf([]string{"a"}), err: boom},
		Mapping: mapping.Alternative{Name: mapping.Column(0)},
		MaxRows: Unbounded,
	})

	require.ErrorIs(t, err, boom)
	assert.Nil(t, ds, spew.Sdump(ds))
}

func TestExecute_NilRows(t *testing.T) {
	_, _, err := Execute(Input{Table: "t", Mapping: mapping.Alternative{Name: mapping.Column(0)}})
	require.Error(t, err)
}
