package excelsrc

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/mapping"
	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for name, rows := range sheets {
		if name != "Sheet1" {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}

		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "model.xlsx")
	require.NoError(t, f.SaveAs(path))

	return path
}

func TestSource_TablesAreSheets(t *testing.T) {
	ctx := context.Background()
	path := writeWorkbook(t, map[string][][]any{
		"Sheet1": {{"x"}},
		"units":  {{"name"}},
	})

	src := New("book", path)
	require.NoError(t, src.Connect(ctx))
	t.Cleanup(func() { _ = src.Close() })

	tables, err := src.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]mapping.Root{"Sheet1": nil, "units": nil}, tables)
}

func TestSource_Open(t *testing.T) {
	ctx := context.Background()
	path := writeWorkbook(t, map[string][][]any{
		"Sheet1": {
			{"exported by tool"},
			{"name", "capacity", "unit"},
			{"a", 1.5, "MW"},
			{"b", nil, "MW"},
		},
	})

	src := New("book", path)
	require.NoError(t, src.Connect(ctx))
	t.Cleanup(func() { _ = src.Close() })

	t.Run("header after skipped rows", func(t *testing.T) {
		table, err := src.Open(ctx, "Sheet1", source.Options{HasHeader: true, SkipRows: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "capacity", "unit"}, table.Header)
		assert.Equal(t, 3, table.ColumnCount)

		rows, err := source.ReadAll(table.Rows)
		require.NoError(t, err)
		assert.Equal(t, [][]any{{"a", "1.5", "MW"}, {"b", nil, "MW"}}, rows)
	})

	t.Run("raw rows", func(t *testing.T) {
		table, err := src.Open(ctx, "Sheet1", source.Options{})
		require.NoError(t, err)
		assert.Empty(t, table.Header)

		rows, err := source.ReadAll(table.Rows)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, []any{"exported by tool"}, rows[0])
	})
}

func TestSource_Errors(t *testing.T) {
	ctx := context.Background()

	missing := New("book", filepath.Join(t.TempDir(), "absent.xlsx"))
	err := missing.Connect(ctx)

	var connErr *source.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "book", connErr.Source)

	path := writeWorkbook(t, map[string][][]any{"Sheet1": {{"a"}}})
	src := New("book", path)

	_, err = src.Open(ctx, "Sheet1", source.Options{})
	require.ErrorIs(t, err, source.ErrNotConnected)

	require.NoError(t, src.Connect(ctx))

	_, err = src.Open(ctx, "nodes", source.Options{})
	require.ErrorIs(t, err, source.ErrUnknownTable)

	require.NoError(t, src.Close())
	require.NoError(t, src.Close())
}
