package sqlsrc

import (
	"context"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spine-tools/Spine-Toolbox-sub009/internal/source"
)

const dsnEnv = "SPINE_IMPORT_TEST_PG_DSN"

func TestCell(t *testing.T) {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "nil", in: nil, want: nil},
		{name: "text", in: "a", want: "a"},
		{name: "smallint", in: int16(3), want: int64(3)},
		{name: "integer", in: int32(4), want: int64(4)},
		{name: "real", in: float32(0.5), want: 0.5},
		{name: "bytea", in: []byte("raw"), want: "raw"},
		{name: "timestamp", in: at, want: at},
		{name: "numeric", in: pgtype.Numeric{Int: big.NewInt(125), Exp: -2, Valid: true}, want: 1.25},
		{name: "null numeric", in: pgtype.Numeric{}, want: nil},
		{name: "other", in: []int{1}, want: "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cell(tt.in))
		})
	}
}

func TestSource_Statement(t *testing.T) {
	src := New("db", "postgres://localhost/db", map[string]string{"active": "SELECT name FROM units WHERE active"})

	assert.Equal(t, "SELECT name FROM units WHERE active", src.statement("active"))
	assert.Equal(t, `SELECT * FROM "public"."unit ""a"""`, src.statement(`unit "a"`))

	src.Schema = "model"
	assert.Equal(t, `SELECT * FROM "model"."units"`, src.statement("units"))
}

func TestSource_NotConnected(t *testing.T) {
	ctx := context.Background()
	src := New("db", "postgres://localhost/db", nil)

	_, err := src.Tables(ctx)
	require.ErrorIs(t, err, source.ErrNotConnected)

	_, err = src.Open(ctx, "units", source.Options{})
	require.ErrorIs(t, err, source.ErrNotConnected)
	require.NoError(t, src.Close())
}

func TestSource_ConnectBadDSN(t *testing.T) {
	src := New("db", "postgres://%zz", nil)

	err := src.Connect(context.Background())

	var connErr *source.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "db", connErr.Source)
}

func TestSource_Postgres(t *testing.T) {
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	ctx := context.Background()

	conn, err := pgx.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(ctx) })

	_, err = conn.Exec(ctx, `
		DROP SCHEMA IF EXISTS spine_import_test CASCADE;
		CREATE SCHEMA spine_import_test;
		CREATE TABLE spine_import_test.units (name text, capacity numeric, built integer);
		INSERT INTO spine_import_test.units VALUES ('a', 1.5, 2001), ('b', NULL, 2002);`)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = conn.Exec(ctx, "DROP SCHEMA spine_import_test CASCADE") })

	src := New("db", dsn, map[string]string{"names": "SELECT name FROM spine_import_test.units ORDER BY name"})
	src.Schema = "spine_import_test"
	require.NoError(t, src.Connect(ctx))
	t.Cleanup(func() { _ = src.Close() })

	tables, err := src.Tables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, "units")
	assert.Contains(t, tables, "names")

	table, err := src.Open(ctx, "units", source.Options{SkipRows: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "capacity", "built"}, table.Header)
	assert.Equal(t, 3, table.ColumnCount)

	rows, err := source.ReadAll(table.Rows)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"b", nil, int64(2002)}}, rows)

	table, err = src.Open(ctx, "names", source.Options{})
	require.NoError(t, err)

	rows, err = source.ReadAll(table.Rows)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"a"}, {"b"}}, rows)
}
