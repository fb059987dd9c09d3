package common

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"dataload/internal/pkg/logger"
)

// sqliteDialect 测试用的最小方言
type sqliteDialect struct {
	path string
}

func (d sqliteDialect) Name() string                  { return "sqlite" }
func (d sqliteDialect) DriverName() string            { return "sqlite" }
func (d sqliteDialect) DSN() string                   { return d.path }
func (d sqliteDialect) QuoteIdent(name string) string { return QuoteWith(name, `"`, `"`) }
func (d sqliteDialect) TableName(table string) string { return d.QuoteIdent(table) }
func (d sqliteDialect) Placeholder(int) string        { return "?" }
func (d sqliteDialect) TextType() string              { return "TEXT" }
func (d sqliteDialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.TableName(table)
}

func newTestWriter(t *testing.T, opts TableOptions) *SQLTableWriter {
	t.Helper()
	opts.Logger = logger.New(&logger.Option{Level: logger.LevelError, Output: io.Discard})
	w := NewSQLTableWriter(sqliteDialect{path: filepath.Join(t.TempDir(), "test.db")}, opts)
	require.NoError(t, w.Connect(context.Background()))
	t.Cleanup(func() { w.Close() })
	return w
}

func batchOf(t *testing.T, cols *Columns, index int, records ...[]string) *Batch {
	t.Helper()
	b := &Batch{File: "part-00000", Index: index}
	for _, r := range records {
		row, err := NewRow(cols, r)
		require.NoError(t, err)
		b.Rows = append(b.Rows, row)
	}
	return b
}

func TestSQLTableWriter_SQL(t *testing.T) {
	w := NewSQLTableWriter(sqliteDialect{}, TableOptions{})
	cols := MustColumns("id", "order status")

	assert.Equal(t, `CREATE TABLE "orders" ("id" TEXT, "order status" TEXT)`, w.CreateTableSQL("orders", cols))
	assert.Equal(t, `INSERT INTO "orders" ("id", "order status") VALUES (?, ?)`, w.InsertSQL("orders", cols))
}

func TestQuoteWith(t *testing.T) {
	assert.Equal(t, `"a""b"`, QuoteWith(`a"b`, `"`, `"`))
	assert.Equal(t, "[x]]y]", QuoteWith("x]y", "[", "]"))
	assert.Equal(t, "`id`", QuoteWith("id", "`", "`"))
}

func TestSQLTableWriter_AppendAcrossBatches(t *testing.T) {
	ctx := context.Background()
	w := newTestWriter(t, TableOptions{})
	cols := MustColumns("id", "amount")

	require.NoError(t, w.Prepare(ctx, "orders", cols))
	require.NoError(t, w.Write(ctx, "orders", batchOf(t, cols, 0, []string{"1", "10.5"})))
	require.NoError(t, w.Write(ctx, "orders", batchOf(t, cols, 1, []string{"2", "20.0"}, []string{"3", ""})))
	require.NoError(t, w.Write(ctx, "orders", &Batch{}))

	n, err := w.Count(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	var amount string
	require.NoError(t, w.DB.QueryRow(`SELECT amount FROM orders WHERE id = '2'`).Scan(&amount))
	assert.Equal(t, "20.0", amount)

	var nulls int
	require.NoError(t, w.DB.QueryRow(`SELECT COUNT(*) FROM orders WHERE amount IS NULL`).Scan(&nulls))
	assert.Equal(t, 1, nulls)
}

func TestSQLTableWriter_PrepareReplaces(t *testing.T) {
	ctx := context.Background()
	w := newTestWriter(t, TableOptions{})
	cols := MustColumns("id")

	require.NoError(t, w.Prepare(ctx, "t", cols))
	require.NoError(t, w.Write(ctx, "t", batchOf(t, cols, 0, []string{"1"}, []string{"2"})))

	require.NoError(t, w.Prepare(ctx, "t", cols))
	n, err := w.Count(ctx, "t")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestSQLTableWriter_PreAndPostSQL(t *testing.T) {
	ctx := context.Background()
	w := newTestWriter(t, TableOptions{
		PreSQL:  []string{`CREATE TABLE IF NOT EXISTS audit (msg TEXT)`},
		PostSQL: []string{`INSERT INTO audit (msg) SELECT 'loaded ' || COUNT(*) FROM "t"`},
	})
	cols := MustColumns("id")

	require.NoError(t, w.Prepare(ctx, "t", cols))
	require.NoError(t, w.Write(ctx, "t", batchOf(t, cols, 0, []string{"1"})))
	require.NoError(t, w.Finish(ctx, "t"))

	var msg string
	require.NoError(t, w.DB.QueryRow(`SELECT msg FROM audit`).Scan(&msg))
	assert.Equal(t, "loaded 1", msg)
}

func TestSQLTableWriter_Errors(t *testing.T) {
	ctx := context.Background()
	cols := MustColumns("id")

	t.Run("not connected", func(t *testing.T) {
		w := NewSQLTableWriter(sqliteDialect{}, TableOptions{})
		assert.ErrorIs(t, w.Prepare(ctx, "t", cols), ErrSinkWrite)
		assert.ErrorIs(t, w.Write(ctx, "t", batchOf(t, cols, 0, []string{"1"})), ErrSinkWrite)
		_, err := w.Count(ctx, "t")
		assert.Error(t, err)
		assert.NoError(t, w.Close())
	})

	t.Run("bad pre-sql", func(t *testing.T) {
		w := newTestWriter(t, TableOptions{PreSQL: []string{"NOT SQL"}})
		err := w.Prepare(ctx, "t", cols)
		var swe *SinkWriteError
		require.ErrorAs(t, err, &swe)
		assert.Equal(t, "pre-sql[1]", swe.Op)
	})

	t.Run("write to missing table", func(t *testing.T) {
		w := newTestWriter(t, TableOptions{})
		err := w.Write(ctx, "missing", batchOf(t, cols, 0, []string{"1"}))
		assert.ErrorIs(t, err, ErrSinkWrite)
	})
}
