package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataload/internal/pkg/logger"
	"dataload/internal/plugin/common"
)

func TestSQLiteWriter(t *testing.T) {
	ctx := context.Background()
	w := NewSQLiteWriter(&Parameter{
		Database: filepath.Join(t.TempDir(), "retail.db"),
		LogLevel: int(logger.LevelError),
	})
	require.NoError(t, w.Connect(ctx))
	defer w.Close()

	cols := common.MustColumns("order_id", "order_status")
	require.NoError(t, w.Prepare(ctx, "orders", cols))

	batch := &common.Batch{}
	for _, r := range [][]string{{"1", "CLOSED"}, {"2", "PENDING"}} {
		row, err := common.NewRow(cols, r)
		require.NoError(t, err)
		batch.Rows = append(batch.Rows, row)
	}
	require.NoError(t, w.Write(ctx, "orders", batch))
	require.NoError(t, w.Finish(ctx, "orders"))

	n, err := w.Count(ctx, "orders")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDialect(t *testing.T) {
	d := NewDialect(&Parameter{Database: "x.db"})
	assert.Equal(t, "x.db", d.DSN())
	assert.Equal(t, `DROP TABLE IF EXISTS "orders"`, d.DropTableSQL("orders"))
	assert.Equal(t, "?", d.Placeholder(2))
}
