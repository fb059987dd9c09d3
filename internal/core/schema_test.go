package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSchema_OrdersByPosition(t *testing.T) {
	s, err := ParseSchema(strings.NewReader(`{
		"order_items": [
			{"column_name": "order_item_subtotal", "column_position": 5},
			{"column_name": "order_item_id", "column_position": 1},
			{"column_name": "order_item_quantity", "column_position": 4},
			{"column_name": "order_item_order_id", "column_position": 2},
			{"column_name": "order_item_product_id", "column_position": 3},
			{"column_name": "order_item_product_price", "column_position": 6}
		]
	}`))
	require.NoError(t, err)

	names, err := s.ColumnNames("order_items")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"order_item_id",
		"order_item_order_id",
		"order_item_product_id",
		"order_item_quantity",
		"order_item_subtotal",
		"order_item_product_price",
	}, names)
}

func TestParseSchema_GapsAndZeroBase(t *testing.T) {
	s, err := ParseSchema(strings.NewReader(`{"t": [
		{"column_name": "c", "column_position": 10},
		{"column_name": "a", "column_position": 0},
		{"column_name": "b", "column_position": 3}
	]}`))
	require.NoError(t, err)

	names, err := s.ColumnNames("t")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestParseSchema_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty input", content: ""},
		{name: "null", content: "null"},
		{name: "not an object", content: "[]"},
		{name: "truncated", content: `{"t": [`},
		{name: "empty definition", content: `{"t": []}`},
		{name: "duplicate position", content: `{"t": [{"column_name": "a", "column_position": 1}, {"column_name": "b", "column_position": 1}]}`},
		{name: "duplicate name", content: `{"t": [{"column_name": "a", "column_position": 1}, {"column_name": "a", "column_position": 2}]}`},
		{name: "empty name", content: `{"t": [{"column_name": "", "column_position": 1}]}`},
		{name: "position not a number", content: `{"t": [{"column_name": "a", "column_position": "1"}]}`},
		{name: "trailing garbage", content: `{"a": [{"column_name": "x", "column_position": 0}]} garbage`},
		{name: "two objects", content: `{"a": [{"column_name": "x", "column_position": 0}]}{"b": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchema(strings.NewReader(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestSchema_Lookup(t *testing.T) {
	s, err := ParseSchema(strings.NewReader(retailSchema))
	require.NoError(t, err)

	assert.Equal(t, []string{"customers", "departments", "orders"}, s.Datasets())
	assert.True(t, s.Has("orders"))
	assert.False(t, s.Has("products"))

	cols, err := s.Columns("orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "amount"}, cols.Names())

	_, err = s.Columns("products")
	var unknown *UnknownDatasetError
	require.ErrorAs(t, err, &unknown)
	assert.ErrorIs(t, err, ErrUnknownDataset)

	_, err = s.ColumnNames("products")
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestLoadSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schemas.json")
	require.NoError(t, os.WriteFile(path, []byte(retailSchema), 0644))

	s, err := LoadSchema(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	_, err = LoadSchema(filepath.Join(dir, "missing.json"))
	var sle *SchemaLoadError
	require.ErrorAs(t, err, &sle)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorIs(t, err, ErrSchemaLoad)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = LoadSchema(bad)
	assert.ErrorIs(t, err, ErrSchemaLoad)
}
