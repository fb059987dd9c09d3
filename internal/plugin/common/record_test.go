package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewColumns(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		wantErr bool
	}{
		{name: "valid", names: []string{"id", "amount"}},
		{name: "single", names: []string{"id"}},
		{name: "empty name", names: []string{"id", ""}, wantErr: true},
		{name: "duplicate", names: []string{"id", "id"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols, err := NewColumns(tt.names)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.names, cols.Names())
			assert.Equal(t, len(tt.names), cols.Len())
		})
	}
}

func TestColumns_NamesIsCopy(t *testing.T) {
	cols := MustColumns("a", "b")
	names := cols.Names()
	names[0] = "z"

	assert.Equal(t, "a", cols.Name(0))
	i, ok := cols.Index("b")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = cols.Index("z")
	assert.False(t, ok)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		json string
	}{
		{"", KindNull, "null"},
		{"NA", KindNull, "null"},
		{"NULL", KindNull, "null"},
		{"nan", KindNull, "null"},
		{"1", KindInt, "1"},
		{"-42", KindInt, "-42"},
		{"007", KindInt, "7"},
		{"10.5", KindFloat, "10.5"},
		{"20.0", KindFloat, "20.0"},
		{"1e3", KindFloat, "1e3"},
		{".5", KindFloat, "0.5"},
		{"5.", KindFloat, "5.0"},
		{"True", KindBool, "true"},
		{"false", KindBool, "false"},
		{"inf", KindString, `"inf"`},
		{"0x10", KindString, `"0x10"`},
		{" 10", KindString, `" 10"`},
		{"1e400", KindString, `"1e400"`},
		{"COMPLETE", KindString, `"COMPLETE"`},
		{"2013-07-25 00:00:00.0", KindString, `"2013-07-25 00:00:00.0"`},
		{"a<b>&c", KindString, `"a<b>&c"`},
		{`say "hi"`, KindString, `"say \"hi\""`},
	}

	cols := MustColumns("v")
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := ParseValue(tt.raw)
			assert.Equal(t, tt.kind, v.Kind, "kind of %q", tt.raw)
			assert.Equal(t, tt.raw, v.Raw)

			row, err := NewRow(cols, []string{tt.raw})
			require.NoError(t, err)
			out, err := row.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, `{"v":`+tt.json+`}`, string(out))
		})
	}
}

func TestValue_Accessors(t *testing.T) {
	assert.Equal(t, int64(12), ParseValue("12").Int())
	assert.InDelta(t, 1.25, ParseValue("1.25").Float(), 1e-9)
	assert.True(t, ParseValue("TRUE").Bool())
	assert.True(t, ParseValue("N/A").IsNull())
	assert.Nil(t, ParseValue("").SQLArg())
	assert.Equal(t, "20.0", ParseValue("20.0").SQLArg())
}

func TestNewRow_FieldCount(t *testing.T) {
	cols := MustColumns("id", "amount")

	_, err := NewRow(cols, []string{"1"})
	var fce *FieldCountError
	require.True(t, errors.As(err, &fce))
	assert.Equal(t, 2, fce.Expected)
	assert.Equal(t, 1, fce.Got)

	_, err = NewRow(cols, []string{"1", "2", "3"})
	assert.Error(t, err)
}

func TestRow_JSONKeyOrder(t *testing.T) {
	cols := MustColumns("zeta", "alpha", "mid")
	row, err := NewRow(cols, []string{"1", "x", ""})
	require.NoError(t, err)

	out, err := row.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"x","mid":null}`, string(out))

	v, ok := row.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, KindString, v.Kind)
	_, ok = row.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []any{"1", "x", nil}, row.SQLArgs())
}

func TestRow_AppendJSON_HTMLCharacters(t *testing.T) {
	row, err := NewRow(MustColumns("a<b", "v"), []string{"x", "a<b>&c"})
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.WriteString("prefix ")
	require.NoError(t, row.AppendJSON(&buf))
	assert.Equal(t, `prefix {"a<b":"x","v":"a<b>&c"}`, buf.String())
	assert.True(t, json.Valid(buf.Bytes()[len("prefix "):]))

	// json.Marshal 会再次转义HTML字符
	escaped, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"a\u003cb":"x","v":"a\u003cb\u003e\u0026c"}`, string(escaped))
}

func TestBatch_Len(t *testing.T) {
	var b *Batch
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, (&Batch{}).Len())
}

func TestErrors_Is(t *testing.T) {
	parseErr := &RecordParseError{File: "part-1", Line: 3, Err: &FieldCountError{Expected: 2, Got: 1}}
	assert.ErrorIs(t, parseErr, ErrRecordParse)
	assert.NotErrorIs(t, parseErr, ErrSinkWrite)
	assert.Contains(t, parseErr.Error(), "part-1:3")

	cause := errors.New("disk full")
	writeErr := &SinkWriteError{Target: "orders", Op: "insert", Err: cause}
	assert.ErrorIs(t, writeErr, ErrSinkWrite)
	assert.ErrorIs(t, writeErr, cause)
}
