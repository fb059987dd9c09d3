package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Columns 按位置排好序的列名集合，创建后只读
type Columns struct {
	names []string
	index map[string]int
}

// NewColumns 创建列集合，列名不能为空且不能重复
func NewColumns(names []string) (*Columns, error) {
	c := &Columns{
		names: make([]string, len(names)),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("第 %d 列列名为空", i)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("列名重复: %s", name)
		}
		c.names[i] = name
		c.index[name] = i
	}
	return c, nil
}

// MustColumns 同 NewColumns，出错时 panic，仅用于测试和常量定义
func MustColumns(names ...string) *Columns {
	c, err := NewColumns(names)
	if err != nil {
		panic(err)
	}
	return c
}

// Names 返回列名副本
func (c *Columns) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func (c *Columns) Len() int { return len(c.names) }

func (c *Columns) Name(i int) string { return c.names[i] }

// Index 返回列名对应的位置
func (c *Columns) Index(name string) (int, bool) {
	i, ok := c.index[name]
	return i, ok
}

// Kind 解析器隐式识别出的值类型
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// 被视为缺失值的字段内容
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Value 单个字段值，始终保留原始文本
type Value struct {
	Kind Kind
	Raw  string
	i    int64
	f    float64
	b    bool
}

// ParseValue 识别字段类型，不做任何校验
func ParseValue(raw string) Value {
	if _, na := naValues[raw]; na {
		return Value{Kind: KindNull, Raw: raw}
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Value{Kind: KindInt, Raw: raw, i: i}
	}
	if looksNumeric(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return Value{Kind: KindFloat, Raw: raw, f: f}
		}
	}
	switch {
	case strings.EqualFold(raw, "true"):
		return Value{Kind: KindBool, Raw: raw, b: true}
	case strings.EqualFold(raw, "false"):
		return Value{Kind: KindBool, Raw: raw, b: false}
	}
	return Value{Kind: KindString, Raw: raw}
}

// looksNumeric 排除 ParseFloat 接受但不属于十进制数字的写法，例如 inf、0x1p3
func looksNumeric(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}

func (v Value) Int() int64     { return v.i }
func (v Value) Float() float64 { return v.f }
func (v Value) Bool() bool     { return v.b }
func (v Value) IsNull() bool   { return v.Kind == KindNull }

// SQLArg 写库参数：缺失值为 NULL，其余按原始文本写入
func (v Value) SQLArg() any {
	if v.Kind == KindNull {
		return nil
	}
	return v.Raw
}

// appendJSON 数字保留源文本写法（20.0 仍为 20.0）
func (v Value) appendJSON(buf *bytes.Buffer, enc *json.Encoder) error {
	switch v.Kind {
	case KindNull:
		buf.WriteString("null")
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		if jsonNumber.MatchString(v.Raw) {
			buf.WriteString(v.Raw)
			return nil
		}
		s := strconv.FormatFloat(v.f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		buf.WriteString(s)
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	default:
		return appendJSONString(buf, enc, v.Raw)
	}
	return nil
}

func appendJSONString(buf *bytes.Buffer, enc *json.Encoder, s string) error {
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode 会追加换行
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Row 一条记录，字段数与列数一致
type Row struct {
	columns *Columns
	values  []Value
}

// NewRow 按位置为字段命名，字段数与列数不一致时返回 *FieldCountError
func NewRow(columns *Columns, fields []string) (Row, error) {
	if len(fields) != columns.Len() {
		return Row{}, &FieldCountError{Expected: columns.Len(), Got: len(fields)}
	}
	values := make([]Value, len(fields))
	for i, f := range fields {
		values[i] = ParseValue(f)
	}
	return Row{columns: columns, values: values}, nil
}

func (r Row) Columns() *Columns { return r.columns }

func (r Row) Len() int { return len(r.values) }

// Value 返回第 i 个字段
func (r Row) Value(i int) Value { return r.values[i] }

// Get 按列名取值
func (r Row) Get(name string) (Value, bool) {
	i, ok := r.columns.Index(name)
	if !ok {
		return Value{}, false
	}
	return r.values[i], true
}

// SQLArgs 按列顺序返回写库参数
func (r Row) SQLArgs() []any {
	args := make([]any, len(r.values))
	for i, v := range r.values {
		args[i] = v.SQLArg()
	}
	return args
}

// MarshalJSON 输出对象的键顺序与列顺序一致，不转义HTML字符。
// 经 json.Marshal(row) 调用时标准库仍会把 <、>、& 转义为 \u003c 等形式，
// 需要原样输出时使用 AppendJSON。
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.AppendJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AppendJSON 将记录编码为单行JSON对象追加到 buf，不含换行
func (r Row) AppendJSON(buf *bytes.Buffer) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, v := range r.values {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := appendJSONString(buf, enc, r.columns.Name(i)); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := v.appendJSON(buf, enc); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// Batch 从同一文件按顺序读出的一组记录
type Batch struct {
	File      string
	Index     int // 文件内的块序号，从 0 开始
	FirstLine int // 第一条记录所在行号，空批次为 0
	Rows      []Row
}

func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}
