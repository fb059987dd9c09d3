// Package csvfile 按块读取无表头的逗号分隔文件。
//
// 字段按位置命名：第 i 个字段对应 columns 的第 i 列。chunkSize 大于 0 时
// 每批最多 chunkSize 条；否则整个文件作为唯一一批返回。任意时刻内存中
// 最多只有一批记录，读取器不保留已返回的批次。
//
// 格式错误的行（字段数不符、引号错误）在所在批次物化时以
// *common.RecordParseError 返回，读取随即终止。
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"dataload/internal/plugin/common"
)

// DefaultChunkSize 入库模式的默认块大小
const DefaultChunkSize = 10000

// Reader 单个源文件的块读取器
type Reader struct {
	path      string
	file      *os.File
	csv       *csv.Reader
	columns   *common.Columns
	chunkSize int
	index     int
	done      bool
}

var _ common.BatchReader = (*Reader)(nil)

// Open 打开源文件
func Open(path string, columns *common.Columns, chunkSize int) (*Reader, error) {
	if columns == nil || columns.Len() == 0 {
		return nil, fmt.Errorf("打开 %s 失败: 列定义为空", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开源文件失败: %w", err)
	}

	// 去掉可能存在的 BOM，其余字节原样透传
	src := transform.NewReader(f, unicode.BOMOverride(transform.Nop))

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1 // 字段数由 common.NewRow 校验

	return &Reader{
		path:      path,
		file:      f,
		csv:       cr,
		columns:   columns,
		chunkSize: chunkSize,
	}, nil
}

// Path 源文件路径
func (r *Reader) Path() string { return r.path }

// Next 读取下一批记录，没有更多数据时返回 io.EOF
func (r *Reader) Next() (*common.Batch, error) {
	if r.done {
		return nil, io.EOF
	}

	capHint := r.chunkSize
	if capHint <= 0 || capHint > DefaultChunkSize {
		capHint = 1024
	}
	batch := &common.Batch{
		File:  r.path,
		Index: r.index,
		Rows:  make([]common.Row, 0, capHint),
	}

	for r.chunkSize <= 0 || len(batch.Rows) < r.chunkSize {
		fields, err := r.csv.Read()
		if err == io.EOF {
			r.done = true
			break
		}
		if err != nil {
			r.done = true
			line := 0
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			return nil, &common.RecordParseError{File: r.path, Line: line, Err: err}
		}

		line, _ := r.csv.FieldPos(0)
		row, err := common.NewRow(r.columns, fields)
		if err != nil {
			r.done = true
			return nil, &common.RecordParseError{File: r.path, Line: line, Err: err}
		}
		if len(batch.Rows) == 0 {
			batch.FirstLine = line
		}
		batch.Rows = append(batch.Rows, row)
	}

	// 整文件模式总是返回一批（可能为空）；分块模式不返回空批次
	if len(batch.Rows) == 0 && (r.chunkSize > 0 || r.index > 0) {
		return nil, io.EOF
	}
	r.index++
	return batch, nil
}

// Close 关闭源文件
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// ReadAll 整文件读取，返回唯一的一批
func ReadAll(path string, columns *common.Columns) (*common.Batch, error) {
	r, err := Open(path, columns, 0)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return r.Next()
}
