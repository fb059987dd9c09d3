package common

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordParse 源文件中存在无法解析的行
	ErrRecordParse = errors.New("record parse error")

	// ErrSinkWrite 写入表或文件失败
	ErrSinkWrite = errors.New("sink write error")
)

// RecordParseError 描述一条格式错误的源记录
type RecordParseError struct {
	File string
	Line int
	Err  error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("解析记录失败 %s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RecordParseError) Unwrap() error { return e.Err }

func (e *RecordParseError) Is(target error) bool { return target == ErrRecordParse }

// SinkWriteError 描述一次写入失败
type SinkWriteError struct {
	Target string // 表名或文件路径
	Op     string
	Err    error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("写入 %s 失败 (%s): %v", e.Target, e.Op, e.Err)
}

func (e *SinkWriteError) Unwrap() error { return e.Err }

func (e *SinkWriteError) Is(target error) bool { return target == ErrSinkWrite }

// FieldCountError 字段数量与列定义不一致
type FieldCountError struct {
	Expected int
	Got      int
}

func (e *FieldCountError) Error() string {
	return fmt.Sprintf("字段数量不匹配: 期望 %d, 实际 %d", e.Expected, e.Got)
}
