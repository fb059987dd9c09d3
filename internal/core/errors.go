package core

import (
	"errors"
	"fmt"

	"dataload/internal/plugin/common"
)

var (
	// ErrSchemaLoad 列定义注册文件缺失或无法解析
	ErrSchemaLoad = errors.New("schema load error")

	// ErrUnknownDataset 注册文件中没有该数据集
	ErrUnknownDataset = errors.New("unknown dataset")

	// ErrNoFilesFound 数据集目录下没有匹配 part-* 的文件
	ErrNoFilesFound = errors.New("no files found")

	// ErrRecordParse 源记录格式错误
	ErrRecordParse = common.ErrRecordParse

	// ErrSinkWrite 写入表或文件失败
	ErrSinkWrite = common.ErrSinkWrite
)

type (
	RecordParseError = common.RecordParseError
	SinkWriteError   = common.SinkWriteError
)

// SchemaLoadError 注册文件加载失败，整个运行立即终止
type SchemaLoadError struct {
	Path string
	Err  error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("加载列定义 %s 失败: %v", e.Path, e.Err)
}

func (e *SchemaLoadError) Unwrap() error { return e.Err }

func (e *SchemaLoadError) Is(target error) bool { return target == ErrSchemaLoad }

// UnknownDatasetError 数据集未在注册文件中定义
type UnknownDatasetError struct {
	Dataset string
}

func (e *UnknownDatasetError) Error() string {
	return fmt.Sprintf("未知的数据集: %s", e.Dataset)
}

func (e *UnknownDatasetError) Is(target error) bool { return target == ErrUnknownDataset }

// NoFilesFoundError 数据集没有任何源文件
type NoFilesFoundError struct {
	Dataset string
	Pattern string
}

func (e *NoFilesFoundError) Error() string {
	return fmt.Sprintf("数据集 %s 没有找到文件 (%s)", e.Dataset, e.Pattern)
}

func (e *NoFilesFoundError) Is(target error) bool { return target == ErrNoFilesFound }
