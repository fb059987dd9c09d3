package core

import (
	"fmt"
	"strings"

	"dataload/internal/plugin/common"
)

// ReaderFactory 源文件读取器工厂
type ReaderFactory func(path string, columns *common.Columns, chunkSize int) (common.BatchReader, error)

// WriterFactory 表写入器工厂，parameter 会被转换为具体插件的参数结构体
type WriterFactory func(parameter any) (common.TableWriter, error)

// Mode 运行模式
type Mode string

const (
	// ModeConvert 转换为行分隔JSON文件
	ModeConvert Mode = "convert"
	// ModeLoad 分块写入关系表
	ModeLoad Mode = "load"
)

// ParseMode 解析运行模式，接受 convert、load 以及别名 converter、loader
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "convert", "converter":
		return ModeConvert, nil
	case "load", "loader":
		return ModeLoad, nil
	default:
		return "", fmt.Errorf("不支持的运行模式: %q，支持的模式: %s, %s", s, ModeConvert, ModeLoad)
	}
}

func (m Mode) String() string { return string(m) }
