package core

import (
	"fmt"
	"os"
	"path/filepath"
)

// PartFilePattern 数据集目录下源文件的匹配模式
const PartFilePattern = "part-*"

// Locate 返回 <sourceRoot>/<dataset>/part-* 匹配的文件，没有匹配时返回空切片。
// 结果顺序取决于文件系统枚举，调用方不能依赖跨文件的顺序。
func Locate(sourceRoot, dataset string) ([]string, error) {
	pattern := filepath.Join(sourceRoot, dataset, PartFilePattern)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("匹配模式 %s 无效: %w", pattern, err)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("读取文件信息 %s 失败: %w", m, err)
		}
		if info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	return files, nil
}

// DatasetRef 数据集及其源文件
type DatasetRef struct {
	Name  string
	Files []string
}

// Resolve 定位数据集文件，没有文件时返回 *NoFilesFoundError
func Resolve(sourceRoot, dataset string) (*DatasetRef, error) {
	files, err := Locate(sourceRoot, dataset)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &NoFilesFoundError{
			Dataset: dataset,
			Pattern: filepath.Join(sourceRoot, dataset, PartFilePattern),
		}
	}
	return &DatasetRef{Name: dataset, Files: files}, nil
}
