package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"dataload/internal/plugin/common"
)

// ColumnDef 注册文件中的单列定义
type ColumnDef struct {
	Name     string `json:"column_name"`
	Position int    `json:"column_position"`
}

// Schema 数据集名到列定义的映射，加载后只读
type Schema struct {
	path     string
	datasets map[string]*common.Columns
}

// LoadSchema 读取并解析注册文件
//
// 文件格式: {"<dataset>": [{"column_name": "...", "column_position": 0}, ...]}
func LoadSchema(path string) (*Schema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Err: err}
	}
	s, err := ParseSchema(bytes.NewReader(content))
	if err != nil {
		return nil, &SchemaLoadError{Path: path, Err: err}
	}
	s.path = path
	return s, nil
}

// ParseSchema 从 r 解析注册内容；列按 column_position 升序排列，
// 与声明顺序无关。位置重复或列名为空视为格式错误。
func ParseSchema(r io.Reader) (*Schema, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取注册文件失败: %w", err)
	}

	// 整体解析，首个JSON值之后的多余内容同样视为格式错误
	var raw map[string][]ColumnDef
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("解析注册文件失败: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("注册文件内容为空")
	}

	s := &Schema{datasets: make(map[string]*common.Columns, len(raw))}
	for name, defs := range raw {
		cols, err := orderColumns(defs)
		if err != nil {
			return nil, fmt.Errorf("数据集 %s: %w", name, err)
		}
		s.datasets[name] = cols
	}
	return s, nil
}

func orderColumns(defs []ColumnDef) (*common.Columns, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("没有列定义")
	}
	sorted := make([]ColumnDef, len(defs))
	copy(sorted, defs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	names := make([]string, len(sorted))
	for i, d := range sorted {
		if i > 0 && sorted[i-1].Position == d.Position {
			return nil, fmt.Errorf("列位置重复: %d (%s, %s)", d.Position, sorted[i-1].Name, d.Name)
		}
		names[i] = d.Name
	}
	return common.NewColumns(names)
}

// Path 注册文件路径
func (s *Schema) Path() string { return s.path }

// Columns 返回数据集按位置升序排列的列
func (s *Schema) Columns(dataset string) (*common.Columns, error) {
	cols, ok := s.datasets[dataset]
	if !ok {
		return nil, &UnknownDatasetError{Dataset: dataset}
	}
	return cols, nil
}

// ColumnNames 同 Columns，返回列名列表
func (s *Schema) ColumnNames(dataset string) ([]string, error) {
	cols, err := s.Columns(dataset)
	if err != nil {
		return nil, err
	}
	return cols.Names(), nil
}

// Has 数据集是否已注册
func (s *Schema) Has(dataset string) bool {
	_, ok := s.datasets[dataset]
	return ok
}

// Datasets 返回所有已注册的数据集，按名称排序
func (s *Schema) Datasets() []string {
	names := make([]string, 0, len(s.datasets))
	for name := range s.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
