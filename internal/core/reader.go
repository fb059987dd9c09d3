package core

import "dataload/internal/plugin/common"

// DefaultReader 默认的源文件格式
const DefaultReader = "csv"

// RegisterReader 在全局注册器中注册Reader工厂函数
func RegisterReader(name string, factory ReaderFactory) {
	DefaultRegistry.RegisterReader(name, factory)
}

// CreateReader 通过全局注册器打开源文件
func CreateReader(name, path string, columns *common.Columns, chunkSize int) (common.BatchReader, error) {
	return DefaultRegistry.CreateReader(name, path, columns, chunkSize)
}
