package core

import "dataload/internal/plugin/common"

// RegisterWriter 在全局注册器中注册Writer工厂函数
func RegisterWriter(name string, factory WriterFactory) {
	DefaultRegistry.RegisterWriter(name, factory)
}

// CreateWriter 通过全局注册器创建表写入器
func CreateWriter(name string, parameter any) (common.TableWriter, error) {
	return DefaultRegistry.CreateWriter(name, parameter)
}
