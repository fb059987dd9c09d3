package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"dataload/internal/plugin/common"
)

// PluginRegistry 插件注册器
type PluginRegistry struct {
	readers map[string]ReaderFactory
	writers map[string]WriterFactory
	mutex   sync.RWMutex
}

// NewPluginRegistry 创建新的插件注册器
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		readers: make(map[string]ReaderFactory),
		writers: make(map[string]WriterFactory),
	}
}

// RegisterReader 注册Reader插件
func (r *PluginRegistry) RegisterReader(name string, factory ReaderFactory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.readers[name] = factory
}

// RegisterWriter 注册Writer插件
func (r *PluginRegistry) RegisterWriter(name string, factory WriterFactory) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.writers[name] = factory
}

// CreateReader 打开源文件读取器
func (r *PluginRegistry) CreateReader(name, path string, columns *common.Columns, chunkSize int) (common.BatchReader, error) {
	r.mutex.RLock()
	factory, exists := r.readers[name]
	r.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("未找到Reader插件: %s", name)
	}
	return factory(path, columns, chunkSize)
}

// CreateWriter 创建表写入器
func (r *PluginRegistry) CreateWriter(name string, parameter any) (common.TableWriter, error) {
	r.mutex.RLock()
	factory, exists := r.writers[name]
	r.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("未找到Writer插件: %s", name)
	}
	return factory(parameter)
}

// GetRegisteredReaders 获取已注册的Reader插件名称列表（已排序）
func (r *PluginRegistry) GetRegisteredReaders() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.readers))
	for name := range r.readers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetRegisteredWriters 获取已注册的Writer插件名称列表（已排序）
func (r *PluginRegistry) GetRegisteredWriters() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.writers))
	for name := range r.writers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasReader 检查是否存在指定的Reader插件
func (r *PluginRegistry) HasReader(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, exists := r.readers[name]
	return exists
}

// HasWriter 检查是否存在指定的Writer插件
func (r *PluginRegistry) HasWriter(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, exists := r.writers[name]
	return exists
}

// convertParameter 经JSON编解码把任意参数转换为插件自己的参数结构，
// 保留 <、>、& 等字符原样
func convertParameter(parameter any, target any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(parameter); err != nil {
		return fmt.Errorf("参数编码失败: %w", err)
	}
	if err := json.Unmarshal(buf.Bytes(), target); err != nil {
		return fmt.Errorf("参数解码失败: %w", err)
	}
	return nil
}

// CreateWriterFactory 创建Writer工厂函数的辅助方法
func CreateWriterFactory[T any, W common.TableWriter](createFunc func(*T) W) WriterFactory {
	return func(parameter any) (common.TableWriter, error) {
		var param T
		if err := convertParameter(parameter, &param); err != nil {
			return nil, err
		}
		return createFunc(&param), nil
	}
}

// DefaultRegistry 全局插件注册器实例
var DefaultRegistry = NewPluginRegistry()

// Clear 清空所有注册的插件（主要用于测试）
func (r *PluginRegistry) Clear() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.readers = make(map[string]ReaderFactory)
	r.writers = make(map[string]WriterFactory)
}
