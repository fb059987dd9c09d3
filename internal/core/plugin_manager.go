package core

import (
	"fmt"
	"sort"

	"dataload/internal/plugin/common"
	"dataload/internal/plugin/reader/csvfile"
	"dataload/internal/plugin/writer/mysql"
	"dataload/internal/plugin/writer/oracle"
	"dataload/internal/plugin/writer/postgresql"
	"dataload/internal/plugin/writer/sqlite"
	"dataload/internal/plugin/writer/sqlserver"
)

// 内置插件
var (
	builtinReaders = map[string]ReaderFactory{
		DefaultReader: func(path string, columns *common.Columns, chunkSize int) (common.BatchReader, error) {
			return csvfile.Open(path, columns, chunkSize)
		},
	}

	builtinWriters = map[string]WriterFactory{
		"postgres":  CreateWriterFactory(postgresql.NewPostgreSQLWriter),
		"pgx":       CreateWriterFactory(postgresql.NewPgxWriter),
		"mysql":     CreateWriterFactory(mysql.NewMySQLWriter),
		"oracle":    CreateWriterFactory(oracle.NewOracleWriter),
		"sqlserver": CreateWriterFactory(sqlserver.NewSQLServerWriter),
		"sqlite":    CreateWriterFactory(sqlite.NewSQLiteWriter),
	}
)

// PluginManager 插件管理器
type PluginManager struct {
	registry *PluginRegistry
}

// NewPluginManager 创建新的插件管理器
func NewPluginManager(registry *PluginRegistry) *PluginManager {
	return &PluginManager{
		registry: registry,
	}
}

// RegisterAllPlugins 注册所有内置插件
func (pm *PluginManager) RegisterAllPlugins() error {
	for name := range builtinReaders {
		if err := pm.RegisterPlugin("reader", name); err != nil {
			return err
		}
	}
	for name := range builtinWriters {
		if err := pm.RegisterPlugin("writer", name); err != nil {
			return err
		}
	}
	return nil
}

// RegisterPlugin 注册单个内置插件
func (pm *PluginManager) RegisterPlugin(pluginType, name string) error {
	if err := pm.ValidatePlugin(pluginType, name); err != nil {
		return err
	}
	switch pluginType {
	case "reader":
		pm.registry.RegisterReader(name, builtinReaders[name])
	case "writer":
		pm.registry.RegisterWriter(name, builtinWriters[name])
	}
	return nil
}

// GetSupportedPlugins 获取支持的插件列表
func (pm *PluginManager) GetSupportedPlugins() map[string][]string {
	return map[string][]string{
		"readers": sortedKeys(builtinReaders),
		"writers": sortedKeys(builtinWriters),
	}
}

// ValidatePlugin 验证插件是否支持
func (pm *PluginManager) ValidatePlugin(pluginType, name string) error {
	var ok bool
	switch pluginType {
	case "reader":
		_, ok = builtinReaders[name]
	case "writer":
		_, ok = builtinWriters[name]
	default:
		return fmt.Errorf("未知的插件类型: %s", pluginType)
	}
	if !ok {
		return fmt.Errorf("不支持的%s插件: %s", pluginType, name)
	}
	return nil
}

// IsPluginRegistered 检查插件是否已注册
func (pm *PluginManager) IsPluginRegistered(pluginType, name string) bool {
	switch pluginType {
	case "reader":
		return pm.registry.HasReader(name)
	case "writer":
		return pm.registry.HasWriter(name)
	default:
		return false
	}
}

// GetRegistry 获取插件注册器
func (pm *PluginManager) GetRegistry() *PluginRegistry {
	return pm.registry
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultPluginManager 全局插件管理器实例
var DefaultPluginManager = NewPluginManager(DefaultRegistry)

// RegisterAllBuiltinPlugins 注册所有内置插件的便捷函数
func RegisterAllBuiltinPlugins() error {
	return DefaultPluginManager.RegisterAllPlugins()
}

// ValidateBuiltinPlugin 验证内置插件的便捷函数
func ValidateBuiltinPlugin(pluginType, name string) error {
	return DefaultPluginManager.ValidatePlugin(pluginType, name)
}

// GetSupportedBuiltinPlugins 获取支持的内置插件列表的便捷函数
func GetSupportedBuiltinPlugins() map[string][]string {
	return DefaultPluginManager.GetSupportedPlugins()
}
