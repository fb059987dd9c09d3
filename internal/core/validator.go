package core

import (
	"fmt"
	"os"
	"strings"

	"dataload/internal/config"
	"dataload/internal/pkg/logger"
)

// ConfigValidator 配置验证器接口
type ConfigValidator interface {
	Validate() error
}

// RunConfigValidator 按运行模式验证配置
type RunConfigValidator struct {
	config   *config.Config
	mode     Mode
	registry *PluginRegistry
}

var _ ConfigValidator = (*RunConfigValidator)(nil)

// NewRunConfigValidator 创建新的运行配置验证器
func NewRunConfigValidator(cfg *config.Config, mode Mode, registry *PluginRegistry) *RunConfigValidator {
	if registry == nil {
		registry = DefaultRegistry
	}
	return &RunConfigValidator{
		config:   cfg,
		mode:     mode,
		registry: registry,
	}
}

// Validate 验证运行配置
func (v *RunConfigValidator) Validate() error {
	if v.config == nil {
		return fmt.Errorf("配置不能为空")
	}

	if _, err := ParseMode(string(v.mode)); err != nil {
		return err
	}

	if err := v.validateSource(); err != nil {
		return fmt.Errorf("源配置验证失败: %w", err)
	}

	if err := v.validateSettings(); err != nil {
		return fmt.Errorf("设置配置验证失败: %w", err)
	}

	switch v.mode {
	case ModeConvert:
		if err := v.validateTarget(); err != nil {
			return fmt.Errorf("目标目录配置验证失败: %w", err)
		}
	case ModeLoad:
		if err := v.validateDatabase(); err != nil {
			return fmt.Errorf("数据库配置验证失败: %w", err)
		}
	}
	return nil
}

// validateSource 源目录必须存在
func (v *RunConfigValidator) validateSource() error {
	if strings.TrimSpace(v.config.SourceRoot) == "" {
		return fmt.Errorf("源目录不能为空 (SRC_BASE_DIR)")
	}
	info, err := os.Stat(v.config.SourceRoot)
	if err != nil {
		return fmt.Errorf("无法访问源目录: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("源路径不是目录: %s", v.config.SourceRoot)
	}
	return nil
}

// validateTarget 目标目录可以不存在，运行时按需创建
func (v *RunConfigValidator) validateTarget() error {
	if strings.TrimSpace(v.config.TargetRoot) == "" {
		return fmt.Errorf("目标目录不能为空 (TGT_BASE_DIR)")
	}
	if info, err := os.Stat(v.config.TargetRoot); err == nil && !info.IsDir() {
		return fmt.Errorf("目标路径不是目录: %s", v.config.TargetRoot)
	}
	return nil
}

// validateDatabase 验证数据库连接参数
func (v *RunConfigValidator) validateDatabase() error {
	db := v.config.DB
	if db.Driver == "" {
		return fmt.Errorf("数据库驱动不能为空")
	}
	if !v.registry.HasWriter(db.Driver) {
		return fmt.Errorf("不支持的数据库驱动: %s，支持的驱动: %s",
			db.Driver, strings.Join(v.registry.GetRegisteredWriters(), ", "))
	}

	if db.Name == "" {
		return fmt.Errorf("数据库名称不能为空 (DB_NAME)")
	}
	// sqlite 只需要数据库文件路径
	if db.Driver == "sqlite" {
		return nil
	}

	if db.Host == "" {
		return fmt.Errorf("数据库主机不能为空 (DB_HOST)")
	}
	if db.Port < 0 || db.Port > 65535 {
		return fmt.Errorf("端口号无效: %d", db.Port)
	}
	if db.User == "" {
		return fmt.Errorf("数据库用户名不能为空 (DB_USER)")
	}
	return nil
}

func (v *RunConfigValidator) validateSettings() error {
	if v.config.ChunkSize < 0 {
		return fmt.Errorf("块大小不能为负数: %d", v.config.ChunkSize)
	}
	if _, err := logger.ParseLevel(v.config.LogLevel); err != nil {
		return err
	}
	return nil
}

// ValidateRunConfig 使用全局注册器验证配置
func ValidateRunConfig(cfg *config.Config, mode Mode) error {
	return NewRunConfigValidator(cfg, mode, DefaultRegistry).Validate()
}
