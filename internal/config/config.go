// Package config 汇总运行所需的全部配置。
//
// 取值优先级从低到高：默认值、YAML配置文件、环境变量、命令行参数。
// 配置在进程启动时构造一次，之后作为显式参数传给流水线，
// 不存在包级的全局配置。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

const (
	// DefaultChunkSize 入库模式每批最多读取的记录数
	DefaultChunkSize = 10000
	// DefaultSchemaFile 源目录下的列定义注册文件名
	DefaultSchemaFile = "schemas.json"
	// DefaultDriver 默认数据库方言
	DefaultDriver = "postgres"
)

// Database 目标数据库连接参数，json 标签与写入器插件参数一致
type Database struct {
	Driver   string   `yaml:"driver" json:"-"`
	Host     string   `yaml:"host" json:"host"`
	Port     int      `yaml:"port" json:"port"`
	Name     string   `yaml:"name" json:"database"`
	User     string   `yaml:"user" json:"username"`
	Password string   `yaml:"password" json:"password"`
	Schema   string   `yaml:"schema" json:"schema,omitempty"`
	SSLMode  string   `yaml:"ssl_mode" json:"sslMode,omitempty"`
	PreSQL   []string `yaml:"pre_sql" json:"preSql,omitempty"`
	PostSQL  []string `yaml:"post_sql" json:"postSql,omitempty"`
}

// Config 运行配置
type Config struct {
	SourceRoot string   `yaml:"source_root"`
	TargetRoot string   `yaml:"target_root"`
	SchemaFile string   `yaml:"schema_file"` // 为空时使用 <SourceRoot>/schemas.json
	ChunkSize  int      `yaml:"chunk_size"`
	LogLevel   string   `yaml:"log_level"`
	LogFile    string   `yaml:"log_file"`
	DB         Database `yaml:"db"`
}

// Default 返回带默认值的配置
func Default() *Config {
	return &Config{
		ChunkSize: DefaultChunkSize,
		LogLevel:  "INFO",
		DB: Database{
			Driver: DefaultDriver,
		},
	}
}

// Load 依次应用默认值、配置文件（path 非空时）和环境变量
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile 用YAML文件覆盖已有配置，未知字段视为错误
func (c *Config) LoadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.UnmarshalWithOptions(content, c, yaml.Strict()); err != nil {
		return fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	return nil
}

// ApplyEnv 用环境变量覆盖配置，空值不覆盖
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("环境变量 %s 不是整数: %q", key, v)
		}
		*dst = n
		return nil
	}

	str("SRC_BASE_DIR", &c.SourceRoot)
	str("TGT_BASE_DIR", &c.TargetRoot)
	str("SCHEMA_FILE", &c.SchemaFile)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FILE", &c.LogFile)

	str("DB_DRIVER", &c.DB.Driver)
	str("DB_HOST", &c.DB.Host)
	str("DB_NAME", &c.DB.Name)
	str("DB_USER", &c.DB.User)
	str("DB_SCHEMA", &c.DB.Schema)
	// 密码允许包含首尾空格
	if v := getenv("DB_PASS"); v != "" {
		c.DB.Password = v
	}

	if err := num("DB_PORT", &c.DB.Port); err != nil {
		return err
	}
	return num("CHUNK_SIZE", &c.ChunkSize)
}

// SchemaPath 注册文件的实际路径，相对路径基于 SourceRoot
func (c *Config) SchemaPath() string {
	if c.SchemaFile == "" {
		return filepath.Join(c.SourceRoot, DefaultSchemaFile)
	}
	if filepath.IsAbs(c.SchemaFile) {
		return c.SchemaFile
	}
	return filepath.Join(c.SourceRoot, c.SchemaFile)
}
