// Package sqlite 基于 modernc.org/sqlite（纯Go实现）的表写入器，
// Database 参数即数据库文件路径。
package sqlite

import (
	_ "modernc.org/sqlite"

	"dataload/internal/pkg/logger"
	"dataload/internal/plugin/common"
)

// Parameter SQLite写入器参数
type Parameter struct {
	Database string   `json:"database"` // 数据库文件路径
	PreSQL   []string `json:"preSql"`
	PostSQL  []string `json:"postSql"`
	LogLevel int      `json:"logLevel"` // 零值为 ERROR
}

// Dialect SQLite方言
type Dialect struct {
	param *Parameter
}

// NewDialect 创建SQLite方言
func NewDialect(param *Parameter) *Dialect {
	return &Dialect{param: param}
}

func (d *Dialect) Name() string { return "sqlite" }

func (d *Dialect) DriverName() string { return "sqlite" }

func (d *Dialect) DSN() string { return d.param.Database }

func (d *Dialect) QuoteIdent(name string) string { return common.QuoteWith(name, `"`, `"`) }

func (d *Dialect) TableName(table string) string { return d.QuoteIdent(table) }

func (d *Dialect) Placeholder(int) string { return "?" }

func (d *Dialect) TextType() string { return "TEXT" }

func (d *Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.TableName(table)
}

// NewSQLiteWriter 创建SQLite写入器
func NewSQLiteWriter(param *Parameter) *common.SQLTableWriter {
	d := NewDialect(param)
	return common.NewSQLTableWriter(d, common.TableOptions{
		PreSQL:  param.PreSQL,
		PostSQL: param.PostSQL,
		Logger: logger.New(&logger.Option{
			Level:     logger.Level(param.LogLevel),
			Prefix:    "SQLiteWriter",
			WithTime:  true,
			WithLevel: true,
		}),
	})
}
