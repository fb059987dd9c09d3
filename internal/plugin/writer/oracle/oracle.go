package oracle

import (
	"fmt"
	"strconv"
	"strings"

	go_ora "github.com/sijms/go-ora/v2"

	"dataload/internal/pkg/logger"
	"dataload/internal/plugin/common"
)

// Parameter Oracle写入器参数
type Parameter struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Service  string   `json:"database"` // 服务名
	Schema   string   `json:"schema"`
	PreSQL   []string `json:"preSql"`   // 写入前执行的SQL
	PostSQL  []string `json:"postSql"`  // 写入后执行的SQL
	LogLevel int      `json:"logLevel"` // 零值为 ERROR
}

// Dialect Oracle方言
type Dialect struct {
	param *Parameter
}

// NewDialect 创建Oracle方言并补齐默认值
func NewDialect(param *Parameter) *Dialect {
	if param.Port == 0 {
		param.Port = 1521
	}
	if param.Schema == "" {
		param.Schema = strings.ToUpper(param.Username) // Oracle默认使用用户名作为schema
	}
	return &Dialect{param: param}
}

func (d *Dialect) Name() string { return "oracle" }

func (d *Dialect) DriverName() string { return "oracle" }

func (d *Dialect) DSN() string {
	return go_ora.BuildUrl(d.param.Host, d.param.Port, d.param.Service, d.param.Username, d.param.Password, nil)
}

func (d *Dialect) QuoteIdent(name string) string { return common.QuoteWith(name, `"`, `"`) }

func (d *Dialect) TableName(table string) string {
	if d.param.Schema == "" {
		return d.QuoteIdent(table)
	}
	return d.QuoteIdent(d.param.Schema) + "." + d.QuoteIdent(table)
}

func (d *Dialect) Placeholder(n int) string { return ":" + strconv.Itoa(n) }

func (d *Dialect) TextType() string { return "VARCHAR2(4000)" }

// DropTableSQL Oracle没有 DROP TABLE IF EXISTS，忽略 ORA-00942
func (d *Dialect) DropTableSQL(table string) string {
	stmt := strings.ReplaceAll("DROP TABLE "+d.TableName(table)+" PURGE", "'", "''")
	return fmt.Sprintf(
		"BEGIN EXECUTE IMMEDIATE '%s'; EXCEPTION WHEN OTHERS THEN IF SQLCODE != -942 THEN RAISE; END IF; END;",
		stmt,
	)
}

// NewOracleWriter 创建新的Oracle写入器实例
func NewOracleWriter(param *Parameter) *common.SQLTableWriter {
	d := NewDialect(param)
	return common.NewSQLTableWriter(d, common.TableOptions{
		PreSQL:  param.PreSQL,
		PostSQL: param.PostSQL,
		Logger: logger.New(&logger.Option{
			Level:     logger.Level(param.LogLevel),
			Prefix:    "OracleWriter",
			WithTime:  true,
			WithLevel: true,
		}),
	})
}
