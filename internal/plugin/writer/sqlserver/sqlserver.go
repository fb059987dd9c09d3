package sqlserver

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"dataload/internal/pkg/logger"
	"dataload/internal/plugin/common"
)

// Parameter SQL Server写入器参数
type Parameter struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Database string   `json:"database"`
	Schema   string   `json:"schema"`
	PreSQL   []string `json:"preSql"`
	PostSQL  []string `json:"postSql"`
	LogLevel int      `json:"logLevel"` // 零值为 ERROR
}

// Dialect SQL Server方言
type Dialect struct {
	param *Parameter
}

// NewDialect 创建SQL Server方言并补齐默认值
func NewDialect(param *Parameter) *Dialect {
	if param.Port == 0 {
		param.Port = 1433
	}
	if param.Schema == "" {
		param.Schema = "dbo"
	}
	return &Dialect{param: param}
}

func (d *Dialect) Name() string { return "sqlserver" }

func (d *Dialect) DriverName() string { return "sqlserver" }

func (d *Dialect) DSN() string {
	u := url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(d.param.Username, d.param.Password),
		Host:     net.JoinHostPort(d.param.Host, strconv.Itoa(d.param.Port)),
		RawQuery: url.Values{"database": {d.param.Database}}.Encode(),
	}
	return u.String()
}

func (d *Dialect) QuoteIdent(name string) string { return common.QuoteWith(name, "[", "]") }

func (d *Dialect) TableName(table string) string {
	return d.QuoteIdent(d.param.Schema) + "." + d.QuoteIdent(table)
}

func (d *Dialect) Placeholder(n int) string { return "@p" + strconv.Itoa(n) }

func (d *Dialect) TextType() string { return "NVARCHAR(MAX)" }

func (d *Dialect) DropTableSQL(table string) string {
	object := strings.ReplaceAll(d.TableName(table), "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s", object, d.TableName(table))
}

// NewSQLServerWriter 创建SQL Server写入器
func NewSQLServerWriter(param *Parameter) *common.SQLTableWriter {
	d := NewDialect(param)
	return common.NewSQLTableWriter(d, common.TableOptions{
		PreSQL:  param.PreSQL,
		PostSQL: param.PostSQL,
		Logger: logger.New(&logger.Option{
			Level:     logger.Level(param.LogLevel),
			Prefix:    "SQLServerWriter",
			WithTime:  true,
			WithLevel: true,
		}),
	})
}
