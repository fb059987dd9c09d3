package mysql

import (
	"net"
	"strconv"

	driver "github.com/go-sql-driver/mysql"

	"dataload/internal/pkg/logger"
	"dataload/internal/plugin/common"
)

// Parameter MySQL写入器参数结构体
type Parameter struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Database string   `json:"database"`
	PreSQL   []string `json:"preSql"`
	PostSQL  []string `json:"postSql"`
	LogLevel int      `json:"logLevel"` // 零值为 ERROR
}

// Dialect MySQL方言
type Dialect struct {
	param *Parameter
}

// NewDialect 创建MySQL方言并补齐默认值
func NewDialect(param *Parameter) *Dialect {
	if param.Port == 0 {
		param.Port = 3306
	}
	return &Dialect{param: param}
}

func (d *Dialect) Name() string { return "mysql" }

func (d *Dialect) DriverName() string { return "mysql" }

func (d *Dialect) DSN() string {
	cfg := driver.NewConfig()
	cfg.User = d.param.Username
	cfg.Passwd = d.param.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.param.Host, strconv.Itoa(d.param.Port))
	cfg.DBName = d.param.Database
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

func (d *Dialect) QuoteIdent(name string) string { return common.QuoteWith(name, "`", "`") }

// TableName MySQL的库即schema，连接时已指定，表名不再限定
func (d *Dialect) TableName(table string) string { return d.QuoteIdent(table) }

func (d *Dialect) Placeholder(int) string { return "?" }

func (d *Dialect) TextType() string { return "LONGTEXT" }

func (d *Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.TableName(table)
}

// NewMySQLWriter 创建新的MySQL写入器实例
func NewMySQLWriter(param *Parameter) *common.SQLTableWriter {
	d := NewDialect(param)
	return common.NewSQLTableWriter(d, common.TableOptions{
		PreSQL:  param.PreSQL,
		PostSQL: param.PostSQL,
		Logger: logger.New(&logger.Option{
			Level:     logger.Level(param.LogLevel),
			Prefix:    "MySQLWriter",
			WithTime:  true,
			WithLevel: true,
		}),
	})
}
