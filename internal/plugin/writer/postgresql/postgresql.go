package postgresql

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"dataload/internal/pkg/logger"
	"dataload/internal/plugin/common"
)

// Parameter PostgreSQL写入器参数结构体
type Parameter struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Database string   `json:"database"`
	Schema   string   `json:"schema"`
	SSLMode  string   `json:"sslMode"`
	PreSQL   []string `json:"preSql"`   // 写入前执行的SQL
	PostSQL  []string `json:"postSql"`  // 写入后执行的SQL
	LogLevel int      `json:"logLevel"` // 零值为 ERROR
}

func (p *Parameter) setDefaults() {
	if p.Port == 0 {
		p.Port = 5432
	}
	if p.Schema == "" {
		p.Schema = "public"
	}
	if p.SSLMode == "" {
		p.SSLMode = "disable"
	}
}

// Dialect PostgreSQL方言，driver 为 postgres(lib/pq) 或 pgx
type Dialect struct {
	param  *Parameter
	driver string
}

// NewDialect 创建方言，driver 为空时使用 lib/pq
func NewDialect(param *Parameter, driver string) *Dialect {
	param.setDefaults()
	if driver == "" {
		driver = "postgres"
	}
	return &Dialect{param: param, driver: driver}
}

func (d *Dialect) Name() string { return d.driver }

func (d *Dialect) DriverName() string { return d.driver }

// DSN lib/pq 使用 key=value 形式，pgx 使用 URL 形式
func (d *Dialect) DSN() string {
	p := d.param
	if d.driver == "pgx" {
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(p.Username, p.Password),
			Host:     net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
			Path:     "/" + p.Database,
			RawQuery: url.Values{"sslmode": {p.SSLMode}}.Encode(),
		}
		return u.String()
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		quoteKV(p.Host), p.Port, quoteKV(p.Username), quoteKV(p.Password), quoteKV(p.Database), quoteKV(p.SSLMode))
}

// quoteKV 按 libpq 规则引用含空格或引号的值
func quoteKV(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (d *Dialect) QuoteIdent(name string) string { return common.QuoteWith(name, `"`, `"`) }

func (d *Dialect) TableName(table string) string {
	return d.QuoteIdent(d.param.Schema) + "." + d.QuoteIdent(table)
}

func (d *Dialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (d *Dialect) TextType() string { return "TEXT" }

func (d *Dialect) DropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + d.TableName(table)
}

// NewPostgreSQLWriter 基于 lib/pq 的写入器
func NewPostgreSQLWriter(param *Parameter) *common.SQLTableWriter {
	return newWriter(param, "postgres")
}

// NewPgxWriter 基于 pgx stdlib 的写入器
func NewPgxWriter(param *Parameter) *common.SQLTableWriter {
	return newWriter(param, "pgx")
}

func newWriter(param *Parameter, driver string) *common.SQLTableWriter {
	d := NewDialect(param, driver)
	return common.NewSQLTableWriter(d, common.TableOptions{
		PreSQL:  param.PreSQL,
		PostSQL: param.PostSQL,
		Logger: logger.New(&logger.Option{
			Level:     logger.Level(param.LogLevel),
			Prefix:    "PostgreSQLWriter",
			WithTime:  true,
			WithLevel: true,
		}),
	})
}
