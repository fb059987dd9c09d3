package common

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dataload/internal/pkg/logger"
)

// Dialect 屏蔽不同数据库在连接串、标识符和DDL上的差异
type Dialect interface {
	// Name 方言名称，用于日志
	Name() string
	// DriverName database/sql 驱动名
	DriverName() string
	// DSN 连接串
	DSN() string
	// QuoteIdent 引用单个标识符
	QuoteIdent(name string) string
	// TableName 返回带schema限定并已引用的表名
	TableName(table string) string
	// Placeholder 第 n 个参数占位符，n 从 1 开始
	Placeholder(n int) string
	// TextType 文本列类型
	TextType() string
	// DropTableSQL 表存在时删除
	DropTableSQL(table string) string
}

// TableOptions SQL写入器的公共参数
type TableOptions struct {
	PreSQL  []string // 重建表之前执行
	PostSQL []string // 数据集全部写入之后执行
	Logger  *logger.Logger
}

// SQLTableWriter 基于 database/sql 的通用表写入器
type SQLTableWriter struct {
	dialect Dialect
	options TableOptions
	logger  *logger.Logger
	DB      *sql.DB
}

var _ TableWriter = (*SQLTableWriter)(nil)

// NewSQLTableWriter 创建通用表写入器
func NewSQLTableWriter(dialect Dialect, options TableOptions) *SQLTableWriter {
	l := options.Logger
	if l == nil {
		l = logger.New(&logger.Option{
			Level:     logger.LevelInfo,
			Prefix:    dialect.Name() + "Writer",
			WithTime:  true,
			WithLevel: true,
		})
	}
	return &SQLTableWriter{
		dialect: dialect,
		options: options,
		logger:  l,
	}
}

// Dialect 返回当前方言
func (w *SQLTableWriter) Dialect() Dialect { return w.dialect }

// Connect 连接数据库
func (w *SQLTableWriter) Connect(ctx context.Context) error {
	db, err := sql.Open(w.dialect.DriverName(), w.dialect.DSN())
	if err != nil {
		return &SinkWriteError{Target: w.dialect.Name(), Op: "connect", Err: err}
	}

	// 单线程顺序写入，连接池保持很小即可
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return &SinkWriteError{Target: w.dialect.Name(), Op: "ping", Err: err}
	}

	w.DB = db
	w.logger.Debug("已连接 %s", w.dialect.Name())
	return nil
}

// Prepare 执行前置SQL，删除并重新创建目标表。所有列均为文本类型，不建索引和主键
func (w *SQLTableWriter) Prepare(ctx context.Context, table string, columns *Columns) error {
	if w.DB == nil {
		return &SinkWriteError{Target: table, Op: "prepare", Err: fmt.Errorf("数据库连接未初始化")}
	}
	if columns == nil || columns.Len() == 0 {
		return &SinkWriteError{Target: table, Op: "prepare", Err: fmt.Errorf("列定义为空")}
	}

	if err := w.execAll(ctx, table, "pre-sql", w.options.PreSQL); err != nil {
		return err
	}

	if _, err := w.DB.ExecContext(ctx, w.dialect.DropTableSQL(table)); err != nil {
		return &SinkWriteError{Target: table, Op: "drop", Err: err}
	}
	if _, err := w.DB.ExecContext(ctx, w.CreateTableSQL(table, columns)); err != nil {
		return &SinkWriteError{Target: table, Op: "create", Err: err}
	}
	w.logger.Info("已重建表 %s (%d 列)", table, columns.Len())
	return nil
}

// CreateTableSQL 构建建表语句
func (w *SQLTableWriter) CreateTableSQL(table string, columns *Columns) string {
	defs := make([]string, columns.Len())
	for i := range defs {
		defs[i] = w.dialect.QuoteIdent(columns.Name(i)) + " " + w.dialect.TextType()
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", w.dialect.TableName(table), strings.Join(defs, ", "))
}

// InsertSQL 构建单行插入语句
func (w *SQLTableWriter) InsertSQL(table string, columns *Columns) string {
	cols := make([]string, columns.Len())
	placeholders := make([]string, columns.Len())
	for i := range cols {
		cols[i] = w.dialect.QuoteIdent(columns.Name(i))
		placeholders[i] = w.dialect.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		w.dialect.TableName(table),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)
}

// Write 在一个事务内追加整批数据
func (w *SQLTableWriter) Write(ctx context.Context, table string, batch *Batch) error {
	if w.DB == nil {
		return &SinkWriteError{Target: table, Op: "insert", Err: fmt.Errorf("数据库连接未初始化")}
	}
	if batch.Len() == 0 {
		return nil
	}

	startTime := time.Now()
	tx, err := w.DB.BeginTx(ctx, nil)
	if err != nil {
		return &SinkWriteError{Target: table, Op: "begin", Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, w.InsertSQL(table, batch.Rows[0].Columns()))
	if err != nil {
		return &SinkWriteError{Target: table, Op: "prepare insert", Err: err}
	}
	defer stmt.Close()

	for i, row := range batch.Rows {
		if _, err := stmt.ExecContext(ctx, row.SQLArgs()...); err != nil {
			return &SinkWriteError{
				Target: table,
				Op:     "insert",
				Err:    fmt.Errorf("%s 第 %d 块第 %d 条: %w", batch.File, batch.Index, i+1, err),
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return &SinkWriteError{Target: table, Op: "commit", Err: err}
	}
	w.logger.Debug("写入 %s: %d 条, 耗时 %v", table, batch.Len(), time.Since(startTime))
	return nil
}

// Finish 执行后置SQL
func (w *SQLTableWriter) Finish(ctx context.Context, table string) error {
	return w.execAll(ctx, table, "post-sql", w.options.PostSQL)
}

// Count 获取表中记录数
func (w *SQLTableWriter) Count(ctx context.Context, table string) (int64, error) {
	if w.DB == nil {
		return 0, fmt.Errorf("数据库连接未初始化")
	}
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", w.dialect.TableName(table))
	if err := w.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("获取表 %s 记录数失败: %w", table, err)
	}
	return n, nil
}

// Close 关闭数据库连接
func (w *SQLTableWriter) Close() error {
	if w.DB == nil {
		return nil
	}
	err := w.DB.Close()
	w.DB = nil
	return err
}

func (w *SQLTableWriter) execAll(ctx context.Context, table, op string, statements []string) error {
	for i, stmt := range statements {
		display := stmt
		if len(display) > 100 {
			display = display[:97] + "..."
		}
		w.logger.Info("执行%s[%d]: %s", op, i+1, display)

		if _, err := w.DB.ExecContext(ctx, stmt); err != nil {
			return &SinkWriteError{Target: table, Op: fmt.Sprintf("%s[%d]", op, i+1), Err: err}
		}
	}
	return nil
}

// QuoteWith 用 open/close 引用标识符，close 字符在标识符内时双写转义
func QuoteWith(name, open, close string) string {
	return open + strings.ReplaceAll(name, close, close+close) + close
}
