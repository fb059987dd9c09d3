package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	"dataload/internal/config"
	"dataload/internal/pkg/logger"
	"dataload/internal/plugin/common"
	"dataload/internal/plugin/writer/jsonl"
)

type options struct {
	logger    *logger.Logger
	registry  *PluginRegistry
	reader    string
	documents common.DocumentWriter
	tables    common.TableWriter
}

// Option 流水线和引擎的可选项
type Option func(*options)

// WithLogger 指定日志记录器
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry 指定插件注册器，默认使用 DefaultRegistry
func WithRegistry(r *PluginRegistry) Option {
	return func(o *options) { o.registry = r }
}

// WithReader 指定源文件读取插件，默认 csv
func WithReader(name string) Option {
	return func(o *options) { o.reader = name }
}

// WithDocumentWriter 替换转换模式的文档写入器
func WithDocumentWriter(w common.DocumentWriter) Option {
	return func(o *options) { o.documents = w }
}

// WithTableWriter 直接提供表写入器，不再按 DB.Driver 从注册器创建
func WithTableWriter(w common.TableWriter) Option {
	return func(o *options) { o.tables = w }
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logger.New(&logger.Option{
			Level:     logger.LevelInfo,
			Prefix:    "DataLoad",
			WithTime:  true,
			WithLevel: true,
		})
	}
	if o.registry == nil {
		o.registry = DefaultRegistry
	}
	if o.reader == "" {
		o.reader = DefaultReader
	}
	return o
}

// writerParameter 传给表写入器插件的参数
type writerParameter struct {
	config.Database
	LogLevel int `json:"logLevel"`
}

// Pipeline 数据集处理流水线
//
// 严格顺序执行：数据集、文件、块依次处理，内存中最多只有一批记录。
// 所有配置通过构造参数传入。
type Pipeline struct {
	config *config.Config
	schema *Schema
	opts   *options
	logger *logger.Logger

	tables      common.TableWriter
	tablesReady bool
}

// NewPipeline 创建新的流水线
func NewPipeline(cfg *config.Config, schema *Schema, opts ...Option) *Pipeline {
	o := newOptions(opts)
	if o.documents == nil {
		o.documents = jsonl.NewWriter(&jsonl.Parameter{LogLevel: int(o.logger.GetLevel())})
	}
	return &Pipeline{
		config: cfg,
		schema: schema,
		opts:   o,
		logger: o.logger.Named("Pipeline"),
		tables: o.tables,
	}
}

// chunkSize 入库模式的块大小，未配置时使用默认值
func (p *Pipeline) chunkSize() int {
	if p.config.ChunkSize > 0 {
		return p.config.ChunkSize
	}
	return config.DefaultChunkSize
}

// Run 处理多个数据集
//
// datasets 为空时处理注册文件中的全部数据集。只指定一个数据集时，
// 任何错误都会立即返回；多个数据集时单个失败只记录在结果中，
// 其余数据集继续处理，此时返回的 error 为 nil，失败汇总见 Report.Err。
// 上下文取消总是终止整个运行。
func (p *Pipeline) Run(ctx context.Context, datasets []string, mode Mode) (*Report, error) {
	report := &Report{Mode: mode, StartTime: time.Now()}
	defer func() { report.Duration = time.Since(report.StartTime) }()

	if _, err := ParseMode(string(mode)); err != nil {
		return report, err
	}

	multi := len(datasets) != 1
	if len(datasets) == 0 {
		datasets = p.schema.Datasets()
	}

	for _, name := range datasets {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		res := p.process(ctx, name, mode)
		report.Results = append(report.Results, res)
		if res.Status != StatusFailed {
			continue
		}

		if !multi || isContextError(res.Err) {
			return report, res.Err
		}
		p.logger.Error("数据集 %s 处理失败，继续处理下一个: %v", name, res.Err)
	}
	return report, nil
}

// RunDataset 处理单个数据集，失败时返回错误
func (p *Pipeline) RunDataset(ctx context.Context, dataset string, mode Mode) (*DatasetResult, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	res := p.process(ctx, dataset, mode)
	if res.Status == StatusFailed {
		return res, res.Err
	}
	return res, nil
}

func (p *Pipeline) process(ctx context.Context, dataset string, mode Mode) *DatasetResult {
	res := newDatasetResult(dataset, mode)
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	columns, err := p.schema.Columns(dataset)
	if err != nil {
		return res.fail(err)
	}

	ref, err := Resolve(p.config.SourceRoot, dataset)
	if err != nil {
		return res.fail(err)
	}
	// 只为日志可复现而排序，处理逻辑不依赖文件顺序
	sort.Strings(ref.Files)
	res.Status = StatusFilesResolved
	p.logger.Info("数据集 %s: 找到 %d 个文件, %d 列", dataset, len(ref.Files), columns.Len())

	res.Status = StatusProcessing
	switch mode {
	case ModeLoad:
		err = p.load(ctx, res, ref, columns)
	case ModeConvert:
		err = p.convert(ctx, res, ref, columns)
	}
	if err != nil {
		return res.fail(err)
	}

	res.Status = StatusSucceeded
	p.logger.Info("数据集 %s 处理完成: %d 条记录", dataset, res.Records)
	return res
}

// load 运行开始时重建表，之后所有文件的所有块依次追加
func (p *Pipeline) load(ctx context.Context, res *DatasetResult, ref *DatasetRef, columns *common.Columns) error {
	tw, err := p.tableWriter(ctx)
	if err != nil {
		return err
	}
	if err := tw.Prepare(ctx, ref.Name, columns); err != nil {
		return err
	}

	for _, file := range ref.Files {
		fr, err := p.loadFile(ctx, tw, ref.Name, file, columns)
		res.Files = append(res.Files, fr)
		res.Records += fr.Records
		if err != nil {
			return err
		}
	}

	if err := tw.Finish(ctx, ref.Name); err != nil {
		return err
	}

	n, err := tw.Count(ctx, ref.Name)
	if err != nil {
		p.logger.Warn("%v", err)
	} else {
		res.TableRows = n
	}
	return nil
}

func (p *Pipeline) loadFile(ctx context.Context, tw common.TableWriter, table, file string, columns *common.Columns) (FileResult, error) {
	fr := FileResult{Source: file, Target: table}

	reader, err := p.opts.registry.CreateReader(p.opts.reader, file, columns, p.chunkSize())
	if err != nil {
		return fr, err
	}
	defer reader.Close()

	for {
		if err := ctx.Err(); err != nil {
			return fr, err
		}

		batch, err := reader.Next()
		if err == io.EOF {
			return fr, nil
		}
		if err != nil {
			return fr, err
		}

		if err := tw.Write(ctx, table, batch); err != nil {
			return fr, err
		}
		fr.Records += int64(batch.Len())
		fr.Batches++
		p.logger.Debug("数据集 %s: 已写入 %s 第 %d 块, %d 条", table, filepath.Base(file), batch.Index, batch.Len())
	}
}

// convert 每个源文件整文件读取，写成同名的行分隔JSON文件
func (p *Pipeline) convert(ctx context.Context, res *DatasetResult, ref *DatasetRef, columns *common.Columns) error {
	for _, file := range ref.Files {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := p.readWhole(file, columns)
		if err != nil {
			return err
		}

		fileName := filepath.Base(file)
		fr, err := p.opts.documents.Write(batch.Rows, p.config.TargetRoot, ref.Name, fileName)
		fr.Source = file
		res.Files = append(res.Files, fr)
		res.Records += fr.Records
		if err != nil {
			return err
		}
		p.logger.Info("数据集 %s: 已转换 %s -> %s (%d 条)", ref.Name, fileName, fr.Target, fr.Records)
	}
	return nil
}

func (p *Pipeline) readWhole(file string, columns *common.Columns) (*common.Batch, error) {
	reader, err := p.opts.registry.CreateReader(p.opts.reader, file, columns, 0)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	batch, err := reader.Next()
	if err == io.EOF {
		return &common.Batch{File: file}, nil
	}
	return batch, err
}

// tableWriter 首次入库时创建并连接表写入器
func (p *Pipeline) tableWriter(ctx context.Context) (common.TableWriter, error) {
	if p.tablesReady {
		return p.tables, nil
	}
	if p.tables == nil {
		param := writerParameter{
			Database: p.config.DB,
			LogLevel: int(p.logger.GetLevel()),
		}
		w, err := p.opts.registry.CreateWriter(p.config.DB.Driver, param)
		if err != nil {
			return nil, fmt.Errorf("创建表写入器失败: %w", err)
		}
		p.tables = w
	}
	if err := p.tables.Connect(ctx); err != nil {
		return nil, err
	}
	p.tablesReady = true
	return p.tables, nil
}

// Close 释放数据库连接
func (p *Pipeline) Close() error {
	if p.tables == nil || !p.tablesReady {
		return nil
	}
	p.tablesReady = false
	return p.tables.Close()
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
