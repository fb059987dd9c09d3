package core

import (
	"context"
	"fmt"
	"time"

	"dataload/internal/config"
	"dataload/internal/pkg/logger"
)

// Engine 数据导入引擎，负责一次完整运行的装配
type Engine struct {
	config *config.Config
	opts   []Option
	logger *logger.Logger
	reg    *PluginRegistry
}

// NewEngine 创建新的数据导入引擎实例
func NewEngine(cfg *config.Config, opts ...Option) *Engine {
	o := newOptions(opts)
	return &Engine{
		config: cfg,
		opts:   opts,
		logger: o.logger,
		reg:    o.registry,
	}
}

// Init 验证配置并加载列定义注册文件
func (e *Engine) Init(mode Mode) (*Schema, error) {
	if err := NewRunConfigValidator(e.config, mode, e.reg).Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	schema, err := LoadSchema(e.config.SchemaPath())
	if err != nil {
		return nil, err
	}
	e.logger.Info("已加载列定义: %s (%d 个数据集)", schema.Path(), len(schema.Datasets()))
	return schema, nil
}

// Start 执行一次运行
//
// 返回的 error 只表示整次运行被中止；多数据集运行中单个数据集的失败
// 记录在 Report 中。
func (e *Engine) Start(ctx context.Context, datasets []string, mode Mode) (*Report, error) {
	startTime := time.Now()

	schema, err := e.Init(mode)
	if err != nil {
		return nil, err
	}

	if len(datasets) == 0 {
		e.logger.Info("开始%s任务: 全部数据集", modeLabel(mode))
	} else {
		e.logger.Info("开始%s任务: %v", modeLabel(mode), datasets)
	}

	pipeline := NewPipeline(e.config, schema, append([]Option{WithLogger(e.logger), WithRegistry(e.reg)}, e.opts...)...)
	defer func() {
		if err := pipeline.Close(); err != nil {
			e.logger.Warn("关闭表写入器失败: %v", err)
		}
	}()

	report, err := pipeline.Run(ctx, datasets, mode)
	e.summarize(report, time.Since(startTime))
	return report, err
}

func (e *Engine) summarize(report *Report, duration time.Duration) {
	if report == nil {
		return
	}
	for _, res := range report.Results {
		if res.Succeeded() {
			e.logger.Info("%s", res)
		} else {
			e.logger.Error("%s", res)
		}
	}
	e.logger.Info("%s任务结束! 总耗时: %v, 成功: %d, 失败: %d, 记录数: %d",
		modeLabel(report.Mode),
		duration,
		len(report.Succeeded()),
		len(report.Failed()),
		report.Records(),
	)
}

func modeLabel(mode Mode) string {
	switch mode {
	case ModeConvert:
		return "转换"
	case ModeLoad:
		return "入库"
	default:
		return string(mode)
	}
}
