package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dataload/internal/config"
	"dataload/internal/core"
	"dataload/internal/pkg/logger"
)

// 版本信息，在编译时通过 -ldflags 注入
var (
	Version   = "dev"
	BuildTime = "unknown"
	CommitID  = "unknown"
)

type cliOptions struct {
	datasets    []string
	all         bool
	mode        string
	configFile  string
	chunkSize   int
	logLevel    string
	showVersion bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "dataload",
		Short: "把 part-* 源文件转换为行分隔JSON或分块导入数据库",
		Long: `dataload 按 schemas.json 中的列定义读取 <SRC_BASE_DIR>/<数据集>/part-* 文件。

convert 模式把每个源文件写成 <TGT_BASE_DIR>/<数据集>/<同名文件> 的行分隔JSON；
load 模式在运行开始时重建同名表，再分块追加写入。`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintf(cmd.OutOrStdout(), "dataload 版本: %s, 构建时间: %s, 提交ID: %s\n", Version, BuildTime, CommitID)
				return nil
			}
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVarP(&opts.datasets, "tablename", "t", nil, "要处理的数据集，多个用逗号分隔")
	flags.BoolVar(&opts.all, "all", false, "处理注册文件中的全部数据集")
	flags.StringVarP(&opts.mode, "mode", "m", "", "运行模式: convert 或 load")
	flags.StringVar(&opts.configFile, "config", "", "YAML配置文件路径")
	flags.IntVar(&opts.chunkSize, "chunk-size", 0, "入库模式每批记录数，覆盖 CHUNK_SIZE")
	flags.StringVar(&opts.logLevel, "log-level", "", "日志级别: ERROR, WARN, INFO, DEBUG")
	flags.BoolVar(&opts.showVersion, "version", false, "显示版本信息")
	cmd.MarkFlagsMutuallyExclusive("tablename", "all")

	return cmd
}

// run 主要的程序逻辑，返回错误而不是直接退出
func run(cmd *cobra.Command, opts *cliOptions) error {
	if len(opts.datasets) == 0 && !opts.all {
		return fmt.Errorf("请通过 -t 指定数据集或使用 --all")
	}
	if opts.mode == "" {
		return fmt.Errorf("请通过 -m 指定运行模式")
	}
	mode, err := core.ParseMode(opts.mode)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configFile, os.Getenv)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("chunk-size") {
		cfg.ChunkSize = opts.chunkSize
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New(&logger.Option{
		Level:     level,
		Prefix:    "DataLoad",
		LogFile:   cfg.LogFile,
		WithTime:  true,
		WithLevel: true,
	})
	defer log.Close()

	log.Info("dataload 版本: %s, 构建时间: %s, 提交ID: %s", Version, BuildTime, CommitID)

	if err := core.RegisterAllBuiltinPlugins(); err != nil {
		return fmt.Errorf("注册插件失败: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var datasets []string
	if !opts.all {
		datasets = opts.datasets
	}

	engine := core.NewEngine(cfg, core.WithLogger(log))
	report, err := engine.Start(ctx, datasets, mode)
	if err != nil {
		log.Error("运行失败: %v", err)
		return err
	}
	if err := report.Err(); err != nil {
		return errors.New("部分数据集处理失败")
	}
	return nil
}
