package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/donutnomad/partialgen/internal/config"
	"github.com/donutnomad/partialgen/internal/report"
	"github.com/donutnomad/partialgen/partialgen"
	"github.com/donutnomad/partialgen/plugin"
	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	// 集中注册所有生成器
	plugin.MustRegister(partialgen.NewPartialGenerator())
}

// errReported 错误已经输出过，main 只设置退出码
var errReported = errors.New("已报告")

// app 命令共享的运行环境，在 PersistentPreRunE 中初始化
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	logger   *zap.SugaredLogger
	registry *plugin.Registry
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(&app{v: config.New(), registry: plugin.Global()})
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		if !errors.Is(err, errReported) {
			color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "partialgen [路径...]",
		Short: "根据 @Partial 注解生成结构体的部分类型与转换函数",
		Long:  longHelp(a.registry),
		Args:  cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		// 默认命令是 gen
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGen(cmd, args, false)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.BoolP("verbose", "v", false, "详细输出")
	flags.String("output", "", "默认输出路径（支持模板变量 $FILE, $PACKAGE），为空时使用 "+partialgen.DefaultOutput)
	flags.Bool("no-output", false, "忽略 output 配置，使用生成器默认输出文件")
	flags.Bool("async", true, "并发执行生成器")
	flags.Bool("no-color", false, "关闭彩色输出")
	flags.String("format", config.FormatText, "错误输出格式: text 或 json")
	flags.Int("workers", 0, "解析文件的并发数，0 表示 CPU 数")
	lo.ForEach([][2]string{
		{config.KeyVerbose, "verbose"},
		{config.KeyOutput, "output"},
		{config.KeyNoOutput, "no-output"},
		{config.KeyAsync, "async"},
		{config.KeyNoColor, "no-color"},
		{config.KeyFormat, "format"},
		{config.KeyWorkers, "workers"},
	}, func(kv [2]string, _ int) {
		_ = a.v.BindPFlag(kv[0], flags.Lookup(kv[1]))
	})

	root.AddCommand(
		&cobra.Command{
			Use:   "gen [路径...]",
			Short: "执行代码生成（默认）",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runGen(cmd, args, false)
			},
		},
		&cobra.Command{
			Use:   "check [路径...]",
			Short: "检查生成文件是否最新，不写入文件",
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.runGen(cmd, args, true)
			},
		},
		newDevCommand(a),
	)
	return root
}

// setup 加载配置并创建日志
func (a *app) setup() error {
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if cfg.NoColor {
		color.NoColor = true
	}
	a.logger = newLogger(cfg.Verbose)
	return nil
}

// newLogger 控制台日志，verbose 时输出 debug 级别
func newLogger(verbose bool) *zap.SugaredLogger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	encoder := zap.NewDevelopmentEncoderConfig()
	encoder.TimeKey = ""
	encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if color.NoColor {
		encoder.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoder), zapcore.Lock(os.Stderr), level)
	return zap.New(core).Sugar()
}

func patternsOf(args []string) []string {
	if len(args) == 0 {
		return []string{"./..."}
	}
	return args
}

func (a *app) runOptions(patterns []string) *plugin.RunOptions {
	return &plugin.RunOptions{
		Registry: a.registry,
		Patterns: patterns,
		Output:   a.cfg.OutputPath(),
		Async:    a.cfg.Async,
		Workers:  a.cfg.Workers,
		Logger:   a.logger,
	}
}

// runGen 执行生成；check 为 true 时只比较不写入
func (a *app) runGen(cmd *cobra.Command, args []string, check bool) error {
	defer func() { _ = a.logger.Sync() }()

	if a.cfg.Verbose {
		for _, gen := range a.registry.Generators() {
			anns := lo.Map(gen.Annotations(), func(item string, _ int) string { return "@" + item })
			a.logger.Debugf("已注册生成器 %s (%s)", gen.Name(), strings.Join(anns, ","))
		}
	}

	opts := a.runOptions(patternsOf(args))
	opts.Check = check
	stats, err := plugin.RunWithOptionsAndStats(cmd.Context(), opts)
	return a.report(cmd, stats, err, check)
}

// report 按配置的格式输出结果
func (a *app) report(cmd *cobra.Command, stats *plugin.RunStats, err error, check bool) error {
	if a.cfg.Format == config.FormatJSON {
		summary := report.NewSummary(stats, err)
		if writeErr := report.WriteJSON(cmd.OutOrStdout(), summary); writeErr != nil {
			return writeErr
		}
		if !summary.OK {
			return errReported
		}
		return nil
	}

	printer := report.NewPrinter(cmd.ErrOrStderr(), a.cfg.NoColor)
	if stats != nil {
		printer.Stale(stats.Stale)
	}
	if err != nil {
		if !errors.Is(err, plugin.ErrStale) {
			printer.Errors(err)
		}
		return errReported
	}

	if stats == nil {
		return nil
	}
	if check {
		printer.Success("%d 个生成文件均为最新", len(stats.Files))
	} else if stats.FileCount > 0 || a.cfg.Verbose {
		printer.Success("扫描 %d 个目标, 生成 %d 个文件", stats.TargetCount, stats.FileCount)
	}
	a.logger.Debugf("耗时: 扫描 %v, 生成 %v, 总计 %v", stats.ScanDuration, stats.GenerateDuration, stats.TotalDuration)
	return nil
}

func longHelp(registry *plugin.Registry) string {
	var b strings.Builder
	b.WriteString(`partialgen - 结构体部分类型生成工具

路径:
  支持 Go 包路径模式，如:
    ./...          递归扫描当前目录及子目录（默认）
    ./models/...   递归扫描 models 目录
    ./models       只扫描 models 目录
`)
	if len(registry.Generators()) > 0 {
		b.WriteString("\n支持的注解:\n")
		b.WriteString(plugin.FormatHelpText(registry))
	}
	fmt.Fprintf(&b, `
模板变量:
  $FILE     - 源文件名（不含 .go 后缀）
  $PACKAGE  - 包名

配置:
  当前目录下的 partialgen.yaml 与 PARTIALGEN_* 环境变量，命令行参数优先

示例:
  partialgen                            扫描当前目录（默认 ./...）
  partialgen -v ./models/...            详细模式扫描 models 目录
  partialgen --output %s ./...   指定输出文件名
  partialgen check ./...                检查生成文件是否最新
  partialgen --format json check ./...  以 JSON 输出检查结果
  partialgen dev ./...                  开发模式，监听文件变动
`, "'$FILE_gen'")
	return b.String()
}
