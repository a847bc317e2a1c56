package main

import (
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/donutnomad/partialgen/internal/config"
	"github.com/donutnomad/partialgen/internal/report"
	"github.com/donutnomad/partialgen/internal/utils"
	"github.com/donutnomad/partialgen/plugin"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// devRunner 处理文件变动的核心逻辑
type devRunner struct {
	app      *app
	watcher  *fsnotify.Watcher
	scanner  *plugin.Scanner
	debounce time.Duration
	logger   *zap.SugaredLogger
	printer  *report.Printer
	ctx      context.Context // 用于响应退出信号
	generate func(pkgDir string)

	// 防抖动相关
	mu          sync.Mutex
	pendingDirs map[string]*time.Timer // key: 包目录路径
	wg          sync.WaitGroup
}

func newDevCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev [路径...]",
		Short: "开发模式，监听文件变动自动生成",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDev(cmd.Context(), patternsOf(args))
		},
	}
	cmd.Flags().Duration("debounce", time.Second, "文件变动后等待的时间")
	_ = a.v.BindPFlag(config.KeyDebounce, cmd.Flags().Lookup("debounce"))
	return cmd
}

// runDev 启动开发模式，ctx 取消时退出
func (a *app) runDev(ctx context.Context, patterns []string) error {
	defer func() { _ = a.logger.Sync() }()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听器失败: %w", err)
	}
	defer watcher.Close()

	scanner := plugin.NewScanner(
		plugin.WithAnnotationFilter(a.registry.Annotations()...),
		plugin.WithWorkers(a.cfg.Workers),
		plugin.WithScannerLogger(a.logger),
	)
	runner := &devRunner{
		app:      a,
		watcher:  watcher,
		scanner:  scanner,
		debounce: a.cfg.Debounce,
		logger:   a.logger.Named("dev"),
		printer:  report.NewPrinter(os.Stderr, a.cfg.NoColor),
		ctx:      ctx,

		pendingDirs: make(map[string]*time.Timer),
	}
	runner.generate = runner.runGenerate
	defer runner.stop()

	dirs, err := collectWatchDirs(patterns)
	if err != nil {
		return fmt.Errorf("收集监听目录失败: %w", err)
	}
	if len(dirs) == 0 {
		return fmt.Errorf("没有找到需要监听的目录")
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("添加监听目录失败 %s: %w", dir, err)
		}
		runner.logger.Debugw("监听目录", "dir", dir)
	}

	runner.logger.Infof("开发模式已启动，监听 %d 个目录，按 Ctrl+C 退出", len(dirs))
	return runner.watchLoop()
}

// stop 停止所有待处理的定时器并等待正在执行的生成
func (r *devRunner) stop() {
	r.mu.Lock()
	for dir, timer := range r.pendingDirs {
		if timer.Stop() {
			r.wg.Done()
		}
		delete(r.pendingDirs, dir)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// watchLoop 事件处理循环
func (r *devRunner) watchLoop() error {
	for {
		select {
		case <-r.ctx.Done():
			r.logger.Info("正在退出...")
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			r.handleEvent(event)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warnw("监听错误", "error", err)
		}
	}
}

// handleEvent 处理文件事件
func (r *devRunner) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	filePath := event.Name
	if !strings.HasSuffix(filePath, ".go") || strings.HasSuffix(filePath, "_test.go") {
		return
	}
	if isGeneratedFile(filePath) {
		return
	}
	r.logger.Debugw("检测到文件变化", "file", filePath)

	hasAnnotation, err := r.scanner.QuickMatchFile(filePath)
	if err != nil {
		r.logger.Debugw("检查注解失败", "file", filePath, "error", err)
		return
	}
	if !hasAnnotation {
		r.logger.Debugw("跳过文件（无注解）", "file", filePath)
		return
	}

	if err := checkSyntax(filePath); err != nil {
		r.logger.Warnw("语法错误，等待下次保存", "file", filePath, "error", err)
		return
	}

	r.scheduleGenerate(filepath.Dir(filePath))
}

// scheduleGenerate 防抖动调度生成
func (r *devRunner) scheduleGenerate(pkgDir string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, exists := r.pendingDirs[pkgDir]; exists && timer.Stop() {
		r.wg.Done()
	}

	r.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(r.debounce, func() {
		r.fire(pkgDir, timer)
	})
	r.pendingDirs[pkgDir] = timer
}

// fire 定时器到期后执行生成
// 只移除自己的记录，到期期间登记的新定时器保留
func (r *devRunner) fire(pkgDir string, timer *time.Timer) {
	defer r.wg.Done()

	r.mu.Lock()
	if r.pendingDirs[pkgDir] == timer {
		delete(r.pendingDirs, pkgDir)
	}
	r.mu.Unlock()

	if r.ctx.Err() != nil {
		return
	}
	r.generate(pkgDir)
}

// runGenerate 只生成变动的包
func (r *devRunner) runGenerate(pkgDir string) {
	r.logger.Debugw("触发代码生成", "dir", pkgDir)

	stats, err := plugin.RunWithOptionsAndStats(r.ctx, r.app.runOptions([]string{pkgDir}))
	if err != nil {
		r.printer.Errors(err)
		return
	}
	if stats != nil && stats.FileCount > 0 {
		r.printer.Success("生成完成: %d 个文件 (耗时: %v)", stats.FileCount, stats.TotalDuration)
	}
}

// checkSyntax 检查文件语法，避免保存到一半的文件触发生成
func checkSyntax(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	_, err = utils.FormatSource(filePath, content)
	return err
}

// isGeneratedFile 带有 "Code generated ... DO NOT EDIT." 头的文件
func isGeneratedFile(filePath string) bool {
	file, err := parser.ParseFile(token.NewFileSet(), filePath, nil, parser.PackageClauseOnly|parser.ParseComments)
	return err == nil && ast.IsGenerated(file)
}

// collectWatchDirs 收集所有需要监听的目录
func collectWatchDirs(patterns []string) ([]string, error) {
	var dirs []string
	seen := make(map[string]bool)
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		baseDir := strings.TrimSuffix(pattern, "/...")
		if baseDir == "" {
			baseDir = "."
		}

		absDir, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absDir)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Dir(absDir))
			continue
		}
		if !recursive {
			add(absDir)
			continue
		}

		err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			// 跳过隐藏目录、vendor 和 testdata
			name := d.Name()
			if path != absDir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return dirs, nil
}
