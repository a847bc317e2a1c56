package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/donutnomad/gg"
	"github.com/donutnomad/partialgen/internal/utils"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// GeneratedHeader 生成文件的头部注释
const GeneratedHeader = "Code generated by partialgen. DO NOT EDIT."

// Run 运行代码生成
// 1. 扫描指定路径的注解
// 2. 将目标分发给对应的生成器
// 3. 执行生成器
// 4. 合并同一文件的 gg 定义并写入文件
func Run(ctx context.Context, registry *Registry, patterns ...string) error {
	opts := &RunOptions{
		Registry: registry,
		Patterns: patterns,
	}
	return RunWithOptions(ctx, opts)
}

// RunGlobal 使用全局注册表运行
func RunGlobal(ctx context.Context, patterns ...string) error {
	return Run(ctx, globalRegistry, patterns...)
}

// RunOptions 运行选项
type RunOptions struct {
	Registry *Registry
	Patterns []string
	Output   string // 命令行指定的默认输出路径（最低优先级）
	Async    bool   // 是否并发执行生成器
	Check    bool   // 只比较不写入，输出过期文件的差异
	Workers  int    // 扫描并发数，<= 0 时使用 CPU 数
	Logger   *zap.SugaredLogger
}

// RunStats 运行统计信息
type RunStats struct {
	ScanDuration     time.Duration // 扫描耗时
	GenerateDuration time.Duration // 生成耗时
	TotalDuration    time.Duration // 总耗时
	TargetCount      int           // 目标数量
	FileCount        int           // 生成文件数量
	Files            []string      // 生成（或检查）的文件，按路径排序
	Stale            []StaleFile   // check 模式下内容过期的文件
}

// StaleFile 磁盘内容与生成结果不一致的文件
type StaleFile struct {
	Path string
	Diff string // unified diff，磁盘内容 -> 生成内容
}

// RunError 生成过程中收集的全部错误
type RunError struct {
	Errors []error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("生成过程中出现 %d 个错误", len(e.Errors))
}

func (e *RunError) Unwrap() []error {
	return e.Errors
}

// ErrStale check 模式下存在过期文件
var ErrStale = errors.New("生成文件已过期")

// RunWithOptions 带选项运行
func RunWithOptions(ctx context.Context, opts *RunOptions) error {
	_, err := RunWithOptionsAndStats(ctx, opts)
	return err
}

// RunWithOptionsAndStats 带选项运行并返回统计信息
func RunWithOptionsAndStats(ctx context.Context, opts *RunOptions) (*RunStats, error) {
	totalStart := time.Now()
	stats := &RunStats{}

	registry := opts.Registry
	if registry == nil {
		registry = globalRegistry
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	// 获取所有已注册的注解
	annotations := registry.Annotations()
	if len(annotations) == 0 {
		return nil, fmt.Errorf("没有已注册的生成器")
	}

	// 扫描
	scanStart := time.Now()
	scanner := NewScanner(
		WithAnnotationFilter(annotations...),
		WithScannerLogger(logger),
		WithWorkers(opts.Workers),
	)
	result, err := scanner.Scan(ctx, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("扫描失败: %w", err)
	}
	stats.ScanDuration = time.Since(scanStart)

	all := result.All()
	if len(all) == 0 {
		logger.Info("没有找到任何带注解的目标")
		stats.TotalDuration = time.Since(totalStart)
		return stats, nil
	}

	stats.TargetCount = len(all)
	logger.Debugw("扫描完成", "targets", stats.TargetCount, "duration", stats.ScanDuration)

	generateStart := time.Now()

	// 分发目标
	dispatch := registry.DispatchTargets(result)

	// 按优先级排序生成器名称（优先级数字越小越靠前）
	genNames := lo.Keys(dispatch)
	slices.SortFunc(genNames, func(a, b string) int {
		genA, _ := registry.GetByName(a)
		genB, _ := registry.GetByName(b)
		if genA.Priority() != genB.Priority() {
			return genA.Priority() - genB.Priority()
		}
		return strings.Compare(a, b)
	})

	// genResultItem 存储单个生成器的执行结果
	type genResultItem struct {
		genName string
		result  *GenerateResult
		err     error
	}

	executeGenerator := func(genName string) genResultItem {
		targets := dispatch[genName]
		gen, ok := registry.GetByName(genName)
		if !ok {
			return genResultItem{genName: genName}
		}

		genCtx := &GenerateContext{
			Targets:        targets,
			PackageConfigs: result.PackageConfigs,
			DefaultOutput:  opts.Output,
			Logger:         logger.Named(genName),
		}

		start := time.Now()
		genResult, err := gen.Generate(genCtx)
		logger.Debugw("执行生成器", "generator", genName, "targets", len(targets), "duration", time.Since(start))

		return genResultItem{genName: genName, result: genResult, err: err}
	}

	var allErrors []error
	genResults := make(map[string]*GenerateResult)
	collect := func(item genResultItem) {
		if item.err != nil {
			allErrors = append(allErrors, fmt.Errorf("生成器 %s 执行失败: %w", item.genName, item.err))
			return
		}
		if item.result != nil {
			genResults[item.genName] = item.result
		}
	}

	if opts.Async {
		resultChan := make(chan genResultItem, len(genNames))
		var wg sync.WaitGroup
		for _, genName := range genNames {
			wg.Add(1)
			go func(genName string) {
				defer wg.Done()
				resultChan <- executeGenerator(genName)
			}(genName)
		}
		go func() {
			wg.Wait()
			close(resultChan)
		}()
		for item := range resultChan {
			collect(item)
		}
	} else {
		for _, genName := range genNames {
			collect(executeGenerator(genName))
		}
	}

	// 按优先级顺序收集 gg 定义，按文件分组
	fileDefinitions := make(map[string][]*gg.Generator)
	fileGenNames := make(map[string][]string)
	for _, genName := range genNames {
		genResult, ok := genResults[genName]
		if !ok {
			continue
		}
		for path, def := range genResult.Definitions {
			fileDefinitions[path] = append(fileDefinitions[path], def)
			fileGenNames[path] = append(fileGenNames[path], genName)
		}
		allErrors = append(allErrors, genResult.Errors...)
	}

	paths := lo.Keys(fileDefinitions)
	sort.Strings(paths)
	for _, path := range paths {
		merged, err := mergeDefinitionsWithSeparator(fileDefinitions[path], fileGenNames[path])
		if err != nil {
			allErrors = append(allErrors, fmt.Errorf("合并文件 %s 的定义失败: %w", path, err))
			continue
		}
		stats.Files = append(stats.Files, path)

		if opts.Check {
			stale, err := checkGGFile(path, merged)
			if err != nil {
				allErrors = append(allErrors, fmt.Errorf("检查文件 %s 失败: %w", path, err))
			} else if stale != nil {
				stats.Stale = append(stats.Stale, *stale)
			}
			continue
		}

		if err := writeGGFile(path, merged); err != nil {
			allErrors = append(allErrors, fmt.Errorf("写入文件 %s 失败: %w", path, err))
			continue
		}
		stats.FileCount++
		logger.Infow("生成文件", "path", path)
	}

	stats.GenerateDuration = time.Since(generateStart)
	stats.TotalDuration = time.Since(totalStart)

	if len(allErrors) > 0 {
		return stats, &RunError{Errors: allErrors}
	}
	if len(stats.Stale) > 0 {
		return stats, fmt.Errorf("%w: %d 个文件", ErrStale, len(stats.Stale))
	}
	return stats, nil
}

// mergeDefinitionsWithSeparator 合并多个 gg.Generator 定义到一个文件
// 多个生成器写同一文件时，每段前添加分隔符
func mergeDefinitionsWithSeparator(definitions []*gg.Generator, genNames []string) (*gg.Generator, error) {
	if len(definitions) == 0 {
		return nil, fmt.Errorf("没有定义需要合并")
	}

	merged := gg.New()

	var pkgName string
	for _, def := range definitions {
		if def.PackageName() == "" {
			continue
		}
		if pkgName == "" {
			pkgName = def.PackageName()
		} else if pkgName != def.PackageName() {
			return nil, fmt.Errorf("包名不一致: %s vs %s", pkgName, def.PackageName())
		}
	}
	if pkgName != "" {
		merged.SetPackage(pkgName)
	}

	// 不要手动收集 imports，Merge 会正确处理 imports 和别名
	for i, def := range definitions {
		if len(definitions) > 1 {
			genName := "unknown"
			if i < len(genNames) {
				genName = genNames[i]
			}
			merged.Body().AddLine()
			merged.Body().AddString(fmt.Sprintf("// ================ %s ================", genName))
			merged.Body().AddLine()
		}
		merged.Merge(def)
	}

	return merged, nil
}

// FileBytes 生成文件的完整内容
// 头部注释与 package 子句之间空一行，避免被当作包文档
func FileBytes(gen *gg.Generator) []byte {
	header := "// " + GeneratedHeader + "\n\n"
	return append([]byte(header), gen.Bytes()...)
}

// writeGGFile 将 gg 定义写入文件
func writeGGFile(path string, gen *gg.Generator) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return utils.WriteFormat(path, FileBytes(gen))
}

// checkGGFile 比较磁盘内容与生成内容，不一致时返回 diff
func checkGGFile(path string, gen *gg.Generator) (*StaleFile, error) {
	want, err := utils.FormatSource(path, FileBytes(gen))
	if err != nil {
		return nil, err
	}

	got, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if bytes.Equal(got, want) {
		return nil, nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(got)),
		B:        difflib.SplitLines(string(want)),
		FromFile: path + " (磁盘)",
		ToFile:   path + " (生成)",
		Context:  3,
	})
	if err != nil {
		return nil, err
	}
	return &StaleFile{Path: path, Diff: diff}, nil
}

// GetOutputPath 根据配置计算输出路径
// 优先级：包级插件配置 > 包级默认配置 > 命令行参数 > 默认文件名
// 模板变量：
//   - $FILE: 源文件名（不含 .go 后缀）
//   - $PACKAGE: 包名
func GetOutputPath(target *Target, defaultFileName string, pkgConfig *PackageConfig, pluginName string, cmdOutput string) string {
	var output string

	if pkgConfig != nil {
		output = pkgConfig.GetPluginOutput(strings.ToLower(pluginName))
	}
	if output == "" {
		output = cmdOutput
	}
	if output == "" {
		return GetDefaultOutputPath(target, defaultFileName)
	}

	output = replaceTemplateVars(output, target)
	if !strings.HasSuffix(output, ".go") {
		output += ".go"
	}

	if filepath.IsAbs(output) {
		return output
	}
	// 相对于源文件目录
	return filepath.Join(filepath.Dir(target.FilePath), output)
}

// replaceTemplateVars 替换模板变量
func replaceTemplateVars(template string, target *Target) string {
	fileName := strings.TrimSuffix(filepath.Base(target.FilePath), ".go")
	template = strings.ReplaceAll(template, "$FILE", fileName)
	template = strings.ReplaceAll(template, "$PACKAGE", target.PackageName)
	return template
}

// GetDefaultOutputPath 获取默认输出路径，文件名支持模板变量
func GetDefaultOutputPath(target *Target, defaultFileName string) string {
	if defaultFileName == "" {
		defaultFileName = "generate.go"
	}
	defaultFileName = replaceTemplateVars(defaultFileName, target)
	return filepath.Join(filepath.Dir(target.FilePath), defaultFileName)
}
