package plugin

import (
	"bufio"
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Scanner 两阶段并行注解扫描器
// 第一阶段：快速文本匹配，找出可能包含注解的文件
// 第二阶段：对匹配的文件进行 AST 解析
type Scanner struct {
	workers int
	logger  *zap.SugaredLogger

	// 注解过滤器（可选）
	annotationFilter []string
}

// ScannerOption 扫描器选项
type ScannerOption func(*Scanner)

// WithWorkers 解析阶段的并发数，n <= 0 时使用 CPU 数
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithScannerLogger(logger *zap.SugaredLogger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithAnnotationFilter(annotations ...string) ScannerOption {
	return func(s *Scanner) {
		s.annotationFilter = annotations
	}
}

func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers: runtime.NumCPU(),
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// quickMatchRegex 快速匹配注解名
var quickMatchRegex = regexp.MustCompile(`@(\w+)`)

// Scan 扫描指定路径
// 支持: ./... ./pkg/... ./pkg /abs/path/... file.go
func (s *Scanner) Scan(ctx context.Context, patterns ...string) (*ScanResult, error) {
	allFiles, err := s.collectFiles(patterns)
	if err != nil {
		return nil, err
	}

	empty := &ScanResult{PackageConfigs: make(map[string]*PackageConfig)}
	if len(allFiles) == 0 {
		return empty, nil
	}

	// ========== 第一阶段：快速匹配 ==========
	matchedFiles := s.quickMatch(ctx, allFiles)
	s.logger.Debugw("快速匹配完成", "files", len(allFiles), "matched", len(matchedFiles))
	if len(matchedFiles) == 0 {
		return empty, ctx.Err()
	}

	// ========== 第二阶段：AST 解析 ==========
	return s.parseFiles(ctx, matchedFiles)
}

// runWorkers 用固定数量的工作者并行处理文件
func runWorkers[T any](ctx context.Context, workers int, files []string, fn func(string) T) []T {
	fileCh := make(chan string)
	resultCh := make(chan T, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range fileCh {
				resultCh <- fn(file)
			}
		}()
	}

	go func() {
		defer close(fileCh)
		for _, file := range files {
			select {
			case <-ctx.Done():
				return
			case fileCh <- file:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]T, 0, len(files))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}

// quickMatch 第一阶段：快速文本匹配
// 并行读取文件，检查是否包含 @xxx 模式，返回的文件保持输入顺序
func (s *Scanner) quickMatch(ctx context.Context, files []string) []string {
	type matchResult struct {
		file    string
		matched bool
	}

	results := runWorkers(ctx, s.workers, files, func(file string) matchResult {
		matched, err := s.QuickMatchFile(file)
		if err != nil {
			s.logger.Debugw("读取文件失败", "file", file, "error", err)
		}
		return matchResult{file: file, matched: matched}
	})

	matched := make(map[string]bool, len(results))
	for _, r := range results {
		matched[r.file] = r.matched
	}

	var matchedFiles []string
	for _, file := range files {
		if matched[file] {
			matchedFiles = append(matchedFiles, file)
		}
	}
	return matchedFiles
}

// QuickMatchFile 快速检查文件是否包含注解或 go:gogen 配置
// 用于 dev 模式判断文件是否需要触发代码生成
func (s *Scanner) QuickMatchFile(filePath string) (bool, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		trimmed := strings.TrimSpace(scanner.Text())
		// 只检查注释行
		if !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "/*") && !strings.HasPrefix(trimmed, "*") {
			continue
		}

		// 检查 go:gogen: 配置（支持 //go:gogen: 和 // go:gogen:）
		if strings.Contains(trimmed, "go:gogen:") {
			return true, nil
		}

		for _, match := range quickMatchRegex.FindAllStringSubmatch(trimmed, -1) {
			if len(s.annotationFilter) == 0 {
				return true, nil
			}
			for _, filter := range s.annotationFilter {
				if match[1] == filter {
					return true, nil
				}
			}
		}
	}

	return false, scanner.Err()
}

// fileResult 单个文件的解析结果
type fileResult struct {
	filePath  string
	structs   []*AnnotatedTarget
	types     []*AnnotatedTarget
	pkgConfig *PackageConfig
	err       error
}

// parseFiles 第二阶段：AST 解析
func (s *Scanner) parseFiles(ctx context.Context, files []string) (*ScanResult, error) {
	results := runWorkers(ctx, s.workers, files, s.parseFile)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &ScanResult{
		PackageConfigs: make(map[string]*PackageConfig),
	}
	// 按文件路径排序后合并，包级配置冲突时的覆盖顺序与文件顺序一致
	sort.Slice(results, func(i, j int) bool {
		return results[i].filePath < results[j].filePath
	})
	for _, r := range results {
		if r.err != nil {
			s.logger.Warnw("解析文件失败", "file", r.filePath, "error", r.err)
			continue
		}
		result.Structs = append(result.Structs, r.structs...)
		result.Types = append(result.Types, r.types...)
		if r.pkgConfig != nil {
			s.mergePackageConfig(result.PackageConfigs, r.pkgConfig)
		}
	}

	sortTargets(result.Structs)
	sortTargets(result.Types)
	return result, nil
}

// mergePackageConfig 合并同一个包中多个文件的 go:gogen 配置，后发现的覆盖先发现的
func (s *Scanner) mergePackageConfig(configs map[string]*PackageConfig, cfg *PackageConfig) {
	pkgDir := cfg.PackageDir
	existing, ok := configs[pkgDir]
	if !ok {
		configs[pkgDir] = cfg
		return
	}
	if cfg.DefaultOutput != "" {
		if existing.DefaultOutput != "" && existing.DefaultOutput != cfg.DefaultOutput {
			s.logger.Warnw("包中存在多个不同的 go:gogen 默认输出配置，使用后发现的配置", "package", pkgDir)
		}
		existing.DefaultOutput = cfg.DefaultOutput
	}
	for k, v := range cfg.PluginOutputs {
		if existingV, ok := existing.PluginOutputs[k]; ok && existingV != v {
			s.logger.Warnw("插件存在多个不同的输出配置，使用后发现的配置", "package", pkgDir, "plugin", k)
		}
		existing.PluginOutputs[k] = v
	}
}

// parseFile AST 解析单个文件
func (s *Scanner) parseFile(filePath string) (result fileResult) {
	result.filePath = filePath
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, nil, parser.ParseComments)
	if err != nil {
		result.err = err
		return
	}
	// 生成的文件不参与扫描
	if ast.IsGenerated(file) {
		return
	}

	// 解析包级 go:gogen: 配置
	result.pkgConfig = s.parsePackageConfig(file, filePath)

	for _, decl := range file.Decls {
		if d, ok := decl.(*ast.GenDecl); ok && d.Tok == token.TYPE {
			s.parseTypeDecl(fset, file, filePath, d, &result)
		}
	}

	return
}

// parseTypeDecl 解析类型声明
// type X struct{} 的注释挂在 GenDecl 上，type ( X struct{} ) 的注释挂在 TypeSpec 上
func (s *Scanner) parseTypeDecl(fset *token.FileSet, file *ast.File, filePath string, decl *ast.GenDecl, result *fileResult) {
	for _, spec := range decl.Specs {
		typeSpec, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}

		doc := typeSpec.Doc
		if doc == nil && len(decl.Specs) == 1 {
			doc = decl.Doc
		}
		annotations := ParseCommentGroup(fset, doc)
		if len(s.annotationFilter) > 0 {
			annotations = FilterByNames(annotations, s.annotationFilter...)
		}
		if len(annotations) == 0 {
			continue
		}

		target := &Target{
			Kind:        TargetType,
			Name:        typeSpec.Name.Name,
			PackageName: file.Name.Name,
			FilePath:    filePath,
			Position:    fset.Position(typeSpec.Name.Pos()),
			Node:        typeSpec,
			File:        file,
			Fset:        fset,
		}
		annotated := &AnnotatedTarget{Target: target, Annotations: annotations}

		if _, ok := typeSpec.Type.(*ast.StructType); ok && !typeSpec.Assign.IsValid() {
			target.Kind = TargetStruct
			result.structs = append(result.structs, annotated)
		} else {
			result.types = append(result.types, annotated)
		}
	}
}

// collectFiles 收集所有需要扫描的文件
func (s *Scanner) collectFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		recursive := strings.HasSuffix(pattern, "/...")
		if recursive {
			pattern = strings.TrimSuffix(pattern, "/...")
		}

		absPath, err := filepath.Abs(pattern)
		if err != nil {
			return nil, err
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if strings.HasSuffix(absPath, ".go") && !seen[absPath] {
				seen[absPath] = true
				files = append(files, absPath)
			}
			continue
		}

		err = filepath.WalkDir(absPath, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path == absPath {
					return nil
				}
				name := d.Name()
				if !recursive || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata" {
					return filepath.SkipDir
				}
				return nil
			}

			if strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// goGenRegex 匹配 go:gogen: 指令
// 支持两种格式：//go:gogen: 和 // go:gogen:
var goGenRegex = regexp.MustCompile(`go:gogen:\s*(.*)`)

// parsePackageConfig 解析包级 go:gogen: 配置
// 支持格式:
//
//	//go:gogen: -output `$FILE_types`
//	// go:gogen: plugin:partialgen -output `$FILE_partial` plugin:other -output `other_generated`
func (s *Scanner) parsePackageConfig(file *ast.File, filePath string) *PackageConfig {
	var gogenLines []string

	// 收集所有 go:gogen: 注释
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			text := strings.TrimPrefix(c.Text, "//")
			text = strings.TrimPrefix(text, "/*")
			text = strings.TrimSuffix(text, "*/")
			text = strings.TrimSpace(text)

			if matches := goGenRegex.FindStringSubmatch(text); len(matches) > 1 {
				gogenLines = append(gogenLines, matches[1])
			}
		}
	}

	if len(gogenLines) == 0 {
		return nil
	}

	// 检查是否有多个 go:gogen: 定义
	if len(gogenLines) > 1 {
		s.logger.Warnw("文件定义了多个 go:gogen: 指令，将被忽略", "file", filePath)
		return nil
	}

	return parseGogenLine(gogenLines[0], filePath)
}

// parseGogenLine 解析单行 go:gogen: 配置
// 格式:
//
//	-output `xxx`                                    // 默认输出
//	plugin:partialgen -output `xxx` plugin:other -output `yyy`  // 插件特定输出
func parseGogenLine(line string, filePath string) *PackageConfig {
	pkgDir := filepath.Dir(filePath)
	config := &PackageConfig{
		PackageDir:    pkgDir,
		PluginOutputs: make(map[string]string),
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	// 解析配置项
	// 使用简单的状态机解析
	parts := splitGogenArgs(line)

	var currentPlugin string
	for i := 0; i < len(parts); i++ {
		part := parts[i]

		if strings.HasPrefix(part, "plugin:") {
			// 切换到特定插件
			currentPlugin = strings.ToLower(strings.TrimPrefix(part, "plugin:"))
		} else if part == "-output" && i+1 < len(parts) {
			i++
			output := trimQuotes(parts[i])
			if currentPlugin == "" {
				config.DefaultOutput = output
			} else {
				config.PluginOutputs[currentPlugin] = output
			}
		}
	}

	// 如果没有任何配置，返回 nil
	if config.DefaultOutput == "" && len(config.PluginOutputs) == 0 {
		return nil
	}

	return config
}

// splitGogenArgs 分割 go:gogen 参数，支持引号内的空格
func splitGogenArgs(line string) []string {
	var parts []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(line); i++ {
		c := line[i]

		if !inQuote && (c == '`' || c == '"' || c == '\'') {
			inQuote = true
			quoteChar = c
			current.WriteByte(c)
		} else if inQuote && c == quoteChar {
			inQuote = false
			current.WriteByte(c)
			quoteChar = 0
		} else if !inQuote && c == ' ' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		} else {
			current.WriteByte(c)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// trimQuotes 去除引号
func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '`' && s[len(s)-1] == '`') ||
			(s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
