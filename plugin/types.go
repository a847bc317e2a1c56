package plugin

import (
	"go/ast"
	"go/token"
	"path/filepath"
	"sort"

	"github.com/donutnomad/gg"
	"go.uber.org/zap"
)

// TargetKind 表示注解目标的类型
type TargetKind int

const (
	TargetStruct TargetKind = iota + 1 // 结构体
	TargetType                         // 其他类型声明（命名类型、别名、接口）
)

func (k TargetKind) String() string {
	switch k {
	case TargetStruct:
		return "struct"
	case TargetType:
		return "type"
	default:
		return "unknown"
	}
}

// ParamDef 注解参数（子句）的说明，用于帮助文本
type ParamDef struct {
	Name        string // 参数名称
	Required    bool   // 是否必填
	Default     string // 默认值（如果不是必填）
	Description string // 参数描述
}

// Annotation 表示解析后的注解
type Annotation struct {
	Name     string         // 注解名称，如 "Partial"
	Args     string         // 括号内的原文，不含外层括号
	HasArgs  bool           // 是否带括号
	Unclosed bool           // 括号未闭合
	Raw      string         // 原始注解文本
	Pos      token.Position // '@' 的位置
	ArgsPos  token.Position // 括号内第一个字符的位置
}

// Target 表示注解的目标
type Target struct {
	Kind        TargetKind     // 目标类型
	Name        string         // 类型名
	PackageName string         // 包名
	FilePath    string         // 文件路径
	Position    token.Position // 类型名位置

	// AST 节点，供生成器深度解析时复用，避免重复读取文件
	Node *ast.TypeSpec
	File *ast.File
	Fset *token.FileSet
}

// AnnotatedTarget 表示带注解的目标
type AnnotatedTarget struct {
	Target      *Target       // 目标信息
	Annotations []*Annotation // 注解列表，按源码顺序
}

// ScanResult 表示扫描结果
type ScanResult struct {
	Structs []*AnnotatedTarget // 带注解的结构体
	Types   []*AnnotatedTarget // 带注解的非结构体类型

	// PackageConfigs 包级配置
	// key: 包目录
	PackageConfigs map[string]*PackageConfig
}

// All 返回所有带注解的目标，按文件路径和源码位置排序
func (r *ScanResult) All() []*AnnotatedTarget {
	result := make([]*AnnotatedTarget, 0, len(r.Structs)+len(r.Types))
	result = append(result, r.Structs...)
	result = append(result, r.Types...)
	sortTargets(result)
	return result
}

// ByAnnotation 按注解名称过滤
func (r *ScanResult) ByAnnotation(name string) []*AnnotatedTarget {
	var result []*AnnotatedTarget
	for _, t := range r.All() {
		if HasAnnotation(t.Annotations, name) {
			result = append(result, t)
		}
	}
	return result
}

func sortTargets(targets []*AnnotatedTarget) {
	sort.SliceStable(targets, func(i, j int) bool {
		a, b := targets[i].Target, targets[j].Target
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		return a.Position.Offset < b.Position.Offset
	})
}

// GenerateContext 生成上下文，传递给 Generator
type GenerateContext struct {
	Targets        []*AnnotatedTarget        // 该 Generator 需要处理的目标
	PackageConfigs map[string]*PackageConfig // 包级配置，key: 包目录
	DefaultOutput  string                    // 命令行指定的默认输出路径（最低优先级）
	Logger         *zap.SugaredLogger
}

// GetPackageConfig 获取文件所在包的配置
func (c *GenerateContext) GetPackageConfig(filePath string) *PackageConfig {
	if c.PackageConfigs == nil {
		return nil
	}
	return c.PackageConfigs[filepath.Dir(filePath)]
}

// Log 返回日志记录器，未设置时返回空实现
func (c *GenerateContext) Log() *zap.SugaredLogger {
	if c.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return c.Logger
}

// GenerateResult 生成结果
// Generator 返回 gg 定义，由聚合器统一处理
type GenerateResult struct {
	// Definitions 是生成的 gg 定义
	// key: 输出文件路径
	Definitions map[string]*gg.Generator

	// Errors 错误列表
	Errors []error

	// Skipped 跳过的数量
	Skipped int
}

// PackageConfig 包级生成配置
// 通过 // go:gogen: 注释定义
// 示例:
//
//	// go:gogen: -output `$FILE_types`
//	// go:gogen: plugin:partialgen -output `partial_generated`
type PackageConfig struct {
	PackageDir string // 包目录

	// DefaultOutput 默认输出路径（对所有插件生效）
	DefaultOutput string

	// PluginOutputs 插件特定的输出路径
	// key: 插件名（小写）, value: 输出路径
	PluginOutputs map[string]string
}

// GetPluginOutput 获取指定插件的输出路径
// 优先返回插件特定配置，其次返回默认配置，最后返回空字符串
func (c *PackageConfig) GetPluginOutput(pluginName string) string {
	if c == nil {
		return ""
	}
	if output, ok := c.PluginOutputs[pluginName]; ok {
		return output
	}
	return c.DefaultOutput
}

// NewGenerateResult 创建新的生成结果
func NewGenerateResult() *GenerateResult {
	return &GenerateResult{
		Definitions: make(map[string]*gg.Generator),
	}
}

// AddDefinition 添加 gg 定义
func (r *GenerateResult) AddDefinition(path string, gen *gg.Generator) {
	if r.Definitions == nil {
		r.Definitions = make(map[string]*gg.Generator)
	}
	r.Definitions[path] = gen
}

// AddError 添加错误
func (r *GenerateResult) AddError(err error) {
	r.Errors = append(r.Errors, err)
}

// HasErrors 检查是否有错误
func (r *GenerateResult) HasErrors() bool {
	return len(r.Errors) > 0
}
