package partialgen

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/donutnomad/partialgen/internal/structparse"
	"github.com/donutnomad/partialgen/plugin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	generatorName  = "partialgen"
	annotationName = "Partial"

	// DefaultOutput 默认输出文件名，$FILE 为源文件名
	DefaultOutput = "$FILE_partial.go"
)

// PartialGenerator 实现 plugin.Generator 接口，处理 @Partial 注解
type PartialGenerator struct {
	plugin.BaseGenerator
}

// NewPartialGenerator 创建 Partial 生成器
func NewPartialGenerator() *PartialGenerator {
	gen := &PartialGenerator{
		BaseGenerator: *plugin.NewBaseGeneratorWithParams(
			generatorName,
			[]string{annotationName},
			[]plugin.TargetKind{plugin.TargetStruct, plugin.TargetType},
			[]plugin.ParamDef{
				{Name: `"Name"`, Default: "Partial<类型名>", Description: "生成的部分类型名，必须是合法的 Go 标识符"},
				{Name: "derive(A, B)", Description: "在生成类型的注释中添加 @A @B 标记，供其他生成器使用"},
				{Name: "omit(f1, f2)", Description: "从部分类型中移除的字段，还原时作为参数传入"},
				{Name: "optional(f3)", Description: "包装为 mo.Option 的字段，还原时可提供备用值"},
			},
		),
	}
	gen.SetPriority(40)
	return gen
}

// Examples 帮助文本中的示例
func (g *PartialGenerator) Examples() []string {
	return []string{
		`@Partial(omit(id, password))`,
		`@Partial("UserPatch", derive(Validate), omit(id), optional(name, email))`,
	}
}

// targetUnit 一个结构体的生成单元
type targetUnit struct {
	packageName string
	typeName    string
	plans       []*Plan
}

// Generate 执行代码生成
// 结构体之间互不影响：某个结构体的诊断只跳过该结构体
func (g *PartialGenerator) Generate(ctx *plugin.GenerateContext) (*plugin.GenerateResult, error) {
	result := plugin.NewGenerateResult()
	logger := ctx.Log()
	parseCtx := structparse.NewParseContext()

	fileTargets := make(map[string][]*targetUnit)

	for _, at := range ctx.Targets {
		anns := plugin.FilterByNames(at.Annotations, annotationName)
		if len(anns) == 0 {
			continue
		}

		if at.Target.Kind != plugin.TargetStruct {
			result.AddError(unsupportedTarget(at.Target, anns))
			result.Skipped++
			continue
		}

		info, err := parseTarget(parseCtx, at.Target)
		if err != nil {
			result.AddError(fmt.Errorf("[%s] 解析结构体 %s 失败: %w", annotationName, at.Target.Name, err))
			result.Skipped++
			continue
		}

		plans, err := Emit(info, anns)
		if err != nil {
			result.AddError(err)
			result.Skipped++
			continue
		}
		if logger.Desugar().Core().Enabled(zap.DebugLevel) {
			logger.Debugf("%s 的 @%s 配置:\n%s", info.Name, annotationName, spew.Sdump(lo.Map(plans, func(p *Plan, _ int) *Config { return p.Config })))
		}

		pkgConfig := ctx.GetPackageConfig(at.Target.FilePath)
		outputPath := plugin.GetOutputPath(at.Target, DefaultOutput, pkgConfig, generatorName, ctx.DefaultOutput)
		fileTargets[outputPath] = append(fileTargets[outputPath], &targetUnit{
			packageName: at.Target.PackageName,
			typeName:    at.Target.Name,
			plans:       plans,
		})

		logger.Debugw("处理结构体",
			"type", at.Target.Name,
			"partials", lo.Map(plans, func(p *Plan, _ int) string { return p.Names.Target }),
			"output", outputPath,
		)
	}

	outputPaths := lo.Keys(fileTargets)
	slices.Sort(outputPaths)

	for _, outputPath := range outputPaths {
		units := fileTargets[outputPath]
		slices.SortFunc(units, func(a, b *targetUnit) int {
			return strings.Compare(a.typeName, b.typeName)
		})

		packages := lo.Uniq(lo.Map(units, func(u *targetUnit, _ int) string { return u.packageName }))
		if len(packages) > 1 {
			result.AddError(fmt.Errorf("输出文件 %s 收到多个包的结构体: %s", outputPath, strings.Join(packages, ", ")))
			continue
		}

		plans := lo.FlatMap(units, func(u *targetUnit, _ int) []*Plan { return u.plans })
		def, err := buildDefinition(packages[0], plans)
		if err != nil {
			result.AddError(err)
			result.Skipped += len(units)
			continue
		}
		result.AddDefinition(outputPath, def)
	}

	return result, nil
}

// parseTarget 优先复用扫描阶段的 AST
func parseTarget(parseCtx *structparse.ParseContext, target *plugin.Target) (*structparse.StructInfo, error) {
	if target.File != nil && target.Fset != nil {
		return parseCtx.ParseStructFromFile(target.Fset, target.File, target.FilePath, target.Name)
	}
	return parseCtx.ParseStruct(filepath.Clean(target.FilePath), target.Name)
}
