package partialgen

import (
	"github.com/donutnomad/gg"
	"github.com/donutnomad/partialgen/internal/structparse"
	"github.com/donutnomad/partialgen/internal/utils"
	"github.com/donutnomad/partialgen/plugin"
)

// Emit 对一个结构体上的全部 @Partial 注解依次执行解析、命名、分类与合成
// 配置之间互不共享状态；任意配置失败时返回该结构体全部配置的诊断，不返回计划
func Emit(src *structparse.StructInfo, anns []*plugin.Annotation) ([]*Plan, error) {
	if src.Generic {
		d := newDiagnostic(UnsupportedError, src.Pos, -1, "不支持带类型参数的结构体 %s", src.Name)
		return nil, Diagnostics{d}.withType(src.Name)
	}

	var (
		ds    Diagnostics
		plans []*Plan
		// 已生成的名称 -> 首次出现的配置
		claimed = make(map[string]*Config)
	)

	for i, ann := range anns {
		cfg, cfgDs := ParseConfig(ann, i)
		if len(cfgDs) > 0 {
			ds = append(ds, cfgDs...)
			continue
		}

		names := DeriveNames(src.Name, cfg)
		collisions := checkNameCollisions(cfg, names, claimed)
		ds = append(ds, collisions...)

		plan, planDs := buildPlan(src, cfg, names)
		ds = append(ds, planDs...)
		if len(collisions) == 0 && len(planDs) == 0 {
			plans = append(plans, plan)
		}
	}

	if len(ds) > 0 {
		return nil, ds.withType(src.Name)
	}
	return plans, nil
}

// checkNameCollisions 生成的类型名与拆分方法名在同一结构体的配置之间必须唯一，且不能与源结构体同名
// 冲突报告在后出现的配置上
func checkNameCollisions(cfg *Config, names Names, claimed map[string]*Config) Diagnostics {
	pos := cfg.Pos
	if cfg.TargetName.IsPresent() {
		pos = cfg.TargetPos
	}

	var ds Diagnostics
	for _, name := range append(names.TypeNames(), names.ForwardMethod) {
		if name == names.Full {
			d := newDiagnostic(NameCollisionError, pos, cfg.Index, "生成的类型 %s 与源结构体同名", name)
			d.Clause = clauseTarget
			d.Ident = name
			d.Hint = "通过 @Partial(\"Name\") 指定其他名称"
			ds = append(ds, d)
			continue
		}
		if prev, ok := claimed[name]; ok {
			d := newDiagnostic(NameCollisionError, pos, cfg.Index,
				"生成的名称 %s 与第 %d 个 @Partial 冲突", name, prev.Index+1)
			d.Clause = clauseTarget
			d.Ident = name
			d.Hint = "为每个 @Partial 指定不同的目标类型名"
			ds = append(ds, d)
			continue
		}
		claimed[name] = cfg
	}
	return ds
}

// buildDefinition 为同一输出文件的计划生成 gg 定义
// 每个计划依次输出：部分类型、Omitted 类型、还原方法、构造函数、拆分函数、拆分方法
func buildDefinition(packageName string, plans []*Plan) (*gg.Generator, error) {
	imports, ds := sortedImports(plans)
	if len(ds) > 0 {
		return nil, ds
	}

	gen := gg.New()
	gen.SetPackage(packageName)

	for _, spec := range imports {
		if spec.Alias != "" {
			gen.PAlias(spec.Path, spec.Alias)
		} else {
			gen.P(spec.Path)
		}
	}

	group := gen.Body()
	for _, plan := range plans {
		buildPartialStruct(group, plan)
		buildOmittedStruct(group, plan)
		buildReconstructMethod(group, plan)
		buildFromFullFunc(group, plan)
		buildSplitFunc(group, plan)
		buildForwardMethod(group, plan)
	}
	return gen, nil
}

// unsupportedTarget 非结构体目标的诊断
func unsupportedTarget(target *plugin.Target, anns []*plugin.Annotation) *Diagnostic {
	pos := target.Position
	index := -1
	if len(anns) > 0 {
		pos, index = anns[0].Pos, 0
	}
	d := newDiagnostic(UnsupportedError, pos, index, "@%s 只能用于结构体，%s 不是结构体", annotationName, target.Name)
	d.Type = target.Name
	return d
}

// GenerateSource 为单个结构体生成格式化后的完整源文件
func GenerateSource(src *structparse.StructInfo, anns []*plugin.Annotation) ([]byte, error) {
	plans, err := Emit(src, anns)
	if err != nil {
		return nil, err
	}
	gen, err := buildDefinition(src.PackageName, plans)
	if err != nil {
		return nil, err
	}
	return utils.FormatSource(utils.ToSnakeCase(src.Name)+"_partial.go", plugin.FileBytes(gen))
}
