package partialgen

import (
	"go/token"
	"sort"

	"github.com/donutnomad/partialgen/internal/structparse"
	"github.com/samber/lo"
)

// optionImportPath 可选字段容器所在的包
const optionImportPath = "github.com/samber/mo"

// Plan 一个配置的完整合成计划
type Plan struct {
	Config *Config
	Names  Names
	Source *structparse.StructInfo
	Fields []ClassifiedField // 全部字段，源码顺序
}

// PartialFields 部分类型的字段：Kept 与 OptionalWrapped，源码顺序
func (p *Plan) PartialFields() []ClassifiedField {
	return lo.Filter(p.Fields, func(f ClassifiedField, _ int) bool { return f.Treatment != Omitted })
}

// OmittedFields Omitted 类型的字段，源码顺序
func (p *Plan) OmittedFields() []ClassifiedField {
	return p.fieldsBy(Omitted)
}

// OptionalFields 包装为 mo.Option 的字段，源码顺序
func (p *Plan) OptionalFields() []ClassifiedField {
	return p.fieldsBy(OptionalWrapped)
}

func (p *Plan) fieldsBy(t Treatment) []ClassifiedField {
	return lo.Filter(p.Fields, func(f ClassifiedField, _ int) bool { return f.Treatment == t })
}

// NeedsOption 是否引用 mo 包
func (p *Plan) NeedsOption() bool {
	return len(p.OptionalFields()) > 0
}

// buildPlan 分类字段并检查生成类型内部的冲突
func buildPlan(src *structparse.StructInfo, cfg *Config, names Names) (*Plan, Diagnostics) {
	fields, ds := Classify(src, cfg)
	if len(ds) > 0 {
		return nil, ds
	}

	plan := &Plan{Config: cfg, Names: names, Source: src, Fields: fields}
	if ds := checkFieldConflicts(plan); len(ds) > 0 {
		return nil, ds
	}
	return plan, nil
}

// checkFieldConflicts 导出后重名的字段，以及与生成方法同名的字段
func checkFieldConflicts(plan *Plan) Diagnostics {
	var ds Diagnostics
	index := plan.Config.Index

	// 部分类型与 Omitted 类型分别检查
	for _, group := range [][]ClassifiedField{plan.PartialFields(), plan.OmittedFields()} {
		first := make(map[string]ClassifiedField)
		for _, f := range group {
			prev, dup := first[f.GoName]
			if !dup {
				first[f.GoName] = f
				continue
			}
			d := newDiagnostic(ConflictError, f.Pos, index,
				"字段 %s 与 %s 导出后同名 %s", f.Name, prev.Name, f.GoName)
			d.Ident = f.Name
			d.Hint = "将其中一个字段加入 omit，或重命名源字段"
			ds = append(ds, d)
		}
	}

	// 部分类型上会生成还原方法
	for _, f := range plan.PartialFields() {
		if f.GoName == plan.Names.ReconstructMethod {
			d := newDiagnostic(ConflictError, f.Pos, index,
				"字段 %s 与生成的方法 %s.%s 同名", f.Name, plan.Names.Target, plan.Names.ReconstructMethod)
			d.Ident = f.Name
			ds = append(ds, d)
		}
	}

	// 源结构体上会生成拆分方法
	forward := plan.Names.ForwardMethod
	if f, ok := plan.Source.Field(forward); ok {
		d := newDiagnostic(ConflictError, f.Pos, index,
			"%s 的字段 %s 与生成的方法同名", plan.Source.Name, forward)
		d.Ident = forward
		ds = append(ds, d)
	} else if plan.Source.HasMethod(forward) {
		d := newDiagnostic(ConflictError, plan.Config.Pos, index,
			"%s 已声明方法 %s，与生成的方法冲突", plan.Source.Name, forward)
		d.Ident = forward
		ds = append(ds, d)
	}

	return ds
}

// sortedImports 合并同一输出文件中各计划的导入，按路径排序
// 生成代码沿用源文件中的包名，因此同一包名对应多个路径、或同一路径使用多个名字时无法合并
func sortedImports(plans []*Plan) ([]importSpec, Diagnostics) {
	var ds Diagnostics
	byPath := make(map[string]importRef)
	byName := make(map[string]importRef)
	reported := make(map[string]bool)

	for _, plan := range plans {
		for _, ref := range plan.importRefs() {
			if prev, ok := byName[ref.name]; ok && prev.path != ref.path {
				if key := "name:" + ref.name; !reported[key] {
					reported[key] = true
					ds = append(ds, importConflict(ref, prev,
						"包名 %s 在同一输出文件中指向不同的导入路径: %s（%s）与 %s（%s）",
						ref.name, prev.path, prev.plan.Source.Name, ref.path, ref.plan.Source.Name))
				}
				continue
			}
			if prev, ok := byPath[ref.path]; ok && prev.name != ref.name {
				if key := "path:" + ref.path; !reported[key] {
					reported[key] = true
					ds = append(ds, importConflict(ref, prev,
						"导入路径 %s 在同一输出文件中使用了不同的名字: %s（%s）与 %s（%s）",
						ref.path, prev.name, prev.plan.Source.Name, ref.name, ref.plan.Source.Name))
				}
				continue
			}
			byName[ref.name] = ref
			if _, ok := byPath[ref.path]; !ok {
				byPath[ref.path] = ref
			}
		}
	}
	if len(ds) > 0 {
		return nil, ds
	}

	specs := make([]importSpec, 0, len(byPath))
	for path, ref := range byPath {
		specs = append(specs, importSpec{Path: path, Alias: ref.alias})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Path < specs[j].Path })
	return specs, nil
}

func importConflict(ref, prev importRef, format string, args ...any) *Diagnostic {
	d := newDiagnostic(NameCollisionError, ref.pos, ref.plan.Config.Index, format, args...)
	d.Type = ref.plan.Source.Name
	d.Ident = ref.name
	d.Hint = "统一各源文件中的导入别名，或通过 -output 将 " + prev.plan.Source.Name + " 与 " + ref.plan.Source.Name + " 生成到不同文件"
	return d
}

// importRef 生成代码中对某个包的一次引用
type importRef struct {
	name  string // 代码中使用的包名
	path  string
	alias string
	pos   token.Position
	plan  *Plan
}

// importRefs 按字段顺序列出引用的包，mo 排在最后
func (p *Plan) importRefs() []importRef {
	var refs []importRef
	for _, f := range p.Fields {
		for _, pkg := range f.Packages {
			info, ok := p.Source.Imports[pkg]
			if !ok {
				continue
			}
			refs = append(refs, importRef{name: pkg, path: info.ImportPath, alias: info.Alias, pos: f.Pos, plan: p})
		}
	}
	if p.NeedsOption() {
		refs = append(refs, importRef{name: "mo", path: optionImportPath, pos: p.Config.Pos, plan: p})
	}
	return refs
}

type importSpec struct {
	Path  string
	Alias string
}
