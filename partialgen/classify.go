package partialgen

import (
	"strings"

	"github.com/donutnomad/partialgen/internal/structparse"
	"github.com/donutnomad/partialgen/internal/utils"
	"github.com/samber/lo"
)

// Treatment 字段在部分类型中的处理方式
type Treatment int

const (
	Kept            Treatment = iota // 原样保留
	Omitted                          // 移入 Omitted 类型
	OptionalWrapped                  // 包装为 mo.Option
)

func (t Treatment) String() string {
	switch t {
	case Kept:
		return "kept"
	case Omitted:
		return "omitted"
	case OptionalWrapped:
		return "optional"
	default:
		return "unknown"
	}
}

// ClassifiedField 带处理方式的字段
type ClassifiedField struct {
	structparse.FieldInfo
	Treatment Treatment
	GoName    string // 生成类型中的导出字段名
}

// Classify 为每个字段确定处理方式，按源码顺序返回
// omit 优先于 optional；未列出的字段保持原样；空白字段 _ 不参与生成
func Classify(src *structparse.StructInfo, cfg *Config) ([]ClassifiedField, Diagnostics) {
	if ds := checkUnknownFields(src, cfg); len(ds) > 0 {
		return nil, ds
	}

	omit := lo.SliceToMap(cfg.OmitNames(), func(n string) (string, bool) { return n, true })
	optional := lo.SliceToMap(cfg.OptionalNames(), func(n string) (string, bool) { return n, true })

	named := namedFields(src)
	fields := make([]ClassifiedField, len(named))
	for i, f := range named {
		treatment := Kept
		switch {
		case omit[f.Name]:
			treatment = Omitted
		case optional[f.Name]:
			treatment = OptionalWrapped
		}
		fields[i] = ClassifiedField{
			FieldInfo: f,
			Treatment: treatment,
			GoName:    utils.ExportName(f.Name),
		}
	}
	return fields, nil
}

// checkUnknownFields 一次检查 omit 与 optional 中的全部标识符，每个未知标识符一条诊断
func checkUnknownFields(src *structparse.StructInfo, cfg *Config) Diagnostics {
	available := lo.Map(namedFields(src), func(f structparse.FieldInfo, _ int) string { return f.Name })
	known := lo.SliceToMap(available, func(n string) (string, bool) { return n, true })

	hint := "可用字段: " + strings.Join(available, ", ")
	if len(available) == 0 {
		hint = src.Name + " 没有字段"
	}

	var ds Diagnostics
	for _, clause := range []struct {
		name   string
		idents []Ident
	}{
		{clauseOmit, cfg.Omit},
		{clauseOptional, cfg.Optional},
	} {
		for _, ident := range clause.idents {
			if known[ident.Name] {
				continue
			}
			d := newDiagnostic(UnknownFieldError, ident.Pos, cfg.Index,
				"%s 中的字段 %s 在 %s 中不存在", clause.name, ident.Name, src.Name)
			d.Clause = clause.name
			d.Ident = ident.Name
			d.Hint = hint
			if similar := closestField(ident.Name, available); similar != "" {
				d.Hint = "是否想写 " + similar + "？" + hint
			}
			ds = append(ds, d)
		}
	}
	return ds
}

// namedFields 去掉空白字段，它们无法读写，还原时保持零值
func namedFields(src *structparse.StructInfo) []structparse.FieldInfo {
	return lo.Reject(src.Fields, func(f structparse.FieldInfo, _ int) bool { return f.Name == "_" })
}

// closestField 忽略大小写和下划线后相同的字段名，例如 ID 与 id
func closestField(name string, available []string) string {
	normalize := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", ""))
	}
	target := normalize(name)
	for _, candidate := range available {
		if normalize(candidate) == target {
			return candidate
		}
	}
	return ""
}
