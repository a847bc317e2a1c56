package partialgen

import (
	"fmt"
	"strings"

	"github.com/donutnomad/gg"
	"github.com/samber/lo"
)

// fieldNames 源字段名列表，用于注释
func fieldNames(fields []ClassifiedField) string {
	return strings.Join(lo.Map(fields, func(f ClassifiedField, _ int) string { return f.Name }), ", ")
}

// fieldDecl 字段类型与标签，标签已包含反引号
func fieldDecl(typ, tag string) string {
	if tag == "" {
		return typ
	}
	return fmt.Sprintf("%s %s", typ, tag)
}

// optionType 可选字段的类型
func optionType(typ string) string {
	return "mo.Option[" + typ + "]"
}

// buildPartialStruct 生成部分类型
//
//	// PartialUser 是 User 的部分类型
//	// 省略字段: id, password（由 PartialUserOmitted 承载）
//	// 可选字段: name
//	//
//	// @Debug
//	type PartialUser struct { ... }
func buildPartialStruct(group *gg.Group, plan *Plan) {
	n := plan.Names

	group.AddLine()
	group.Append(gg.LineComment("%s 是 %s 的部分类型", n.Target, n.Full))
	if omitted := plan.OmittedFields(); len(omitted) > 0 {
		group.Append(gg.LineComment("省略字段: %s（由 %s 承载）", fieldNames(omitted), n.Omitted))
	}
	if optional := plan.OptionalFields(); len(optional) > 0 {
		group.Append(gg.LineComment("可选字段: %s", fieldNames(optional)))
	}
	if len(plan.Config.Derives) > 0 {
		group.Append(gg.LineComment(""))
		for _, derive := range plan.Config.Derives {
			group.Append(gg.LineComment("@%s", derive.Name))
		}
	}

	st := gg.Struct(n.Target)
	for _, f := range plan.PartialFields() {
		typ := f.Type
		if f.Treatment == OptionalWrapped {
			typ = optionType(typ)
		}
		st.AddField(f.GoName, fieldDecl(typ, f.Tag))
	}
	group.Append(st)
}

// buildOmittedStruct 生成承载省略字段的类型，没有省略字段时为空结构体
func buildOmittedStruct(group *gg.Group, plan *Plan) {
	n := plan.Names

	group.AddLine()
	group.Append(gg.LineComment("%s 保存 %s 相对 %s 省略的字段", n.Omitted, n.Target, n.Full))

	st := gg.Struct(n.Omitted)
	for _, f := range plan.OmittedFields() {
		st.AddField(f.GoName, fieldDecl(f.Type, f.Tag))
	}
	group.Append(st)
}
