package partialgen

import (
	"go/token"
	"go/types"
	"strconv"

	"github.com/donutnomad/gg"
	"github.com/donutnomad/partialgen/internal/utils"
)

const (
	partialReceiver = "p"
	fullVar         = "full"
	partialVar      = "partial"
	omittedVar      = "omitted"
	fallbackSuffix  = "Fallback"
)

// reconstructParam 还原方法的参数
type reconstructParam struct {
	Field ClassifiedField
	Name  string
	Type  string
}

// reconstructParams 省略字段按源码顺序在前，可选字段的备用值在后
func reconstructParams(plan *Plan) []reconstructParam {
	used := map[string]bool{
		partialReceiver: true,
		fullVar:         true,
		"mo":            true,
		plan.Names.Full: true,
	}
	// 字段类型中引用的包名不能被参数遮蔽
	for _, f := range plan.Fields {
		for _, pkg := range f.Packages {
			used[pkg] = true
		}
	}

	var params []reconstructParam
	for _, f := range plan.OmittedFields() {
		params = append(params, reconstructParam{Field: f, Name: paramName(utils.LowerCamelCase(f.GoName), used), Type: f.Type})
	}
	for _, f := range plan.OptionalFields() {
		params = append(params, reconstructParam{Field: f, Name: paramName(utils.LowerCamelCase(f.GoName)+fallbackSuffix, used), Type: optionType(f.Type)})
	}
	return params
}

// paramName 避开关键字、预声明标识符与已用名称
func paramName(base string, used map[string]bool) string {
	if base == "" || base == "_" {
		base = "arg"
	}
	if token.IsKeyword(base) || types.Universe.Lookup(base) != nil {
		base += "Arg"
	}
	name := base
	for i := 2; used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	used[name] = true
	return name
}

// buildReconstructMethod 生成还原方法
//
//	func (p PartialUser) ToUser(id int64, nameFallback mo.Option[string]) User
//
// 可选字段依次取部分类型中的值、备用值、零值
func buildReconstructMethod(group *gg.Group, plan *Plan) {
	n := plan.Names
	params := reconstructParams(plan)

	group.AddLine()
	group.Append(gg.LineComment("%s 结合省略字段还原 %s", n.ReconstructMethod, n.Full))
	if len(plan.OptionalFields()) > 0 {
		group.Append(gg.LineComment("可选字段依次取 %s 中的值、备用值，二者都为空时为零值", n.Target))
	}

	fn := group.NewFunction(n.ReconstructMethod).
		WithReceiver(partialReceiver, n.Target)
	for _, param := range params {
		fn.AddParameter(param.Name, param.Type)
	}
	fn.AddResult("", n.Full)

	paramOf := make(map[string]string, len(params))
	for _, param := range params {
		paramOf[param.Field.Name] = param.Name
	}

	fn.AddBody(gg.S("var %s %s", fullVar, n.Full))
	for _, f := range plan.Fields {
		switch f.Treatment {
		case Kept:
			fn.AddBody(gg.S("%s.%s = %s.%s", fullVar, f.Name, partialReceiver, f.GoName))
		case Omitted:
			fn.AddBody(gg.S("%s.%s = %s", fullVar, f.Name, paramOf[f.Name]))
		case OptionalWrapped:
			fn.AddBody(gg.S("%s.%s = %s.%s.OrElse(%s.OrEmpty())", fullVar, f.Name, partialReceiver, f.GoName, paramOf[f.Name]))
		}
	}
	fn.AddBody(gg.Return(gg.S(fullVar)))
}

// buildFromFullFunc 生成从完整类型构造部分类型的函数，丢弃省略字段
func buildFromFullFunc(group *gg.Group, plan *Plan) {
	n := plan.Names

	group.AddLine()
	group.Append(gg.LineComment("%s 从 %s 构造 %s，丢弃省略字段", n.FromFullFunc, n.Full, n.Target))
	if len(plan.OptionalFields()) > 0 {
		group.Append(gg.LineComment("可选字段包装为 mo.Some"))
	}

	fn := group.NewFunction(n.FromFullFunc).
		AddParameter(fullVar, n.Full).
		AddResult("", n.Target).
		AddBody(gg.S("var %s %s", partialVar, n.Target))
	for _, f := range plan.PartialFields() {
		fn.AddBody(gg.S("%s.%s = %s", partialVar, f.GoName, wrapValue(f)))
	}
	fn.AddBody(gg.Return(gg.S(partialVar)))
}

// buildSplitFunc 生成拆分函数，按源码顺序逐个字段读取一次
func buildSplitFunc(group *gg.Group, plan *Plan) {
	n := plan.Names

	group.AddLine()
	group.Append(gg.LineComment("%s 将 %s 拆分为 %s 与 %s", n.SplitFunc, n.Full, n.Target, n.Omitted))

	fn := group.NewFunction(n.SplitFunc).
		AddParameter(fullVar, n.Full).
		AddResult("", n.Target).
		AddResult("", n.Omitted).
		AddBody(
			gg.S("var %s %s", partialVar, n.Target),
			gg.S("var %s %s", omittedVar, n.Omitted),
		)
	for _, f := range plan.Fields {
		if f.Treatment == Omitted {
			fn.AddBody(gg.S("%s.%s = %s.%s", omittedVar, f.GoName, fullVar, f.Name))
			continue
		}
		fn.AddBody(gg.S("%s.%s = %s", partialVar, f.GoName, wrapValue(f)))
	}
	fn.AddBody(gg.Return(gg.S("%s, %s", partialVar, omittedVar)))
}

// buildForwardMethod 在源结构体上生成拆分方法，委托给拆分函数
func buildForwardMethod(group *gg.Group, plan *Plan) {
	n := plan.Names
	recv := receiverName(n.Full)

	group.AddLine()
	group.Append(gg.LineComment("%s 将 %s 拆分为 %s 与 %s", n.ForwardMethod, n.Full, n.Target, n.Omitted))

	group.NewFunction(n.ForwardMethod).
		WithReceiver(recv, n.Full).
		AddResult("", n.Target).
		AddResult("", n.Omitted).
		AddBody(gg.Return(gg.S("%s(%s)", n.SplitFunc, recv)))
}

// wrapValue 从完整类型读取字段，可选字段包装为 mo.Some
func wrapValue(f ClassifiedField) string {
	value := fullVar + "." + f.Name
	if f.Treatment == OptionalWrapped {
		return "mo.Some(" + value + ")"
	}
	return value
}
