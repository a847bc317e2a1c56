package partialgen

import (
	"unicode"

	"github.com/donutnomad/partialgen/internal/utils"
)

// Names 一个配置生成的全部名称
type Names struct {
	Full    string // 源结构体
	Target  string // 部分类型
	Omitted string // 省略字段的承载类型

	ReconstructStem   string // to_<snake(Full)>
	ReconstructMethod string // 部分类型上的还原方法
	ForwardStem       string // into_<snake(Target)>_with_omitted
	ForwardMethod     string // 源结构体上的拆分方法
	FromFullFunc      string // New<Target>
	SplitStem         string // from_<snake(Full)>_with_omitted
	SplitFunc         string // Split<Target>
}

// DeriveNames 根据源结构体名与配置推导名称，只依赖输入，不做冲突检查
//
//	Car + @Partial                    -> PartialCar, PartialCarOmitted, ToCar
//	User + @Partial("UserInfo", ...)  -> UserInfo, UserInfoOmitted, ToUser
func DeriveNames(full string, cfg *Config) Names {
	target := cfg.TargetName.OrElse("Partial" + full)

	n := Names{
		Full:            full,
		Target:          target,
		Omitted:         target + "Omitted",
		ReconstructStem: "to_" + utils.ToSnakeCase(full),
		ForwardStem:     "into_" + utils.ToSnakeCase(target) + "_with_omitted",
		SplitStem:       "from_" + utils.ToSnakeCase(full) + "_with_omitted",
		FromFullFunc:    "New" + upperFirst(target),
		SplitFunc:       "Split" + upperFirst(target),
	}
	n.ReconstructMethod = utils.UpperCamelCase(n.ReconstructStem)
	n.ForwardMethod = utils.UpperCamelCase(n.ForwardStem)
	return n
}

// TypeNames 生成的类型名
func (n Names) TypeNames() []string {
	return []string{n.Target, n.Omitted}
}

// upperFirst 首字母大写，其余保持不变
func upperFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// receiverName 方法接收器名，取类型名首字母小写
func receiverName(typeName string) string {
	for _, r := range typeName {
		if r == '_' {
			continue
		}
		return string(unicode.ToLower(r))
	}
	return "v"
}
