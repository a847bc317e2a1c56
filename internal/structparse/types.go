package structparse

import "go/token"

// ImportInfo 导入信息
type ImportInfo struct {
	Alias       string // 显式别名（如果有）
	PackageName string // 真实包名（从 package 声明读取）
	ImportPath  string // 完整导入路径
}

// Name 源文件中引用该包使用的名字
func (i ImportInfo) Name() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.PackageName
}

// MethodInfo 表示方法信息
type MethodInfo struct {
	Name         string // 方法名
	ReceiverName string // 接收器名称
	ReceiverType string // 接收器类型
	FilePath     string // 方法所在文件的绝对路径
}

// FieldInfo 表示结构体字段信息
type FieldInfo struct {
	Name     string         // 字段名，嵌入字段为类型名
	Type     string         // 字段类型，按源码书写
	Tag      string         // 字段标签，包含反引号
	Embedded bool           // 是否为嵌入字段
	Packages []string       // 类型表达式中引用的包名（源文件中的名字）
	Pos      token.Position // 字段位置
}

// StructInfo 表示结构体信息
type StructInfo struct {
	Name        string                 // 结构体名称
	PackageName string                 // 包名
	FilePath    string                 // 结构体所在文件路径
	Pos         token.Position         // 类型声明位置
	Generic     bool                   // 是否带类型参数
	Fields      []FieldInfo            // 字段列表
	Methods     []MethodInfo           // 方法列表（不含生成文件）
	Imports     map[string]*ImportInfo // 源文件导入，key 为源文件中引用的包名
}

// Field 按名称查找字段
func (s *StructInfo) Field(name string) (FieldInfo, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// HasMethod 判断结构体是否已经声明了指定方法
func (s *StructInfo) HasMethod(name string) bool {
	for _, m := range s.Methods {
		if m.Name == name {
			return true
		}
	}
	return false
}
