// Package structparse 提供 Go 结构体的静态分析。
//
// 主要功能：
//
//  1. 结构体字段解析 - 按源码顺序提取字段名、类型、标签与位置
//  2. 导入信息 - 记录源文件的导入，区分显式别名与真实包名
//  3. 方法信息收集 - 扫描同包的非生成文件，收集结构体已声明的方法
//
// 嵌入字段不展开，按 Go 语言规则使用类型名作为字段名：
//
//	type User struct {
//	    *audit.Stamp // 字段名 Stamp，类型 *audit.Stamp
//	}
//
// # 基本用法
//
//	info, err := structparse.ParseStruct("path/to/file.go", "User")
//	if err != nil {
//	    return err
//	}
//	for _, field := range info.Fields {
//	    fmt.Printf("%s %s\n", field.Name, field.Type)
//	}
//
// 已持有 AST 的调用方（例如插件扫描器）使用 ParseContext.ParseStructFromFile。
package structparse
