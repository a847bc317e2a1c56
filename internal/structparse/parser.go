package structparse

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
)

// ErrNotStruct 目标类型存在但不是结构体
var ErrNotStruct = errors.New("不是结构体类型")

// ParseStruct 解析指定文件中的结构体（包级便捷函数）
func ParseStruct(filename, structName string) (*StructInfo, error) {
	return NewParseContext().ParseStruct(filename, structName)
}

// ParseStruct 读取并解析文件，再提取结构体
func (c *ParseContext) ParseStruct(filename, structName string) (*StructInfo, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}
	return c.ParseStructFromFile(fset, node, filename, structName)
}

// ParseStructFromFile 从已解析的文件中提取结构体，扫描器已持有 AST 时避免重复解析
func (c *ParseContext) ParseStructFromFile(fset *token.FileSet, node *ast.File, filename, structName string) (*StructInfo, error) {
	typeSpec := findTypeSpec(node, structName)
	if typeSpec == nil {
		return nil, fmt.Errorf("未找到结构体 %s", structName)
	}

	structType, ok := typeSpec.Type.(*ast.StructType)
	if !ok || typeSpec.Assign.IsValid() {
		return nil, fmt.Errorf("%s: %w", structName, ErrNotStruct)
	}

	info := &StructInfo{
		Name:        structName,
		PackageName: node.Name.Name,
		FilePath:    filename,
		Pos:         fset.Position(typeSpec.Name.Pos()),
		Generic:     typeSpec.TypeParams != nil && len(typeSpec.TypeParams.List) > 0,
		Fields:      parseFields(fset, structType.Fields),
		Imports:     c.extractImports(node),
	}

	methods, err := parseMethodsFromPackage(filename, structName)
	if err != nil {
		return nil, err
	}
	info.Methods = methods

	return info, nil
}

func findTypeSpec(node *ast.File, name string) *ast.TypeSpec {
	for _, decl := range node.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			if typeSpec, ok := spec.(*ast.TypeSpec); ok && typeSpec.Name.Name == name {
				return typeSpec
			}
		}
	}
	return nil
}
