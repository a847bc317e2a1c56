package structparse

import (
	"go/ast"
	"go/token"
	"go/types"
	"sort"
)

// parseFields 按源码顺序解析字段，嵌入字段不展开
func parseFields(fset *token.FileSet, list *ast.FieldList) []FieldInfo {
	var fields []FieldInfo
	for _, field := range list.List {
		fieldType := types.ExprString(field.Type)
		pkgs := referencedPackages(field.Type)

		var fieldTag string
		if field.Tag != nil {
			fieldTag = field.Tag.Value
		}

		if len(field.Names) == 0 {
			fields = append(fields, FieldInfo{
				Name:     embeddedName(field.Type),
				Type:     fieldType,
				Tag:      fieldTag,
				Embedded: true,
				Packages: pkgs,
				Pos:      fset.Position(field.Pos()),
			})
			continue
		}

		for _, name := range field.Names {
			fields = append(fields, FieldInfo{
				Name:     name.Name,
				Type:     fieldType,
				Tag:      fieldTag,
				Packages: pkgs,
				Pos:      fset.Position(name.Pos()),
			})
		}
	}
	return fields
}

// embeddedName 嵌入字段的字段名是去掉指针和包前缀的类型名
func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	}
	return types.ExprString(expr)
}

// referencedPackages 收集类型表达式中 pkg.Name 形式的包名
func referencedPackages(expr ast.Expr) []string {
	seen := make(map[string]bool)
	ast.Inspect(expr, func(n ast.Node) bool {
		if sel, ok := n.(*ast.SelectorExpr); ok {
			if ident, ok := sel.X.(*ast.Ident); ok {
				seen[ident.Name] = true
			}
			return false
		}
		return true
	})
	if len(seen) == 0 {
		return nil
	}
	pkgs := make([]string, 0, len(seen))
	for pkg := range seen {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs
}
