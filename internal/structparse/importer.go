package structparse

import (
	"go/ast"
	"strconv"

	"github.com/donutnomad/partialgen/internal/pkgresolver"
)

// extractImports 提取文件中的导入信息，key 为源文件中引用该包的名字
func (c *ParseContext) extractImports(file *ast.File) map[string]*ImportInfo {
	imports := make(map[string]*ImportInfo)
	resolver := c.GetResolver()

	for _, imp := range file.Imports {
		importPath, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		packageName, _ := resolver.GetPackageName(importPath)
		if packageName == "" {
			packageName = pkgresolver.GuessPackageName(importPath)
		}

		info := &ImportInfo{PackageName: packageName, ImportPath: importPath}
		if imp.Name != nil {
			// 点导入和匿名导入不会出现在字段类型的选择器里
			if imp.Name.Name == "_" || imp.Name.Name == "." {
				continue
			}
			if imp.Name.Name != packageName {
				info.Alias = imp.Name.Name
			}
		}
		imports[info.Name()] = info
	}

	return imports
}
