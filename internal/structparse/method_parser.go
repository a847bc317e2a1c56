package structparse

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
)

// parseMethodsFromPackage 从目标文件所在包的所有非生成文件中收集结构体方法
func parseMethodsFromPackage(targetFile, structName string) ([]MethodInfo, error) {
	dir := filepath.Dir(targetFile)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("查找包文件失败: %w", err)
	}

	var allMethods []MethodInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		file := filepath.Join(dir, name)
		if !fileMayContainStructMethods(file, structName) {
			continue
		}
		methods, err := parseMethodsFromFile(file, structName)
		if err != nil {
			// 单个文件解析失败不影响其他文件
			continue
		}
		allMethods = append(allMethods, methods...)
	}
	return allMethods, nil
}

// fileMayContainStructMethods 用字符串匹配预筛选文件
func fileMayContainStructMethods(filename, structName string) bool {
	content, err := os.ReadFile(filename)
	if err != nil {
		return false
	}
	return strings.Contains(string(content), structName+")")
}

// parseMethodsFromFile 从单个文件解析指定结构体的方法，生成文件直接跳过
func parseMethodsFromFile(filename, structName string) ([]MethodInfo, error) {
	fset := token.NewFileSet()
	node, err := parser.ParseFile(fset, filename, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("解析文件失败: %w", err)
	}
	if ast.IsGenerated(node) {
		return nil, nil
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		absPath = filename
	}

	var methods []MethodInfo
	for _, decl := range node.Decls {
		funcDecl, ok := decl.(*ast.FuncDecl)
		if !ok || funcDecl.Recv == nil || len(funcDecl.Recv.List) == 0 {
			continue
		}
		recv := funcDecl.Recv.List[0]

		var recvName, recvType string
		if len(recv.Names) > 0 {
			recvName = recv.Names[0].Name
		}
		switch t := recv.Type.(type) {
		case *ast.StarExpr:
			if ident, ok := t.X.(*ast.Ident); ok {
				recvType = "*" + ident.Name
			}
		case *ast.Ident:
			recvType = t.Name
		}

		if recvType == structName || recvType == "*"+structName {
			methods = append(methods, MethodInfo{
				Name:         funcDecl.Name.Name,
				ReceiverName: recvName,
				ReceiverType: recvType,
				FilePath:     absPath,
			})
		}
	}
	return methods, nil
}
