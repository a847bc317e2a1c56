package pkgresolver

import (
	"fmt"
	"go/build"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"unicode"
)

// PackageNameResolver 根据导入路径解析真实包名
// 生成代码引用字段类型时，需要知道 import 的真实包名才能决定是否写别名
type PackageNameResolver struct {
	projectRoot string

	moduleOnce sync.Once
	moduleName string

	mu    sync.RWMutex
	cache map[string]string // 导入路径 -> 包名
}

// NewPackageNameResolver 创建解析器，projectRoot 为包含 go.mod 的目录，可为空
func NewPackageNameResolver(projectRoot string) *PackageNameResolver {
	return &PackageNameResolver{
		projectRoot: projectRoot,
		cache:       make(map[string]string),
	}
}

// GetPackageName 获取导入路径对应的真实包名
// 无法定位到磁盘目录时降级为路径最后一段（去掉 .vN 版本后缀）
//
//	"net/http"             -> "http"
//	"github.com/samber/mo" -> "mo"
//	"gopkg.in/yaml.v3"     -> "yaml"
func (r *PackageNameResolver) GetPackageName(importPath string) (string, error) {
	r.mu.RLock()
	name, ok := r.cache[importPath]
	r.mu.RUnlock()
	if ok {
		return name, nil
	}

	name = GuessPackageName(importPath)
	if dir, err := r.resolveDiskPath(importPath); err == nil {
		if pkgName, err := readPackageName(dir); err == nil {
			name = pkgName
		}
	}

	r.mu.Lock()
	r.cache[importPath] = name
	r.mu.Unlock()
	return name, nil
}

// GuessPackageName 按 goimports 的约定从导入路径推断包名
// 去掉 /vN 与 .vN 版本后缀、go- 前缀，再截到第一个非标识符字符
func GuessPackageName(importPath string) string {
	base := path.Base(importPath)
	// github.com/foo/bar/v2 风格
	if len(base) > 1 && base[0] == 'v' && strings.Trim(base[1:], "0123456789") == "" {
		base = path.Base(path.Dir(importPath))
	}
	base = strings.TrimPrefix(base, "go-")
	if idx := strings.IndexFunc(base, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	}); idx > 0 {
		base = base[:idx]
	}
	return base
}

// resolveDiskPath 将导入路径解析为磁盘目录
func (r *PackageNameResolver) resolveDiskPath(importPath string) (string, error) {
	if isStdLib(importPath) {
		return filepath.Join(build.Default.GOROOT, "src", filepath.FromSlash(importPath)), nil
	}

	if module := r.module(); module != "" && (importPath == module || strings.HasPrefix(importPath, module+"/")) {
		rel := strings.TrimPrefix(strings.TrimPrefix(importPath, module), "/")
		return filepath.Join(r.projectRoot, filepath.FromSlash(rel)), nil
	}

	return findInModCache(importPath)
}

// module 读取 go.mod 中的模块名（只读一次）
func (r *PackageNameResolver) module() string {
	r.moduleOnce.Do(func() {
		if r.projectRoot == "" {
			return
		}
		content, err := os.ReadFile(filepath.Join(r.projectRoot, "go.mod"))
		if err != nil {
			return
		}
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, "module ") {
				r.moduleName = strings.TrimSpace(strings.TrimPrefix(line, "module"))
				return
			}
		}
	})
	return r.moduleName
}

// isStdLib 标准库路径的第一段不含点号
func isStdLib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	if strings.Contains(first, ".") {
		return false
	}
	info, err := os.Stat(filepath.Join(build.Default.GOROOT, "src", filepath.FromSlash(importPath)))
	return err == nil && info.IsDir()
}

// findInModCache 在 GOMODCACHE 中查找第三方包
func findInModCache(importPath string) (string, error) {
	modCache := os.Getenv("GOMODCACHE")
	if modCache == "" {
		goPath := os.Getenv("GOPATH")
		if goPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("无法获取用户主目录: %w", err)
			}
			goPath = filepath.Join(home, "go")
		}
		modCache = filepath.Join(goPath, "pkg", "mod")
	}

	parts := strings.Split(importPath, "/")
	for i := len(parts); i >= 1; i-- {
		modulePath := strings.Join(parts[:i], "/")
		matches, err := filepath.Glob(filepath.Join(modCache, encodeModulePath(modulePath)+"@*"))
		if err != nil || len(matches) == 0 {
			continue
		}
		// 字典序最后一个通常是最新版本
		dir := filepath.Join(matches[len(matches)-1], filepath.Join(parts[i:]...))
		if _, err := os.Stat(dir); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("未找到第三方包 %s", importPath)
}

// encodeModulePath 模块缓存中大写字母编码为 !小写
// github.com/Xuanwo/gg -> github.com/!xuanwo/gg
func encodeModulePath(p string) string {
	var b strings.Builder
	for _, c := range p {
		if c >= 'A' && c <= 'Z' {
			b.WriteByte('!')
			b.WriteRune(c + 32)
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// readPackageName 读取目录中第一个非测试 Go 文件的 package 声明
func readPackageName(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("读取目录失败 %s: %w", dir, err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(token.NewFileSet(), filepath.Join(dir, name), nil, parser.PackageClauseOnly)
		if err != nil {
			continue
		}
		return f.Name.Name, nil
	}
	return "", fmt.Errorf("目录 %s 中没有找到 Go 源文件", dir)
}
