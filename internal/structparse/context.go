package structparse

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/donutnomad/partialgen/internal/pkgresolver"
)

// PackageResolver 包名解析器接口
type PackageResolver interface {
	GetPackageName(importPath string) (string, error)
}

// ParseContext 解析上下文，替代全局单例
type ParseContext struct {
	resolver     PackageResolver
	projectRoot  string
	resolverOnce sync.Once
}

// NewParseContext 创建解析上下文（使用默认工作目录）
func NewParseContext() *ParseContext {
	root, _ := findProjectRoot()
	return &ParseContext{projectRoot: root}
}

// NewParseContextWithRoot 创建解析上下文（指定项目根目录）
func NewParseContextWithRoot(projectRoot string) *ParseContext {
	return &ParseContext{projectRoot: projectRoot}
}

// NewParseContextWithResolver 创建解析上下文（指定PackageResolver，用于测试）
func NewParseContextWithResolver(resolver PackageResolver) *ParseContext {
	return &ParseContext{resolver: resolver}
}

// GetResolver 获取包解析器（延迟初始化）
func (c *ParseContext) GetResolver() PackageResolver {
	c.resolverOnce.Do(func() {
		if c.resolver == nil {
			c.resolver = pkgresolver.NewPackageNameResolver(c.projectRoot)
		}
	})
	return c.resolver
}

// findProjectRoot 从当前目录向上查找 go.mod
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
