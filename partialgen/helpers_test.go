package partialgen

import (
	"strings"
	"testing"

	"github.com/donutnomad/partialgen/internal/structparse"
	"github.com/donutnomad/partialgen/plugin"
	"github.com/stretchr/testify/require"
)

// partial 构造不带位置信息的 @Partial 注解
func partial(t *testing.T, args string) *plugin.Annotation {
	t.Helper()
	text := "// @Partial"
	if args != "-" {
		text += "(" + args + ")"
	}
	anns := plugin.ParseAnnotations(text)
	require.Len(t, anns, 1)
	return anns[0]
}

// userStruct 测试用源结构体
//
//	type User struct {
//	    id       int64
//	    name     *string `json:"name"`
//	    Email    string
//	    password string
//	    Created  time.Time
//	}
func userStruct() *structparse.StructInfo {
	return &structparse.StructInfo{
		Name:        "User",
		PackageName: "models",
		FilePath:    "/src/models/user.go",
		Fields: []structparse.FieldInfo{
			{Name: "id", Type: "int64"},
			{Name: "name", Type: "*string", Tag: "`json:\"name\"`"},
			{Name: "Email", Type: "string"},
			{Name: "password", Type: "string"},
			{Name: "Created", Type: "time.Time", Packages: []string{"time"}},
		},
		Imports: map[string]*structparse.ImportInfo{
			"time": {PackageName: "time", ImportPath: "time"},
		},
	}
}

// squash 折叠空白，断言不依赖格式化细节
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
