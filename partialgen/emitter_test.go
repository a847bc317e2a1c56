package partialgen

import (
	"testing"

	"github.com/donutnomad/partialgen/internal/structparse"
	"github.com/donutnomad/partialgen/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmit_MultipleConfigs(t *testing.T) {
	src := userStruct()
	plans, err := Emit(src, []*plugin.Annotation{
		partial(t, "-"),
		partial(t, `"UserPatch", derive(Validate), omit(id), optional(name, Email)`),
	})
	require.NoError(t, err)
	require.Len(t, plans, 2)

	assert.Equal(t, "PartialUser", plans[0].Names.Target)
	assert.Len(t, plans[0].PartialFields(), 5)
	assert.Empty(t, plans[0].OmittedFields())
	assert.False(t, plans[0].NeedsOption())

	assert.Equal(t, "UserPatch", plans[1].Names.Target)
	assert.Equal(t, 1, plans[1].Config.Index)
	assert.Len(t, plans[1].OptionalFields(), 2)
	specs, ds := sortedImports(plans[1:])
	require.Empty(t, ds)
	assert.Equal(t, []importSpec{{Path: optionImportPath}, {Path: "time"}}, specs)
}

func TestEmit_NameCollision(t *testing.T) {
	src := userStruct()

	t.Run("default names twice", func(t *testing.T) {
		_, err := Emit(src, []*plugin.Annotation{partial(t, "omit(id)"), partial(t, "optional(name)")})
		var ds Diagnostics
		require.ErrorAs(t, err, &ds)
		require.NotEmpty(t, ds)
		for _, d := range ds {
			assert.Equal(t, NameCollisionError, d.Kind)
			assert.Equal(t, 1, d.ConfigIndex)
			assert.Equal(t, "User", d.Type)
			assert.Contains(t, d.Message, "与第 1 个 @Partial 冲突")
		}
		assert.Equal(t, "PartialUser", ds[0].Ident)
	})

	t.Run("target equals source", func(t *testing.T) {
		_, err := Emit(src, []*plugin.Annotation{partial(t, `"User"`)})
		var d *Diagnostic
		require.ErrorAs(t, err, &d)
		assert.Equal(t, NameCollisionError, d.Kind)
		assert.Equal(t, "生成的类型 User 与源结构体同名", d.Message)
		assert.Equal(t, clauseTarget, d.Clause)
	})

	t.Run("omitted type equals next target", func(t *testing.T) {
		_, err := Emit(src, []*plugin.Annotation{partial(t, `"View"`), partial(t, `"ViewOmitted"`)})
		var d *Diagnostic
		require.ErrorAs(t, err, &d)
		assert.Equal(t, "ViewOmitted", d.Ident)
		assert.Equal(t, 1, d.ConfigIndex)
	})
}

func TestEmit_FailingConfigSuppressesType(t *testing.T) {
	src := userStruct()
	plans, err := Emit(src, []*plugin.Annotation{
		partial(t, "omit(missing)"),
		partial(t, `"Ok", omit(id)`),
		partial(t, "omit(id) optional(name)"),
	})
	assert.Nil(t, plans)

	var ds Diagnostics
	require.ErrorAs(t, err, &ds)
	require.Len(t, ds, 2)
	assert.Equal(t, UnknownFieldError, ds[0].Kind)
	assert.Equal(t, 0, ds[0].ConfigIndex)
	assert.Equal(t, GrammarError, ds[1].Kind)
	assert.Equal(t, 2, ds[1].ConfigIndex)
}

func TestEmit_Generic(t *testing.T) {
	src := userStruct()
	src.Generic = true
	_, err := Emit(src, []*plugin.Annotation{partial(t, "-")})

	var d *Diagnostic
	require.ErrorAs(t, err, &d)
	assert.Equal(t, UnsupportedError, d.Kind)
	assert.Equal(t, -1, d.ConfigIndex)
}

func TestEmit_FieldConflicts(t *testing.T) {
	t.Run("export name clash", func(t *testing.T) {
		src := userStruct()
		src.Fields = append(src.Fields, structparse.FieldInfo{Name: "ID", Type: "string"})

		_, err := Emit(src, []*plugin.Annotation{partial(t, "-")})
		var d *Diagnostic
		require.ErrorAs(t, err, &d)
		assert.Equal(t, ConflictError, d.Kind)
		assert.Equal(t, "字段 ID 与 id 导出后同名 ID", d.Message)

		// 其中一个移入 Omitted 后不再冲突
		_, err = Emit(src, []*plugin.Annotation{partial(t, "omit(ID)")})
		assert.NoError(t, err)
	})

	t.Run("field shadows reconstruct method", func(t *testing.T) {
		src := userStruct()
		src.Fields = append(src.Fields, structparse.FieldInfo{Name: "ToUser", Type: "bool"})

		_, err := Emit(src, []*plugin.Annotation{partial(t, "-")})
		var d *Diagnostic
		require.ErrorAs(t, err, &d)
		assert.Equal(t, ConflictError, d.Kind)
		assert.Equal(t, "ToUser", d.Ident)
	})

	t.Run("forward method already declared", func(t *testing.T) {
		src := userStruct()
		src.Methods = []structparse.MethodInfo{{Name: "IntoPartialUserWithOmitted"}}

		_, err := Emit(src, []*plugin.Annotation{partial(t, "-")})
		var d *Diagnostic
		require.ErrorAs(t, err, &d)
		assert.Equal(t, ConflictError, d.Kind)
		assert.Contains(t, d.Message, "已声明方法 IntoPartialUserWithOmitted")
	})
}

// importingStruct 单字段结构体，字段类型来自 name 对应的导入
func importingStruct(typeName, name string, info *structparse.ImportInfo) *structparse.StructInfo {
	return &structparse.StructInfo{
		Name:        typeName,
		PackageName: "models",
		Fields: []structparse.FieldInfo{
			{Name: "ID", Type: name + ".ID", Packages: []string{name}},
			{Name: "note", Type: "string"},
		},
		Imports: map[string]*structparse.ImportInfo{name: info},
	}
}

func TestSortedImports(t *testing.T) {
	plansOf := func(srcs ...*structparse.StructInfo) []*Plan {
		var plans []*Plan
		for _, src := range srcs {
			p, err := Emit(src, []*plugin.Annotation{partial(t, "optional(note)")})
			require.NoError(t, err)
			plans = append(plans, p...)
		}
		return plans
	}
	uuidPath := "github.com/google/uuid"

	t.Run("same path same name", func(t *testing.T) {
		specs, ds := sortedImports(plansOf(
			importingStruct("Account", "uuid", &structparse.ImportInfo{PackageName: "uuid", ImportPath: uuidPath}),
			importingStruct("User", "uuid", &structparse.ImportInfo{PackageName: "uuid", ImportPath: uuidPath}),
		))
		require.Empty(t, ds)
		assert.Equal(t, []importSpec{{Path: optionImportPath}, {Path: uuidPath}}, specs)
	})

	t.Run("same path different alias", func(t *testing.T) {
		specs, ds := sortedImports(plansOf(
			importingStruct("Account", "guuid", &structparse.ImportInfo{Alias: "guuid", PackageName: "uuid", ImportPath: uuidPath}),
			importingStruct("User", "uuid", &structparse.ImportInfo{PackageName: "uuid", ImportPath: uuidPath}),
		))
		assert.Nil(t, specs)
		require.Len(t, ds, 1)
		assert.Equal(t, NameCollisionError, ds[0].Kind)
		assert.Equal(t, "User", ds[0].Type)
		assert.Equal(t, "uuid", ds[0].Ident)
		assert.Equal(t, "导入路径 github.com/google/uuid 在同一输出文件中使用了不同的名字: guuid（Account）与 uuid（User）", ds[0].Message)
		assert.Contains(t, ds[0].Hint, "-output")
	})

	t.Run("same name different path", func(t *testing.T) {
		_, ds := sortedImports(plansOf(
			importingStruct("Account", "types", &structparse.ImportInfo{PackageName: "types", ImportPath: "example.com/a/types"}),
			importingStruct("User", "types", &structparse.ImportInfo{PackageName: "types", ImportPath: "example.com/b/types"}),
			importingStruct("Order", "types", &structparse.ImportInfo{PackageName: "types", ImportPath: "example.com/b/types"}),
		))
		// 同一冲突只报告一次
		require.Len(t, ds, 1)
		assert.Equal(t, "包名 types 在同一输出文件中指向不同的导入路径: example.com/a/types（Account）与 example.com/b/types（User）", ds[0].Message)
	})

	t.Run("alias shadows mo", func(t *testing.T) {
		_, ds := sortedImports(plansOf(
			importingStruct("Account", "mo", &structparse.ImportInfo{Alias: "mo", PackageName: "monitor", ImportPath: "example.com/monitor"}),
		))
		require.Len(t, ds, 1)
		assert.Equal(t, "mo", ds[0].Ident)
	})
}

func TestReconstructParams(t *testing.T) {
	src := &structparse.StructInfo{
		Name:        "Order",
		PackageName: "shop",
		Fields: []structparse.FieldInfo{
			{Name: "string", Type: "string"},
			{Name: "len", Type: "int"},
			{Name: "p", Type: "int"},
			{Name: "Full", Type: "bool"},
			{Name: "time", Type: "time.Time", Packages: []string{"time"}},
			{Name: "note", Type: "string"},
		},
	}
	cfg, ds := ParseConfig(partial(t, "omit(string, len, p, Full, time), optional(note)"), 0)
	require.Empty(t, ds)
	plan, ds := buildPlan(src, cfg, DeriveNames(src.Name, cfg))
	require.Empty(t, ds)

	names := make([]string, 0)
	for _, param := range reconstructParams(plan) {
		names = append(names, param.Name)
	}
	assert.Equal(t, []string{"stringArg", "lenArg", "p2", "full2", "time2", "noteFallback"}, names)
}

func TestGenerateSource(t *testing.T) {
	src := userStruct()
	out, err := GenerateSource(src, []*plugin.Annotation{
		partial(t, `derive(Debug, Validate), omit(id, password), optional(name)`),
	})
	require.NoError(t, err)

	code := squash(string(out))
	for _, want := range []string{
		"// Code generated by partialgen. DO NOT EDIT.",
		"package models",
		`"github.com/samber/mo"`,
		`"time"`,
		"// PartialUser 是 User 的部分类型",
		"// 省略字段: id, password（由 PartialUserOmitted 承载）",
		"// 可选字段: name",
		"// @Debug",
		"// @Validate type PartialUser struct {",
		"Name mo.Option[*string] `json:\"name\"`",
		"Email string",
		"Created time.Time",
		"type PartialUserOmitted struct { ID int64 Password string }",
		"func (p PartialUser) ToUser(id int64, password string, nameFallback mo.Option[*string]) User {",
		"full.id = id",
		"full.name = p.Name.OrElse(nameFallback.OrEmpty())",
		"full.Email = p.Email",
		"full.password = password",
		"return full",
		"func NewPartialUser(full User) PartialUser {",
		"partial.Name = mo.Some(full.name)",
		"func SplitPartialUser(full User) (PartialUser, PartialUserOmitted) {",
		"omitted.ID = full.id",
		"omitted.Password = full.password",
		"return partial, omitted",
		"func (u User) IntoPartialUserWithOmitted() (PartialUser, PartialUserOmitted) { return SplitPartialUser(u) }",
	} {
		assert.Contains(t, code, want)
	}
}

func TestGenerateSource_NoOptionalSkipsMoImport(t *testing.T) {
	src := userStruct()
	out, err := GenerateSource(src, []*plugin.Annotation{partial(t, "omit(Created)")})
	require.NoError(t, err)

	code := string(out)
	assert.NotContains(t, code, "samber/mo")
	// time 只出现在省略字段中，仍需导入
	assert.Contains(t, code, `"time"`)
}

func TestGenerateSource_BlankFields(t *testing.T) {
	src := userStruct()
	src.Fields = append([]structparse.FieldInfo{{Name: "_", Type: "[0]func()"}}, src.Fields...)
	src.Fields = append(src.Fields, structparse.FieldInfo{Name: "_", Type: "struct{}"})

	out, err := GenerateSource(src, []*plugin.Annotation{partial(t, "omit(id), optional(name)")})
	require.NoError(t, err)

	code := squash(string(out))
	assert.NotContains(t, code, "._")
	assert.NotContains(t, code, "[0]func()")
	assert.Contains(t, code, "full.Email = p.Email")
}

func TestGenerateSource_Diagnostics(t *testing.T) {
	src := userStruct()
	out, err := GenerateSource(src, []*plugin.Annotation{partial(t, "omit(id), optional(id)")})
	assert.Nil(t, out)

	var d *Diagnostic
	require.ErrorAs(t, err, &d)
	assert.Equal(t, ConflictError, d.Kind)
}
