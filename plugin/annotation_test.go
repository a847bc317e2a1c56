package plugin

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotations(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string // 每个注解的 Raw
	}{
		{
			name:     "simple annotation",
			input:    "// @Partial",
			expected: []string{"@Partial"},
		},
		{
			name:     "nested parens",
			input:    `// @Partial("UserInfo", derive(Debug, Clone), omit(id))`,
			expected: []string{`@Partial("UserInfo", derive(Debug, Clone), omit(id))`},
		},
		{
			name:     "multiple annotations",
			input:    "// @Partial @Other(x)",
			expected: []string{"@Partial", "@Other(x)"},
		},
		{
			name:     "multiline annotations",
			input:    "// @Partial(omit(a))\n// @Partial(optional(b))",
			expected: []string{"@Partial(omit(a))", "@Partial(optional(b))"},
		},
		{
			name:     "paren inside string literal",
			input:    "// @Partial(\"A)B\", omit(x))",
			expected: []string{"@Partial(\"A)B\", omit(x))"},
		},
		{
			name:     "email is not annotation",
			input:    "// contact admin@example.com",
			expected: nil,
		},
		{
			name:     "no annotation",
			input:    "// This is a comment",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			annotations := ParseAnnotations(tt.input)
			var raws []string
			for _, ann := range annotations {
				raws = append(raws, ann.Raw)
			}
			assert.Equal(t, tt.expected, raws)
		})
	}
}

func TestAnnotationArgs(t *testing.T) {
	annotations := ParseAnnotations(`// @Partial("UserInfo", omit(id, password))`)
	require.Len(t, annotations, 1)

	ann := annotations[0]
	assert.Equal(t, "Partial", ann.Name)
	assert.True(t, ann.HasArgs)
	assert.False(t, ann.Unclosed)
	assert.Equal(t, `"UserInfo", omit(id, password)`, ann.Args)

	bare := ParseAnnotations("// @Partial")[0]
	assert.False(t, bare.HasArgs)
	assert.Equal(t, "", bare.Args)

	empty := ParseAnnotations("// @Partial()")[0]
	assert.True(t, empty.HasArgs)
	assert.Equal(t, "", empty.Args)
}

func TestAnnotationUnclosed(t *testing.T) {
	annotations := ParseAnnotations("// @Partial(omit(id)")
	require.Len(t, annotations, 1)
	assert.True(t, annotations[0].Unclosed)
	assert.Equal(t, "omit(id)", annotations[0].Args)
}

func TestParseCommentGroupPositions(t *testing.T) {
	src := `package test

// User 用户
// @Partial("UserInfo", omit(id))
type User struct{ id int }
`
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "user.go", src, parser.ParseComments)
	require.NoError(t, err)

	annotations := ParseCommentGroup(fset, file.Decls[0].(*ast.GenDecl).Doc)
	require.Len(t, annotations, 1)

	ann := annotations[0]
	assert.Equal(t, "user.go", ann.Pos.Filename)
	assert.Equal(t, 4, ann.Pos.Line)
	assert.Equal(t, 4, ann.Pos.Column)
	assert.Equal(t, 4, ann.ArgsPos.Line)
	assert.Equal(t, 13, ann.ArgsPos.Column)
}

func TestFilterByNames(t *testing.T) {
	annotations := ParseAnnotations("// @Partial @Other @Partial(omit(a))")
	assert.Len(t, FilterByNames(annotations, "Partial"), 2)
	assert.Len(t, FilterByNames(annotations), 3)
	assert.True(t, HasAnnotation(annotations, "Other"))
	assert.False(t, HasAnnotation(annotations, "Missing"))
	assert.Equal(t, "@Partial", GetAnnotation(annotations, "Partial").Raw)
}
