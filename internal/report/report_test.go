package report

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/partialgen/partialgen"
	"github.com/donutnomad/partialgen/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unknownField() *partialgen.Diagnostic {
	return &partialgen.Diagnostic{
		Kind:        partialgen.UnknownFieldError,
		Pos:         token.Position{Filename: "models/user.go", Line: 12, Column: 18},
		Type:        "User",
		ConfigIndex: 0,
		Clause:      "omit",
		Ident:       "emial",
		Message:     "omit 中的字段 emial 在 User 中不存在",
		Hint:        "可用字段: id, email",
	}
}

func unsupported() *partialgen.Diagnostic {
	return &partialgen.Diagnostic{
		Kind:        partialgen.UnsupportedError,
		Type:        "Box",
		ConfigIndex: -1,
		Message:     "不支持带类型参数的结构体 Box",
	}
}

func TestCollect(t *testing.T) {
	assert.Nil(t, Collect(nil))

	runErr := &plugin.RunError{Errors: []error{
		partialgen.Diagnostics{unknownField(), unsupported()},
		errors.New("写入文件失败"),
	}}
	entries := Collect(fmt.Errorf("运行失败: %w", runErr))
	require.Len(t, entries, 3)

	assert.Equal(t, Entry{
		File:    "models/user.go",
		Line:    12,
		Column:  18,
		Code:    "PG002",
		Kind:    "UnknownFieldError",
		Type:    "User",
		Config:  1,
		Clause:  "omit",
		Ident:   "emial",
		Message: "omit 中的字段 emial 在 User 中不存在",
		Hint:    "可用字段: id, email",
	}, entries[0])
	assert.Equal(t, "models/user.go:12:18", entries[0].Location())

	assert.Equal(t, "PG005", entries[1].Code)
	assert.Equal(t, 0, entries[1].Config)
	assert.Empty(t, entries[1].Location())

	assert.Equal(t, Entry{Message: "写入文件失败"}, entries[2])
}

func TestPrinterErrors(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true).Errors(partialgen.Diagnostics{unknownField(), unsupported()})

	out := buf.String()
	assert.Contains(t, out, "✗ models/user.go:12:18: PG002 UnknownFieldError\n")
	assert.Contains(t, out, "   omit 中的字段 emial 在 User 中不存在 (@Partial #1)\n")
	assert.Contains(t, out, "   → 可用字段: id, email\n")
	assert.Contains(t, out, "✗ PG005 UnsupportedError\n   不支持带类型参数的结构体 Box\n")
	assert.Contains(t, out, "共 2 个错误")
	assert.NotContains(t, out, "\x1b[")
}

func TestPrinterStale(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, true).Stale([]plugin.StaleFile{{
		Path: "models/user_partial.go",
		Diff: "--- models/user_partial.go\n+++ models/user_partial.go (generated)\n@@ -1 +1 @@\n-old\n+new\n",
	}})

	assert.Equal(t, "⚠ 生成文件已过期: models/user_partial.go\n"+
		"--- models/user_partial.go\n"+
		"+++ models/user_partial.go (generated)\n"+
		"@@ -1 +1 @@\n-old\n+new\n", buf.String())
}

func TestSummaryJSON(t *testing.T) {
	stats := &plugin.RunStats{
		Files: []string{"a_partial.go", "b_partial.go"},
		Stale: []plugin.StaleFile{{Path: "b_partial.go"}},
	}

	s := NewSummary(stats, fmt.Errorf("%w: 1 个文件", plugin.ErrStale))
	assert.False(t, s.OK)
	assert.Empty(t, s.Errors)
	assert.Equal(t, []string{"b_partial.go"}, s.Stale)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewSummary(nil, partialgen.Diagnostics{unknownField()})))

	var decoded Summary
	require.NoError(t, sonic.ConfigStd.Unmarshal(buf.Bytes(), &decoded))
	assert.False(t, decoded.OK)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "PG002", decoded.Errors[0].Code)
	assert.Contains(t, buf.String(), `"ident": "emial"`)

	assert.True(t, NewSummary(&plugin.RunStats{Files: []string{"a_partial.go"}}, nil).OK)
}
