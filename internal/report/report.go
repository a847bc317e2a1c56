// Package report 将生成过程中的错误渲染为终端文本或 JSON
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/donutnomad/partialgen/partialgen"
	"github.com/donutnomad/partialgen/plugin"
	"github.com/fatih/color"
)

// Entry 单条错误，诊断信息会展开位置与编号
type Entry struct {
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Code    string `json:"code,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Type    string `json:"type,omitempty"`
	Config  int    `json:"config,omitempty"` // @Partial 序号，从 1 开始
	Clause  string `json:"clause,omitempty"`
	Ident   string `json:"ident,omitempty"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Location file:line:col，没有位置时为空
func (e Entry) Location() string {
	if e.File == "" && e.Line == 0 {
		return ""
	}
	if e.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column)
	}
	return fmt.Sprintf("%s:%d", e.File, e.Line)
}

// Collect 展开 RunError 与 Diagnostics，按出现顺序返回
func Collect(err error) []Entry {
	if err == nil {
		return nil
	}

	var diags partialgen.Diagnostics
	var diag *partialgen.Diagnostic
	var runErr *plugin.RunError

	switch {
	case errors.As(err, &runErr):
		var entries []Entry
		for _, e := range runErr.Errors {
			entries = append(entries, Collect(e)...)
		}
		return entries
	case errors.As(err, &diags):
		entries := make([]Entry, len(diags))
		for i, d := range diags {
			entries[i] = fromDiagnostic(d)
		}
		return entries
	case errors.As(err, &diag):
		return []Entry{fromDiagnostic(diag)}
	default:
		return []Entry{{Message: err.Error()}}
	}
}

func fromDiagnostic(d *partialgen.Diagnostic) Entry {
	return Entry{
		File:    d.Pos.Filename,
		Line:    d.Pos.Line,
		Column:  d.Pos.Column,
		Code:    d.Code(),
		Kind:    d.Kind.String(),
		Type:    d.Type,
		Config:  d.ConfigIndex + 1,
		Clause:  d.Clause,
		Ident:   d.Ident,
		Message: d.Message,
		Hint:    d.Hint,
	}
}

// Printer 终端输出
type Printer struct {
	w       io.Writer
	noColor bool
}

// NewPrinter 创建终端输出，noColor 关闭颜色
func NewPrinter(w io.Writer, noColor bool) *Printer {
	return &Printer{w: w, noColor: noColor}
}

func (p *Printer) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if p.noColor {
		c.DisableColor()
	}
	return c
}

// Errors 逐条输出错误
//
//	✗ models/user.go:12:18: PG002 UnknownFieldError
//	   omit 中的字段 emial 在 User 中不存在 (@Partial #1)
//	   → 可用字段: id, email, name
func (p *Printer) Errors(err error) {
	entries := Collect(err)
	header := p.color(color.FgRed, color.Bold)
	body := p.color(color.FgRed)
	hint := p.color(color.FgYellow)

	for _, e := range entries {
		if e.Code == "" {
			header.Fprintf(p.w, "✗ %s\n", e.Message)
			continue
		}
		if loc := e.Location(); loc != "" {
			header.Fprintf(p.w, "✗ %s: %s %s\n", loc, e.Code, e.Kind)
		} else {
			header.Fprintf(p.w, "✗ %s %s\n", e.Code, e.Kind)
		}
		if e.Config > 0 {
			body.Fprintf(p.w, "   %s (@Partial #%d)\n", e.Message, e.Config)
		} else {
			body.Fprintf(p.w, "   %s\n", e.Message)
		}
		if e.Hint != "" {
			hint.Fprintf(p.w, "   → %s\n", e.Hint)
		}
	}
	if len(entries) > 1 {
		header.Fprintf(p.w, "共 %d 个错误\n", len(entries))
	}
}

// Stale 输出过期文件及其差异
func (p *Printer) Stale(files []plugin.StaleFile) {
	header := p.color(color.FgYellow, color.Bold)
	red := p.color(color.FgRed)
	green := p.color(color.FgGreen)
	cyan := p.color(color.FgCyan)

	for _, f := range files {
		header.Fprintf(p.w, "⚠ 生成文件已过期: %s\n", f.Path)
		for _, line := range strings.Split(strings.TrimRight(f.Diff, "\n"), "\n") {
			switch {
			case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
				fmt.Fprintln(p.w, line)
			case strings.HasPrefix(line, "@@"):
				cyan.Fprintln(p.w, line)
			case strings.HasPrefix(line, "+"):
				green.Fprintln(p.w, line)
			case strings.HasPrefix(line, "-"):
				red.Fprintln(p.w, line)
			default:
				fmt.Fprintln(p.w, line)
			}
		}
	}
}

// Success 成功信息
func (p *Printer) Success(format string, args ...any) {
	p.color(color.FgGreen, color.Bold).Fprintf(p.w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// Summary 机器可读的运行结果
type Summary struct {
	OK     bool     `json:"ok"`
	Files  []string `json:"files,omitempty"`
	Stale  []string `json:"stale,omitempty"`
	Errors []Entry  `json:"errors,omitempty"`
}

// NewSummary 根据生成的文件、过期文件与错误构造结果
// 过期本身不算错误，只体现在 Stale 中
func NewSummary(stats *plugin.RunStats, err error) Summary {
	var s Summary
	if err != nil && !errors.Is(err, plugin.ErrStale) {
		s.Errors = Collect(err)
	}
	if stats != nil {
		s.Files = stats.Files
		for _, f := range stats.Stale {
			s.Stale = append(s.Stale, f.Path)
		}
	}
	s.OK = len(s.Errors) == 0 && len(s.Stale) == 0
	return s
}

// WriteJSON 以 JSON 输出运行结果
func WriteJSON(w io.Writer, s Summary) error {
	data, err := sonic.ConfigStd.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化运行结果失败: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
