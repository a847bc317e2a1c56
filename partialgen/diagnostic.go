package partialgen

import (
	"fmt"
	"go/token"
	"strings"
)

// Kind 诊断类别
type Kind int

const (
	GrammarError       Kind = iota + 1 // 注解语法错误
	UnknownFieldError                  // omit/optional 引用了不存在的字段
	ConflictError                      // 字段处理方式冲突
	NameCollisionError                 // 生成的名称冲突
	UnsupportedError                   // 不支持的目标
)

func (k Kind) String() string {
	switch k {
	case GrammarError:
		return "GrammarError"
	case UnknownFieldError:
		return "UnknownFieldError"
	case ConflictError:
		return "ConflictError"
	case NameCollisionError:
		return "NameCollisionError"
	case UnsupportedError:
		return "UnsupportedError"
	default:
		return "Unknown"
	}
}

// Code 诊断编号，PG001 起
func (k Kind) Code() string {
	return fmt.Sprintf("PG%03d", int(k))
}

// Diagnostic 带位置的诊断信息
type Diagnostic struct {
	Kind        Kind
	Pos         token.Position
	Type        string // 源结构体名
	ConfigIndex int    // 注解序号（从 0 开始），-1 表示与具体注解无关
	Clause      string // 相关子句：target、derive、omit、optional
	Ident       string // 相关标识符
	Message     string
	Hint        string
}

// Code 诊断编号
func (d *Diagnostic) Code() string {
	return d.Kind.Code()
}

// Error 渲染为 file:line:col: PG00x message (@Partial #i)
func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Pos.IsValid() {
		b.WriteString(d.Pos.String())
		b.WriteString(": ")
	}
	b.WriteString(d.Kind.Code())
	b.WriteString(" ")
	b.WriteString(d.Message)
	if d.ConfigIndex >= 0 {
		fmt.Fprintf(&b, " (@%s #%d)", annotationName, d.ConfigIndex+1)
	}
	return b.String()
}

// Diagnostics 按发现顺序排列的诊断列表
type Diagnostics []*Diagnostic

func (ds Diagnostics) Error() string {
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap 支持 errors.As 取出单个 *Diagnostic
func (ds Diagnostics) Unwrap() []error {
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errs
}

// Err 没有诊断时返回 nil
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	return ds
}

// withType 填充源结构体名
func (ds Diagnostics) withType(name string) Diagnostics {
	for _, d := range ds {
		d.Type = name
	}
	return ds
}

func newDiagnostic(kind Kind, pos token.Position, index int, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Kind:        kind,
		Pos:         pos,
		ConfigIndex: index,
		Message:     fmt.Sprintf(format, args...),
	}
}
