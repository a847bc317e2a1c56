package plugin

import (
	"go/ast"
	"go/token"
	"strings"
)

// annotationMatch 注解在文本中的字节区间
type annotationMatch struct {
	start     int // '@' 偏移
	end       int // 注解结束偏移（不含）
	name      string
	argsStart int // '(' 之后第一个字节，-1 表示没有括号
	argsEnd   int // 配对的 ')' 偏移，未闭合时为文本末尾
	closed    bool
}

// findAnnotations 查找文本中的 @Name 与 @Name(...)
// 括号按层级配对，字符串字面量内的括号不计入，因此 @Partial(omit(a), derive(B)) 可以完整识别
func findAnnotations(text string) []annotationMatch {
	var matches []annotationMatch
	for i := 0; i < len(text); i++ {
		// foo@bar.com 这类文本不是注解
		if text[i] != '@' || (i > 0 && isWordByte(text[i-1])) {
			continue
		}
		j := i + 1
		for j < len(text) && isWordByte(text[j]) {
			j++
		}
		if j == i+1 {
			continue
		}

		m := annotationMatch{start: i, end: j, name: text[i+1 : j], argsStart: -1}
		if j < len(text) && text[j] == '(' {
			m.argsStart = j + 1
			m.argsEnd, m.closed = matchParen(text, j)
			m.end = m.argsEnd
			if m.closed {
				m.end++
			}
		}
		matches = append(matches, m)
		i = m.end - 1
	}
	return matches
}

// matchParen 从 open 处的 '(' 开始寻找配对的 ')'
func matchParen(text string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(text); i++ {
		switch c := text[i]; c {
		case '"', '`', '\'':
			j := i + 1
			for j < len(text) && text[j] != c {
				if text[j] == '\\' && c != '`' {
					j++
				}
				j++
			}
			if j >= len(text) {
				return len(text), false
			}
			i = j
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return len(text), false
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func (m annotationMatch) toAnnotation(text string) *Annotation {
	ann := &Annotation{
		Name: m.name,
		Raw:  text[m.start:m.end],
	}
	if m.argsStart >= 0 {
		ann.HasArgs = true
		ann.Args = text[m.argsStart:m.argsEnd]
		ann.Unclosed = !m.closed
	}
	return ann
}

// ParseAnnotations 从注释文本中解析所有注解，不带位置信息
func ParseAnnotations(comment string) []*Annotation {
	var annotations []*Annotation
	for _, line := range strings.Split(comment, "\n") {
		for _, m := range findAnnotations(line) {
			annotations = append(annotations, m.toAnnotation(line))
		}
	}
	return annotations
}

// ParseCommentGroup 解析注释组中的注解，并记录 '@' 与参数起点在源文件中的位置
func ParseCommentGroup(fset *token.FileSet, cg *ast.CommentGroup) []*Annotation {
	if cg == nil {
		return nil
	}
	var annotations []*Annotation
	for _, c := range cg.List {
		for _, m := range findAnnotations(c.Text) {
			ann := m.toAnnotation(c.Text)
			ann.Pos = fset.Position(c.Slash + token.Pos(m.start))
			if m.argsStart >= 0 {
				ann.ArgsPos = fset.Position(c.Slash + token.Pos(m.argsStart))
			}
			annotations = append(annotations, ann)
		}
	}
	return annotations
}

// FilterByNames 过滤指定名称的注解
func FilterByNames(annotations []*Annotation, names ...string) []*Annotation {
	if len(names) == 0 {
		return annotations
	}

	nameSet := make(map[string]bool)
	for _, n := range names {
		nameSet[n] = true
	}

	var result []*Annotation
	for _, ann := range annotations {
		if nameSet[ann.Name] {
			result = append(result, ann)
		}
	}
	return result
}

// HasAnnotation 检查是否包含指定注解
func HasAnnotation(annotations []*Annotation, name string) bool {
	return GetAnnotation(annotations, name) != nil
}

// GetAnnotation 获取指定名称的第一个注解
func GetAnnotation(annotations []*Annotation, name string) *Annotation {
	for _, ann := range annotations {
		if ann.Name == name {
			return ann
		}
	}
	return nil
}
