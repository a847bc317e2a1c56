package partialgen

import (
	"go/scanner"
	"go/token"
	"strconv"

	"github.com/donutnomad/partialgen/plugin"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	clauseTarget   = "target"
	clauseDerive   = "derive"
	clauseOmit     = "omit"
	clauseOptional = "optional"
)

// clauseKeywords 可用的子句关键字
var clauseKeywords = []string{clauseDerive, clauseOmit, clauseOptional}

// Ident 注解中出现的标识符及其位置
type Ident struct {
	Name string
	Pos  token.Position
}

// Config 单个 @Partial 注解的解析结果
// Omit 与 Optional 互不相交
type Config struct {
	Index      int               // 在同一结构体上的注解序号，从 0 开始
	Pos        token.Position    // '@' 的位置
	TargetName mo.Option[string] // 显式指定的目标类型名
	TargetPos  token.Position
	Derives    []Ident
	Omit       []Ident
	Optional   []Ident
}

// OmitNames 省略字段名列表
func (c *Config) OmitNames() []string {
	return lo.Map(c.Omit, func(i Ident, _ int) string { return i.Name })
}

// OptionalNames 可选字段名列表
func (c *Config) OptionalNames() []string {
	return lo.Map(c.Optional, func(i Ident, _ int) string { return i.Name })
}

// ParseConfig 解析 @Partial 注解参数
//
//	@Partial
//	@Partial("UserInfo", derive(Debug), omit(id, password), optional(name),)
//
// 子句顺序任意，每种最多出现一次，允许结尾逗号
func ParseConfig(ann *plugin.Annotation, index int) (*Config, Diagnostics) {
	cfg := &Config{Index: index, Pos: ann.Pos}
	if ann.Unclosed {
		d := newDiagnostic(GrammarError, ann.Pos, index, "注解括号未闭合")
		d.Hint = "检查 @Partial(...) 的括号是否成对"
		return nil, Diagnostics{d}
	}
	if !ann.HasArgs {
		return cfg, nil
	}

	p := newConfigParser(ann, index)
	if d := p.parse(cfg); d != nil {
		return nil, Diagnostics{d}
	}
	if ds := checkDisjoint(cfg); len(ds) > 0 {
		return nil, ds
	}
	return cfg, nil
}

// checkDisjoint 同一个字段不能同时出现在 omit 和 optional 中
func checkDisjoint(cfg *Config) Diagnostics {
	omitted := lo.SliceToMap(cfg.Omit, func(i Ident) (string, Ident) { return i.Name, i })

	var ds Diagnostics
	for _, ident := range cfg.Optional {
		first, ok := omitted[ident.Name]
		if !ok {
			continue
		}
		d := newDiagnostic(ConflictError, ident.Pos, cfg.Index,
			"字段 %s 同时出现在 omit 和 optional 中", ident.Name)
		d.Clause = clauseOptional
		d.Ident = ident.Name
		d.Hint = "omit 位于 " + first.Pos.String() + "，一个字段只能选择一种处理方式"
		ds = append(ds, d)
	}
	return ds
}

// configParser 基于 go/scanner 的注解参数解析器
//
//	args   := [clause {',' clause}] [',']
//	clause := STRING | IDENT '(' [IDENT {',' IDENT} [',']] ')'
type configParser struct {
	scanner scanner.Scanner
	file    *token.File
	base    token.Position // 参数第一个字符在源文件中的位置
	index   int
	scanErr *Diagnostic

	// 当前 token
	pos token.Pos
	tok token.Token
	lit string
}

func newConfigParser(ann *plugin.Annotation, index int) *configParser {
	p := &configParser{base: ann.ArgsPos, index: index}
	if !p.base.IsValid() {
		p.base = token.Position{Line: 1, Column: 1}
	}

	fset := token.NewFileSet()
	p.file = fset.AddFile(p.base.Filename, -1, len(ann.Args))
	p.scanner.Init(p.file, []byte(ann.Args), func(pos token.Position, msg string) {
		if p.scanErr == nil {
			p.scanErr = newDiagnostic(GrammarError, p.position(p.file.Pos(pos.Offset)), index, "%s", msg)
		}
	}, 0)
	return p
}

// position 将参数内的位置映射回源文件
func (p *configParser) position(pos token.Pos) token.Position {
	rel := p.file.Position(pos)
	abs := token.Position{
		Filename: p.base.Filename,
		Offset:   p.base.Offset + rel.Offset,
		Line:     p.base.Line + rel.Line - 1,
		Column:   rel.Column,
	}
	if rel.Line == 1 {
		abs.Column = p.base.Column + rel.Column - 1
	}
	return abs
}

func (p *configParser) next() {
	for {
		p.pos, p.tok, p.lit = p.scanner.Scan()
		// 跳过扫描器在换行与结尾处自动插入的分号
		if p.tok != token.SEMICOLON || p.lit != "\n" {
			return
		}
	}
}

func (p *configParser) errorf(pos token.Pos, format string, args ...any) *Diagnostic {
	if p.scanErr != nil {
		return p.scanErr
	}
	return newDiagnostic(GrammarError, p.position(pos), p.index, format, args...)
}

// describe 当前 token 的可读描述
func (p *configParser) describe() string {
	switch {
	case p.tok == token.EOF:
		return "输入结束"
	case p.tok == token.IDENT, p.tok.IsLiteral(), p.tok == token.ILLEGAL:
		return strconv.Quote(p.lit)
	case p.tok.IsKeyword():
		return "关键字 " + p.tok.String()
	default:
		return "'" + p.tok.String() + "'"
	}
}

func (p *configParser) parse(cfg *Config) *Diagnostic {
	p.next()
	seen := make(map[string]bool)
	for p.tok != token.EOF {
		if d := p.parseClause(cfg, seen); d != nil {
			return d
		}
		switch p.tok {
		case token.COMMA:
			p.next()
		case token.EOF:
		default:
			return p.errorf(p.pos, "期望 ',' 或参数结束，得到 %s", p.describe())
		}
	}
	return p.scanErr
}

func (p *configParser) parseClause(cfg *Config, seen map[string]bool) *Diagnostic {
	pos := p.pos
	switch p.tok {
	case token.STRING:
		if seen[clauseTarget] {
			d := p.errorf(pos, "重复指定目标类型名 %s", p.lit)
			d.Clause = clauseTarget
			return d
		}
		seen[clauseTarget] = true

		name, err := strconv.Unquote(p.lit)
		if err != nil || !token.IsIdentifier(name) {
			d := p.errorf(pos, "目标类型名 %s 不是合法的 Go 标识符", p.lit)
			d.Clause = clauseTarget
			return d
		}
		cfg.TargetName = mo.Some(name)
		cfg.TargetPos = p.position(pos)
		p.next()
		return nil

	case token.IDENT:
		keyword := p.lit
		if !lo.Contains(clauseKeywords, keyword) {
			d := p.errorf(pos, "未知子句 %q", keyword)
			d.Clause = keyword
			d.Hint = "可用子句: derive, omit, optional"
			return d
		}
		if seen[keyword] {
			d := p.errorf(pos, "子句 %s 重复出现", keyword)
			d.Clause = keyword
			return d
		}
		seen[keyword] = true

		p.next()
		if p.tok != token.LPAREN {
			d := p.errorf(p.pos, "%s 之后期望 '('，得到 %s", keyword, p.describe())
			d.Clause = keyword
			return d
		}
		idents, d := p.parseIdentList(keyword)
		if d != nil {
			return d
		}
		switch keyword {
		case clauseDerive:
			cfg.Derives = idents
		case clauseOmit:
			cfg.Omit = idents
		case clauseOptional:
			cfg.Optional = idents
		}
		return nil

	default:
		return p.errorf(pos, "期望目标类型名字符串或子句，得到 %s", p.describe())
	}
}

// parseIdentList 解析 '(' 之后的标识符列表，消费结尾的 ')'
func (p *configParser) parseIdentList(clause string) ([]Ident, *Diagnostic) {
	p.next()
	idents := []Ident{}
	seen := make(map[string]bool)
	for p.tok != token.RPAREN {
		if p.tok != token.IDENT {
			d := p.errorf(p.pos, "%s 中期望标识符，得到 %s", clause, p.describe())
			d.Clause = clause
			return nil, d
		}
		if seen[p.lit] {
			d := p.errorf(p.pos, "%s 中重复的标识符 %s", clause, p.lit)
			d.Clause = clause
			d.Ident = p.lit
			return nil, d
		}
		seen[p.lit] = true
		idents = append(idents, Ident{Name: p.lit, Pos: p.position(p.pos)})

		p.next()
		switch p.tok {
		case token.COMMA:
			p.next()
		case token.RPAREN:
		default:
			d := p.errorf(p.pos, "%s 中期望 ',' 或 ')'，得到 %s", clause, p.describe())
			d.Clause = clause
			return nil, d
		}
	}
	p.next()
	return idents, nil
}
