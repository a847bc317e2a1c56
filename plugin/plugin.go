package plugin

// Generator 是代码生成器接口
// 每个 gen（如 partialgen）需要实现此接口
type Generator interface {
	// Name 返回生成器名称
	Name() string

	// Annotations 返回该生成器支持的注解列表
	// 一个注解只能绑定一个生成器
	Annotations() []string

	// SupportedTargets 返回支持的目标类型
	SupportedTargets() []TargetKind

	// ParamDefs 返回注解参数（子句）的说明，用于帮助文本
	ParamDefs() []ParamDef

	// Priority 返回生成器优先级
	// 数字越小优先级越高，输出合并时优先级高的在前面
	// 默认值为 100
	Priority() int

	// Generate 执行代码生成
	// 返回的 GenerateResult 包含 gg 定义，由聚合器统一处理
	Generate(ctx *GenerateContext) (*GenerateResult, error)
}

// BaseGenerator 提供基础实现，可嵌入
type BaseGenerator struct {
	name        string
	annotations []string
	targets     []TargetKind
	paramDefs   []ParamDef
	priority    int // 优先级，数字越小优先级越高
}

func NewBaseGenerator(name string, annotations []string, targets []TargetKind) *BaseGenerator {
	return &BaseGenerator{
		name:        name,
		annotations: annotations,
		targets:     targets,
		priority:    100,
	}
}

// NewBaseGeneratorWithParams 创建带参数说明的基础生成器
func NewBaseGeneratorWithParams(name string, annotations []string, targets []TargetKind, params []ParamDef) *BaseGenerator {
	g := NewBaseGenerator(name, annotations, targets)
	g.paramDefs = params
	return g
}

func (g *BaseGenerator) Name() string {
	return g.name
}

func (g *BaseGenerator) Annotations() []string {
	return g.annotations
}

func (g *BaseGenerator) SupportedTargets() []TargetKind {
	return g.targets
}

func (g *BaseGenerator) ParamDefs() []ParamDef {
	return g.paramDefs
}

// SetParamDefs 设置参数说明
func (g *BaseGenerator) SetParamDefs(params []ParamDef) *BaseGenerator {
	g.paramDefs = params
	return g
}

// Priority 返回生成器优先级
func (g *BaseGenerator) Priority() int {
	return g.priority
}

// SetPriority 设置生成器优先级，数字越小优先级越高
func (g *BaseGenerator) SetPriority(priority int) *BaseGenerator {
	g.priority = priority
	return g
}
