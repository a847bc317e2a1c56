package plugin

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// exampleProvider 生成器可选实现，提供帮助文本中的示例
type exampleProvider interface {
	Examples() []string
}

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder

	for _, gen := range generators {
		annotations := gen.Annotations()
		if len(annotations) == 0 {
			continue
		}
		mainAnnotation := annotations[0]

		sb.WriteString(fmt.Sprintf("  @%s - %s\n", mainAnnotation, gen.Name()))

		if paramDefs := gen.ParamDefs(); len(paramDefs) > 0 {
			sb.WriteString("    参数:\n")
			names := make([]string, len(paramDefs))
			width := 0
			for i, param := range paramDefs {
				names[i] = FormatParamDef(param)
				width = max(width, runewidth.StringWidth(names[i]))
			}
			for i, param := range paramDefs {
				// 中文说明按显示宽度对齐
				sb.WriteString(fmt.Sprintf("      %s  %s\n", runewidth.FillRight(names[i], width), param.Description))
			}
		}

		sb.WriteString("    示例:\n")
		sb.WriteString(fmt.Sprintf("      @%s\n", mainAnnotation))
		if p, ok := gen.(exampleProvider); ok {
			for _, example := range p.Examples() {
				sb.WriteString(fmt.Sprintf("      %s\n", example))
			}
		}

		sb.WriteString("\n")
	}

	sb.WriteString("  输出文件由包级指令控制:\n")
	sb.WriteString("      // go:gogen: plugin:<生成器名> -output `$FILE_xxx`\n")

	return sb.String()
}

// FormatParamDef 格式化参数名列，附带必填与默认值标记
func FormatParamDef(param ParamDef) string {
	s := param.Name
	if param.Required {
		s += " (必填)"
	}
	if param.Default != "" {
		s += fmt.Sprintf(" [默认: %s]", param.Default)
	}
	return s
}
