package utils

import (
	"strings"
	"unicode"
)

// commonInitialisms 常见首字母缩略词列表，与 GORM 保持一致
var commonInitialisms = []string{
	"API", "ASCII", "CPU", "CSS", "DNS", "EOF", "GUID", "HTML", "HTTP", "HTTPS",
	"ID", "IP", "JSON", "LHS", "QPS", "RAM", "RHS", "RPC", "SLA", "SMTP",
	"SSH", "TLS", "TTL", "UID", "UI", "UUID", "URI", "URL", "UTF8", "VM",
	"XML", "XSRF", "XSS",
}

// commonInitialismsReplacer 用于将缩略词转换为首字母大写形式
var commonInitialismsReplacer *strings.Replacer

// initialismSet 小写单词 -> 缩略词，UpperCamelCase 还原缩略词时使用
var initialismSet = make(map[string]string, len(commonInitialisms))

func init() {
	replacerArgs := make([]string, 0, len(commonInitialisms)*2)
	for _, initialism := range commonInitialisms {
		// API -> Api, HTTP -> Http
		replacerArgs = append(replacerArgs, initialism, toTitleCase(initialism))
		initialismSet[strings.ToLower(initialism)] = initialism
	}
	commonInitialismsReplacer = strings.NewReplacer(replacerArgs...)
}

// toTitleCase 将字符串转换为首字母大写形式
func toTitleCase(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// ToSnakeCase 将驼峰命名转换为蛇形(下划线)命名，与 GORM 的 toDBName 保持一致
// 参考: gorm/schema/naming.go:131-188
func ToSnakeCase(name string) string {
	if name == "" {
		return ""
	}

	// 首字母缩略词处理: API -> Api, HTTP -> Http
	value := commonInitialismsReplacer.Replace(name)

	var (
		buf                            strings.Builder
		lastCase, nextCase, nextNumber bool
		curCase                        = value[0] <= 'Z' && value[0] >= 'A'
	)

	for i, v := range value[:len(value)-1] {
		nextCase = value[i+1] <= 'Z' && value[i+1] >= 'A'
		nextNumber = value[i+1] >= '0' && value[i+1] <= '9'

		if curCase {
			if lastCase && (nextCase || nextNumber) {
				buf.WriteRune(v + 32) // 转小写
			} else {
				if i > 0 && value[i-1] != '_' && value[i+1] != '_' {
					buf.WriteByte('_') // 插入下划线
				}
				buf.WriteRune(v + 32) // 转小写
			}
		} else {
			buf.WriteRune(v)
		}

		lastCase = curCase
		curCase = nextCase
	}

	// 处理最后一个字符
	if curCase {
		if !lastCase && len(value) > 1 {
			buf.WriteByte('_')
		}
		buf.WriteByte(value[len(value)-1] + 32)
	} else {
		buf.WriteByte(value[len(value)-1])
	}

	return buf.String()
}

// splitWords 按蛇形规则拆分单词，非字母数字字符均视为分隔符
func splitWords(name string) []string {
	return strings.FieldsFunc(ToSnakeCase(name), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// UpperCamelCase 将任意命名转换为大驼峰，缩略词保持全大写
//
//	to_user_account -> ToUserAccount
//	http_url        -> HTTPURL
//	userId          -> UserID
func UpperCamelCase(name string) string {
	var buf strings.Builder
	for _, word := range splitWords(name) {
		if initialism, ok := initialismSet[word]; ok {
			buf.WriteString(initialism)
			continue
		}
		runes := []rune(word)
		buf.WriteString(strings.ToUpper(string(runes[0])))
		buf.WriteString(string(runes[1:]))
	}
	return buf.String()
}

// LowerCamelCase 将任意命名转换为小驼峰，首个单词整体小写
//
//	ID        -> id
//	CreatedAt -> createdAt
//	UserID    -> userID
func LowerCamelCase(name string) string {
	words := splitWords(name)
	if len(words) == 0 {
		return ""
	}
	return words[0] + UpperCamelCase(strings.Join(words[1:], "_"))
}

// ExportName 返回字段的导出名称
// 已导出的名称原样返回，未导出的名称按 UpperCamelCase 转换
func ExportName(name string) string {
	if name == "" {
		return ""
	}
	if r := []rune(name)[0]; unicode.IsUpper(r) {
		return name
	}
	exported := UpperCamelCase(name)
	if exported == "" || !unicode.IsUpper([]rune(exported)[0]) {
		// 数字开头或纯符号的名称，添加前缀保证可导出
		exported = "F" + exported
	}
	return exported
}
