package utils

import (
	"fmt"
	"os"

	"golang.org/x/tools/imports"
)

// FormatSource 使用 goimports 格式化生成的代码
// filename 仅用于错误信息和导入分组
func FormatSource(filename string, src []byte) ([]byte, error) {
	formatted, err := imports.Process(filename, src, &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("格式化 %s 失败: %w", filename, err)
	}
	return formatted, nil
}

// WriteFormat 格式化并写入文件
// 格式化失败时仍写入原始内容，便于排查生成结果
func WriteFormat(path string, src []byte) error {
	formatted, err := FormatSource(path, src)
	if err != nil {
		if writeErr := os.WriteFile(path, src, 0644); writeErr != nil {
			return fmt.Errorf("写入文件失败: %w", writeErr)
		}
		return err
	}
	return os.WriteFile(path, formatted, 0644)
}
