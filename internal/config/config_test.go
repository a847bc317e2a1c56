package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Async:    true,
		Format:   FormatText,
		Debounce: time.Second,
	}, cfg)
	assert.Empty(t, cfg.OutputPath())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := "output: $FILE_types.go\nasync: false\nformat: json\ndebounce: 250ms\nworkers: 4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partialgen.yaml"), []byte(content), 0o644))

	cfg, err := Load(New(dir))
	require.NoError(t, err)
	assert.Equal(t, "$FILE_types.go", cfg.OutputPath())
	assert.False(t, cfg.Async)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 4, cfg.Workers)

	cfg.NoOutput = true
	assert.Empty(t, cfg.OutputPath())
}

func TestLoad_EnvAndFlags(t *testing.T) {
	t.Setenv("PARTIALGEN_NO_COLOR", "true")
	t.Setenv("PARTIALGEN_OUTPUT", "from_env.go")

	v := New(t.TempDir())
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("output", "", "")
	require.NoError(t, v.BindPFlag(KeyOutput, flags.Lookup("output")))
	require.NoError(t, flags.Parse([]string{"--output", "from_flag.go"}))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.True(t, cfg.NoColor)
	// 显式设置的参数优先于环境变量
	assert.Equal(t, "from_flag.go", cfg.Output)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "partialgen.yaml"), []byte("format: xml\n"), 0o644))
	_, err := Load(New(dir))
	assert.ErrorContains(t, err, `format 只能是 text 或 json，得到 "xml"`)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "partialgen.yaml"), []byte("format: [\n"), 0o644))
	_, err = Load(New(dir))
	assert.ErrorContains(t, err, "读取配置文件失败")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "partialgen.yaml"), []byte("workers: -2\n"), 0o644))
	_, err = Load(New(dir))
	assert.ErrorContains(t, err, "workers 不能为负数: -2")
}
