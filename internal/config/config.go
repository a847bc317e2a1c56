// Package config 加载命令行配置：partialgen.yaml、PARTIALGEN_* 环境变量与命令行参数
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// 配置键
const (
	KeyOutput   = "output"
	KeyNoOutput = "no_output"
	KeyAsync    = "async"
	KeyVerbose  = "verbose"
	KeyNoColor  = "no_color"
	KeyFormat   = "format"
	KeyDebounce = "debounce"
	KeyWorkers  = "workers"
)

// 输出格式
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config 命令行配置
type Config struct {
	Output   string        `mapstructure:"output"`    // 默认输出路径，支持 $FILE、$PACKAGE
	NoOutput bool          `mapstructure:"no_output"` // 忽略 Output，使用生成器自己的默认文件
	Async    bool          `mapstructure:"async"`
	Verbose  bool          `mapstructure:"verbose"`
	NoColor  bool          `mapstructure:"no_color"`
	Format   string        `mapstructure:"format"`
	Debounce time.Duration `mapstructure:"debounce"` // dev 模式防抖时间
	Workers  int           `mapstructure:"workers"`  // 解析并发数，0 表示 CPU 数
}

// OutputPath 传给 plugin.RunOptions 的输出路径
func (c *Config) OutputPath() string {
	if c.NoOutput {
		return ""
	}
	return c.Output
}

// New 创建 viper 实例，设置默认值与环境变量前缀
// paths 为配置文件搜索目录，为空时只搜索当前目录
func New(paths ...string) *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyNoOutput, false)
	v.SetDefault(KeyAsync, true)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyFormat, FormatText)
	v.SetDefault(KeyDebounce, time.Second)
	v.SetDefault(KeyWorkers, 0)

	v.SetConfigName("partialgen")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("PARTIALGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load 读取配置文件（不存在时使用默认值）并校验
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("format 只能是 %s 或 %s，得到 %q", FormatText, FormatJSON, c.Format)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce 不能为负数: %s", c.Debounce)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers 不能为负数: %d", c.Workers)
	}
	return nil
}
