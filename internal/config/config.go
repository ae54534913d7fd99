package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// 主机缺少 address 元素时的处理方式
const (
	MissingAddressSkip  = "skip"
	MissingAddressAbort = "abort"
)

type Config struct {
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Scan struct {
		SkipEntityCheck bool   `yaml:"skip_entity_check"`
		Strict          bool   `yaml:"strict"`
		MissingAddress  string `yaml:"missing_address"`
	} `yaml:"scan"`

	Output struct {
		CSV        string `yaml:"csv"`
		UTF8BOM    bool   `yaml:"utf8_bom"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"output"`

	IOC struct {
		Extension   string `yaml:"extension"`
		SheetPrefix string `yaml:"sheet_prefix"`
		EmailColumn string `yaml:"email_column"`
		URLColumn   string `yaml:"url_column"`
		EmailFile   string `yaml:"email_file"`
		URLFile     string `yaml:"url_file"`
	} `yaml:"ioc"`
}

// Default 返回内置默认配置
func Default() *Config {
	var cfg Config
	cfg.Log.Level = "info"
	cfg.Scan.Strict = true
	cfg.Scan.MissingAddress = MissingAddressSkip
	cfg.IOC.Extension = ".xlsx"
	cfg.IOC.SheetPrefix = "consolidated"
	cfg.IOC.EmailColumn = "Email_Sender"
	cfg.IOC.URLColumn = "FE_URL"
	cfg.IOC.EmailFile = "combined_IOC_SENDER_EMAIL.csv"
	cfg.IOC.URLFile = "combined_IOC_URLs.csv"
	return &cfg
}

// LoadConfig loads YAML config from file path.
// 文件不存在且 required 为 false 时返回默认配置
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查取值合法性，并为留空的字段补默认值
func (c *Config) Validate() error {
	def := Default()
	c.Scan.MissingAddress = strings.ToLower(strings.TrimSpace(c.Scan.MissingAddress))
	switch c.Scan.MissingAddress {
	case "":
		c.Scan.MissingAddress = def.Scan.MissingAddress
	case MissingAddressSkip, MissingAddressAbort:
	default:
		return fmt.Errorf("scan.missing_address 取值无效: %q（可选 skip/abort）", c.Scan.MissingAddress)
	}

	fill := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		}
	}
	fill(&c.Log.Level, def.Log.Level)
	fill(&c.IOC.Extension, def.IOC.Extension)
	fill(&c.IOC.SheetPrefix, def.IOC.SheetPrefix)
	fill(&c.IOC.EmailColumn, def.IOC.EmailColumn)
	fill(&c.IOC.URLColumn, def.IOC.URLColumn)
	fill(&c.IOC.EmailFile, def.IOC.EmailFile)
	fill(&c.IOC.URLFile, def.IOC.URLFile)
	return nil
}

// WriteDefault 生成带注释的默认配置文件，已存在时不覆盖
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("配置文件 %s 已存在", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("检查配置文件失败: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("写入默认配置文件失败: %w", err)
	}
	return nil
}

const defaultConfigContent = `# config.yaml

# 日志级别：debug / info / warn / error
log:
  level: info

# Nmap XML 解析（nmapcsv）
scan:
  skip_entity_check: false   # 跳过 <!ENTITY 声明检查
  strict: true               # XML 格式错误时直接退出；false 时跳过该文件继续
  missing_address: skip      # 存活主机缺少 address 元素：skip 跳过该主机 / abort 终止该文件

# 输出设置
output:
  csv: ""                    # 扫描报告路径，留空则为 scan_output_<时间戳>.csv
  utf8_bom: false            # 写入 UTF-8 BOM，方便 Excel 打开
  sqlite_path: ""            # 同时归档到 SQLite，留空表示不归档

# IOC 汇总（iocmerge）
ioc:
  extension: ".xlsx"
  sheet_prefix: "consolidated"   # 工作表名前缀（不区分大小写）
  email_column: "Email_Sender"
  url_column: "FE_URL"
  email_file: "combined_IOC_SENDER_EMAIL.csv"
  url_file: "combined_IOC_URLs.csv"
`
