package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"recon_report/internal/config"
	"recon_report/internal/exporter"
	"recon_report/internal/runner"
	"recon_report/internal/util"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "nmapcsv",
		Usage:     "Nmap XML Parser → CSV Report Tool",
		UsageText: "nmapcsv -f scan.xml [other.xml ...] [-csv report.csv] [-s]",
		// 文件名里可能带逗号，-f 不按逗号拆分
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "filename",
				Aliases: []string{"f"},
				Usage:   "Nmap XML 扫描文件路径，可跟多个文件",
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "输出 CSV 文件（默认 scan_output_<时间戳>.csv）",
			},
			&cli.BoolFlag{
				Name:    "skip_entity_check",
				Aliases: []string{"s"},
				Usage:   "跳过 XML 实体声明检查",
			},
			&cli.BoolFlag{
				Name:  "keep-going",
				Usage: "XML 格式错误时跳过该文件而不是退出",
			},
			&cli.StringFlag{
				Name:  "sqlite",
				Usage: "同时归档到指定 SQLite 文件",
			},
			&cli.BoolFlag{
				Name:  "bom",
				Usage: "输出文件写入 UTF-8 BOM",
			},
			&cli.StringFlag{
				Name:  "config",
				Value: "config.yaml",
				Usage: "配置文件路径，不存在时使用默认配置",
			},
			&cli.StringFlag{
				Name:  "write-config",
				Usage: "生成默认配置文件后退出",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "日志级别 debug/info/warn/error",
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	if path := c.String("write-config"); path != "" {
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("默认配置文件已生成: %s\n", path)
		return nil
	}

	args := collectArgs(c)
	configPath, configSet := args.String(c, "config")
	cfg, err := config.LoadConfig(configPath, configSet)
	if err != nil {
		return err
	}
	applyFlags(c, args, cfg)
	if err := util.SetupLogger(cfg.Log.Level, "nmapcsv"); err != nil {
		return fmt.Errorf("日志级别无效: %w", err)
	}

	if len(args.Inputs) == 0 {
		cli.ShowAppHelp(c)
		log.Error("请使用 -f 指定至少一个 XML 扫描文件")
		return cli.Exit("", 1)
	}

	report, err := runner.RunScan(runner.ScanOptions{
		Inputs:                args.Inputs,
		CSV:                   cfg.Output.CSV,
		SkipEntityCheck:       cfg.Scan.SkipEntityCheck,
		Strict:                cfg.Scan.Strict,
		AbortOnMissingAddress: cfg.Scan.MissingAddress == config.MissingAddressAbort,
		Export:                exporter.Options{BOM: cfg.Output.UTF8BOM, CRLF: true},
		SQLitePath:            cfg.Output.SQLitePath,
	})
	if err != nil {
		var pe *runner.ParseError
		if errors.As(err, &pe) {
			return cli.Exit("", 1)
		}
		return err
	}

	log.Info("处理完毕", "written", len(report.Written), "skipped", len(report.Skipped))
	return nil
}

// 位置参数之后仍然识别的 flag，值表示是否带参数
var trailingFlags = map[string]struct {
	name       string
	takesValue bool
}{
	"csv":               {"csv", true},
	"s":                 {"skip_entity_check", false},
	"skip_entity_check": {"skip_entity_check", false},
	"keep-going":        {"keep-going", false},
	"sqlite":            {"sqlite", true},
	"bom":               {"bom", false},
	"config":            {"config", true},
	"log-level":         {"log-level", true},
}

// cliArgs 是整理后的命令行输入。
// urfave/cli 遇到第一个位置参数就停止解析 flag，
// 所以 -f a.xml b.xml -csv out.csv 里的 -csv 要从剩余参数中取出。
type cliArgs struct {
	Inputs   []string
	trailing map[string]string
}

func collectArgs(c *cli.Context) cliArgs {
	args := cliArgs{
		Inputs:   append([]string{}, c.StringSlice("filename")...),
		trailing: make(map[string]string),
	}

	rest := c.Args().Slice()
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		if arg == "--" {
			args.Inputs = append(args.Inputs, rest[i+1:]...)
			break
		}
		if len(arg) < 2 || arg[0] != '-' {
			args.Inputs = append(args.Inputs, arg)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if name == "f" || name == "filename" {
			if hasValue {
				args.Inputs = append(args.Inputs, value)
			}
			continue
		}
		flag, ok := trailingFlags[name]
		if !ok {
			args.Inputs = append(args.Inputs, arg)
			continue
		}
		switch {
		case hasValue:
		case !flag.takesValue:
			value = "true"
		case i+1 < len(rest):
			i++
			value = rest[i]
		}
		args.trailing[flag.name] = value
	}
	return args
}

// String 取字符串参数，位置参数之后出现的优先
func (a cliArgs) String(c *cli.Context, name string) (string, bool) {
	if v, ok := a.trailing[name]; ok {
		return v, true
	}
	return c.String(name), c.IsSet(name)
}

func (a cliArgs) Bool(c *cli.Context, name string) bool {
	if v, ok := a.trailing[name]; ok {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return c.Bool(name)
}

// applyFlags 命令行参数覆盖配置文件
func applyFlags(c *cli.Context, args cliArgs, cfg *config.Config) {
	if v, ok := args.String(c, "csv"); ok {
		cfg.Output.CSV = v
	}
	if args.Bool(c, "skip_entity_check") {
		cfg.Scan.SkipEntityCheck = true
	}
	if args.Bool(c, "keep-going") {
		cfg.Scan.Strict = false
	}
	if v, ok := args.String(c, "sqlite"); ok {
		cfg.Output.SQLitePath = v
	}
	if args.Bool(c, "bom") {
		cfg.Output.UTF8BOM = true
	}
	if v, ok := args.String(c, "log-level"); ok {
		cfg.Log.Level = v
	}
}
