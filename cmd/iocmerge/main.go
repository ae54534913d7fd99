package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"recon_report/internal/config"
	"recon_report/internal/exporter"
	"recon_report/internal/extract"
	"recon_report/internal/runner"
	"recon_report/internal/util"
)

const usage = "iocmerge <folder_path>"

func main() {
	app := &cli.App{
		Name:      "iocmerge",
		Usage:     "汇总目录下工作簿中的发件邮箱与 URL IOC",
		UsageText: usage,
		Flags: []cli.Flag{
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

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
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

	if c.NArg() != 1 {
		return cli.Exit("用法: "+usage, 1)
	}
	target := c.Args().First()
	if info, err := os.Stat(target); err != nil || !info.IsDir() {
		return cli.Exit(fmt.Sprintf("%s 不是目录", target), 1)
	}

	cfg, err := config.LoadConfig(c.String("config"), c.IsSet("config"))
	if err != nil {
		return err
	}
	if c.IsSet("sqlite") {
		cfg.Output.SQLitePath = c.String("sqlite")
	}
	if c.Bool("bom") {
		cfg.Output.UTF8BOM = true
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if err := util.SetupLogger(cfg.Log.Level, "iocmerge"); err != nil {
		return fmt.Errorf("日志级别无效: %w", err)
	}

	report, err := runner.RunIOC(runner.IOCOptions{
		Dir:       target,
		Extension: cfg.IOC.Extension,
		Extract: extract.IOCOptions{
			SheetPrefix: cfg.IOC.SheetPrefix,
			EmailColumn: cfg.IOC.EmailColumn,
			URLColumn:   cfg.IOC.URLColumn,
		},
		EmailFile:  cfg.IOC.EmailFile,
		URLFile:    cfg.IOC.URLFile,
		Export:     exporter.Options{BOM: cfg.Output.UTF8BOM},
		SQLitePath: cfg.Output.SQLitePath,
	})
	if err != nil {
		return err
	}

	log.Info("处理完毕", "workbooks", report.Workbooks, "failed", len(report.Failed),
		"emails", report.Emails, "urls", report.URLs)
	return nil
}
