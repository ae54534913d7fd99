package runner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"recon_report/internal/database"
	"recon_report/internal/exporter"
	"recon_report/internal/extract"
	"recon_report/internal/loader"
	"recon_report/internal/model"
	"recon_report/internal/util"
)

// IOCOptions 是 iocmerge 的运行参数
type IOCOptions struct {
	Dir        string
	Extension  string
	Extract    extract.IOCOptions
	EmailFile  string // 相对 Dir 的文件名
	URLFile    string
	Export     exporter.Options
	SQLitePath string
}

// IOCReport 汇总一次运行
type IOCReport struct {
	Workbooks int
	Failed    []string
	Emails    int
	URLs      int
	EmailPath string // 未写出时为空
	URLPath   string
}

// ProcessWorkbook 读取单个工作簿并提取 IOC，记录的来源为文件名
func ProcessWorkbook(path string, opts extract.IOCOptions) (extract.Accumulator, error) {
	sheets, err := loader.ReadWorkbook(path, func(name string) bool {
		return extract.MatchSheet(name, opts.SheetPrefix)
	})
	if err != nil {
		return extract.Accumulator{}, err
	}
	return extract.ExtractWorkbook(filepath.Base(path), sheets, opts), nil
}

// RunIOC 遍历目录下所有工作簿，汇总后一次性写出邮箱和 URL 两个 CSV
func RunIOC(opts IOCOptions) (IOCReport, error) {
	var report IOCReport

	info, err := os.Stat(opts.Dir)
	if err != nil {
		return report, err
	}
	if !info.IsDir() {
		return report, fmt.Errorf("%s 不是目录", opts.Dir)
	}

	files, err := loader.FindWorkbooks(opts.Dir, opts.Extension)
	if err != nil {
		return report, fmt.Errorf("遍历目录失败: %w", err)
	}
	report.Workbooks = len(files)

	var acc extract.Accumulator
	for _, path := range files {
		log.Info("解析工作簿", "file", path)
		got, err := ProcessWorkbook(path, opts.Extract)
		if err != nil {
			log.Error("解析工作簿失败", "file", path, "err", err)
			report.Failed = append(report.Failed, path)
			continue
		}
		log.Debug("提取结果", "file", path, "emails", len(got.Emails), "urls", len(got.URLs))
		acc.Merge(got)
	}

	report.Emails = len(acc.Emails)
	report.URLs = len(acc.URLs)

	if len(acc.Emails) > 0 {
		report.EmailPath = filepath.Join(opts.Dir, opts.EmailFile)
		if err := exporter.WriteIOCs(acc.Emails, model.EmailHeader, report.EmailPath, opts.Export); err != nil {
			return report, fmt.Errorf("写入邮箱汇总失败: %w", err)
		}
		log.Infof("邮箱已保存: %s | %d 条", opts.EmailFile, len(acc.Emails))
	}
	if len(acc.URLs) > 0 {
		report.URLPath = filepath.Join(opts.Dir, opts.URLFile)
		if err := exporter.WriteIOCs(acc.URLs, model.URLHeader, report.URLPath, opts.Export); err != nil {
			return report, fmt.Errorf("写入 URL 汇总失败: %w", err)
		}
		log.Infof("URL 已保存: %s | %d 条", opts.URLFile, len(acc.URLs))
	}
	if acc.Len() == 0 {
		log.Warn("未提取到任何 IOC", "dir", opts.Dir)
	}

	if opts.SQLitePath != "" && acc.Len() > 0 {
		if err := archiveIOCs(opts.SQLitePath, acc); err != nil {
			log.Warn("归档到 SQLite 失败", "err", err)
		}
	}
	return report, nil
}

func archiveIOCs(path string, acc extract.Accumulator) error {
	db, err := database.InitDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	table := util.GenerateTableName("ioc", util.GenerateTaskID())
	if err := database.SaveIOCs(db, table, model.IOCEmail, acc.Emails); err != nil {
		return err
	}
	if err := database.SaveIOCs(db, table, model.IOCURL, acc.URLs); err != nil {
		return err
	}
	counts, err := database.CountByKind(db, table)
	if err != nil {
		return err
	}
	log.Info("已归档到 SQLite", "path", path, "table", table, "email", counts[model.IOCEmail.String()], "url", counts[model.IOCURL.String()])
	return nil
}
