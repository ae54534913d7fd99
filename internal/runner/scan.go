package runner

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"recon_report/internal/analysis"
	"recon_report/internal/database"
	"recon_report/internal/exporter"
	"recon_report/internal/extract"
	"recon_report/internal/loader"
	"recon_report/internal/model"
	"recon_report/internal/util"
)

// ParseError 表示输入文档不是合法 XML，严格模式下终止整个运行
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("XML 格式错误 %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ScanOptions 是 nmapcsv 的运行参数
type ScanOptions struct {
	Inputs                []string
	CSV                   string // 为空时按时间戳生成
	SkipEntityCheck       bool
	Strict                bool
	AbortOnMissingAddress bool
	Export                exporter.Options
	SQLitePath            string
	Now                   func() time.Time
}

// ScanResult 记录一个输入文件的输出
type ScanResult struct {
	Input   string
	Output  string
	Rows    []model.ScanRow // 已排序并编号
	Summary analysis.Summary
	Stats   extract.Stats
	// Archived 为写入后归档表中的累计行数，未启用归档时为 0
	Archived int
}

// ScanReport 汇总一次运行
type ScanReport struct {
	Written []ScanResult
	Skipped []string
}

// RunScan 逐个处理 Nmap XML 文件。单个文件的问题只跳过该文件；严格模式下 XML 格式错误返回 *ParseError
func RunScan(opts ScanOptions) (ScanReport, error) {
	var report ScanReport
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var archive *scanArchive
	if opts.SQLitePath != "" {
		a, err := openScanArchive(opts.SQLitePath)
		if err != nil {
			return report, fmt.Errorf("打开归档库失败: %w", err)
		}
		defer a.Close()
		archive = a
	}

	for _, input := range opts.Inputs {
		res, err := scanFile(input, opts, now)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) && opts.Strict {
				log.Error("XML 格式可能有误", "file", input, "err", pe.Err)
				return report, err
			}
			if errors.Is(err, loader.ErrEntityDeclared) {
				log.Warn("检测到 XML 实体声明，已跳过；可使用 --skip_entity_check 忽略", "file", input)
			} else {
				log.Error("处理失败，已跳过", "file", input, "err", err)
			}
			report.Skipped = append(report.Skipped, input)
			continue
		}
		if res == nil {
			report.Skipped = append(report.Skipped, input)
			continue
		}

		if archive != nil {
			if err := archive.save(input, res); err != nil {
				log.Warn("归档到 SQLite 失败", "file", input, "err", err)
			}
		}
		report.Written = append(report.Written, *res)
	}
	return report, nil
}

// scanFile 处理单个文件；没有存活主机时返回 nil, nil
func scanFile(input string, opts ScanOptions, now func() time.Time) (*ScanResult, error) {
	if _, err := os.Stat(input); err != nil {
		return nil, fmt.Errorf("文件不存在或无法访问: %w", err)
	}

	if !opts.SkipEntityCheck {
		found, err := loader.HasEntityDecl(input)
		if err != nil {
			return nil, err
		}
		if found {
			return nil, loader.ErrEntityDeclared
		}
	}

	root, err := loader.LoadXML(input)
	if err != nil {
		return nil, &ParseError{Path: input, Err: err}
	}

	rows, stats, err := extract.ExtractRows(root, extract.Options{
		AbortOnMissingAddress: opts.AbortOnMissingAddress,
		Progress: func(done, total int) {
			log.Debugf("解析主机 %d/%d", done, total)
		},
	})
	if err != nil {
		return nil, err
	}
	log.Info("解析完成", "file", input, "hosts", stats.Hosts, "up", stats.HostsUp, "open_ports", stats.OpenPorts)
	if len(rows) == 0 {
		log.Warn("未发现存活主机", "file", input)
		return nil, nil
	}

	output := opts.CSV
	if output == "" {
		output = util.GenerateScanCSVName(now())
	}
	summary, err := exporter.WriteScanReport(rows, output, opts.Export)
	if err != nil {
		return nil, fmt.Errorf("写入 CSV 失败: %w", err)
	}

	log.Info("CSV 已写入", "path", output)
	log.Infof("汇总: %d hosts | %d port entries", summary.Hosts, summary.Entries)
	for _, h := range summary.PerHost {
		log.Debug("主机", "ip", h.IP, "ports", h.Ports, "entries", h.Entries)
	}

	return &ScanResult{Input: input, Output: output, Rows: rows, Summary: summary, Stats: stats}, nil
}

type scanArchive struct {
	db    *sql.DB
	table string
}

func openScanArchive(path string) (*scanArchive, error) {
	db, err := database.InitDB(path)
	if err != nil {
		return nil, err
	}
	return &scanArchive{db: db, table: util.GenerateTableName("scan", util.GenerateTaskID())}, nil
}

func (a *scanArchive) save(input string, res *ScanResult) error {
	if err := database.SaveScanRows(a.db, a.table, filepath.Base(input), res.Rows); err != nil {
		return err
	}
	total, err := database.CountRows(a.db, a.table)
	if err != nil {
		return err
	}
	ips, err := database.GetExistingIPs(a.db, a.table)
	if err != nil {
		return err
	}
	res.Archived = total
	log.Info("已归档到 SQLite", "table", a.table, "rows", len(res.Rows), "table_rows", total, "archived_hosts", len(ips))
	return nil
}

func (a *scanArchive) Close() error {
	return a.db.Close()
}
