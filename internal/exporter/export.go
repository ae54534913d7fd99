package exporter

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"recon_report/internal/analysis"
	"recon_report/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Options 控制 CSV 输出格式
type Options struct {
	BOM  bool // 写入 UTF-8 BOM，确保 Excel 等软件能正确识别编码
	CRLF bool // 行尾使用 \r\n，字段内的换行保持原样
}

// WriteScanReport 按 IP 数值排序、编号并写出扫描报告，返回汇总信息。rows 会被原地排序
func WriteScanReport(rows []model.ScanRow, outputPath string, opts Options) (analysis.Summary, error) {
	analysis.SortRows(rows)
	analysis.AssignSortIndex(rows)

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, r.Record())
	}
	if err := writeCSV(outputPath, model.ScanHeader, records, opts); err != nil {
		return analysis.Summary{}, err
	}
	return analysis.Summarize(rows), nil
}

// WriteIOCs 写出 IOC 汇总表
func WriteIOCs(records []model.IOCRecord, header []string, outputPath string, opts Options) error {
	out := make([][]string, 0, len(records))
	for _, r := range records {
		out = append(out, []string{r.Source, r.Value})
	}
	return writeCSV(outputPath, header, out, opts)
}

// writeCSV 先写临时文件再改名，失败时不会留下半截输出
func writeCSV(outputPath string, header []string, records [][]string, opts Options) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建输出目录失败: %w", err)
		}
	}

	tmp := outputPath + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer os.Remove(tmp)

	if err := write(file, header, records, opts); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, outputPath)
}

func write(file *os.File, header []string, records [][]string, opts Options) error {
	if opts.BOM {
		if _, err := file.Write(utf8BOM); err != nil {
			return err
		}
	}

	out := bufio.NewWriter(file)
	if err := writeRecord(out, header, opts.CRLF); err != nil {
		return fmt.Errorf("写入CSV表头失败: %w", err)
	}
	for _, record := range records {
		if err := writeRecord(out, record, opts.CRLF); err != nil {
			return fmt.Errorf("写入CSV数据行失败: %w", err)
		}
	}
	return out.Flush()
}

// writeRecord 写出一行。csv.Writer 的 UseCRLF 会把字段内的 \n 也改成 \r\n，
// 所以始终按 \n 编码，只替换行尾
func writeRecord(w io.Writer, record []string, crlf bool) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(record); err != nil {
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	line := buf.Bytes()
	if crlf {
		line = append(line[:len(line)-1], '\r', '\n')
	}
	_, err := w.Write(line)
	return err
}
