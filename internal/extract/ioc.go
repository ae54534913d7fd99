package extract

import (
	"strings"

	"recon_report/internal/loader"
	"recon_report/internal/model"
	"recon_report/internal/util"
)

// IOCOptions 指定工作表前缀与列名
type IOCOptions struct {
	SheetPrefix string
	EmailColumn string
	URLColumn   string
}

// Accumulator 收集已校验的 IOC 记录
type Accumulator struct {
	Emails []model.IOCRecord
	URLs   []model.IOCRecord
}

// Merge 追加另一批记录，不做跨文件去重
func (a *Accumulator) Merge(b Accumulator) {
	a.Emails = append(a.Emails, b.Emails...)
	a.URLs = append(a.URLs, b.URLs...)
}

// Len 返回记录总数
func (a Accumulator) Len() int {
	return len(a.Emails) + len(a.URLs)
}

// MatchSheet 工作表名不区分大小写地以 prefix 开头
func MatchSheet(name, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix))
}

// ExtractWorkbook 处理一个工作簿中所有匹配的工作表，source 为记录上的来源文件名
func ExtractWorkbook(source string, sheets []loader.Sheet, opts IOCOptions) Accumulator {
	var acc Accumulator
	for _, sheet := range sheets {
		if !MatchSheet(sheet.Name, opts.SheetPrefix) {
			continue
		}
		acc.Merge(ExtractSheet(source, sheet, opts))
	}
	return acc
}

// ExtractSheet 从单个工作表提取邮箱与 URL，两列互不影响，缺列时跳过该列
func ExtractSheet(source string, sheet loader.Sheet, opts IOCOptions) Accumulator {
	var acc Accumulator

	if values, ok := columnValues(sheet.Rows, opts.EmailColumn); ok {
		seen := make(map[string]bool)
		for _, v := range values {
			email := strings.TrimSpace(v)
			if seen[email] {
				continue
			}
			seen[email] = true
			if util.IsValidEmail(email) {
				acc.Emails = append(acc.Emails, model.IOCRecord{Source: source, Value: email})
			}
		}
	}

	if values, ok := columnValues(sheet.Rows, opts.URLColumn); ok {
		seen := make(map[string]bool)
		for _, v := range values {
			if seen[v] {
				continue
			}
			seen[v] = true
			u := util.RefangURL(v)
			if util.IsValidURL(u) {
				acc.URLs = append(acc.URLs, model.IOCRecord{Source: source, Value: u})
			}
		}
	}
	return acc
}

// columnValues 按表头找到列，返回该列非空单元格；列不存在时 ok 为 false
func columnValues(rows [][]string, column string) ([]string, bool) {
	if len(rows) == 0 {
		return nil, false
	}
	idx := -1
	for i, h := range rows[0] {
		if h == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}

	var values []string
	for _, row := range rows[1:] {
		if idx >= len(row) || row[idx] == "" {
			continue
		}
		values = append(values, row[idx])
	}
	return values, true
}
