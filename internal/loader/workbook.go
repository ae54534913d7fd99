package loader

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"
)

// Sheet 是工作表的单元格内容，Rows[0] 为表头
type Sheet struct {
	Name string
	Rows [][]string
}

// FindWorkbooks 递归查找 root 下所有指定扩展名的文件
func FindWorkbooks(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d == nil || path == root {
				return err
			}
			log.Warn("无法读取目录，已跳过", "path", path, "err", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ext) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ReadWorkbook 读取工作簿中 keep 返回 true 的工作表，keep 为 nil 时读取全部
func ReadWorkbook(path string, keep func(name string) bool) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		if keep != nil && !keep(name) {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}
