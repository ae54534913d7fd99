package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"recon_report/internal/extract"
)

var testIOCExtract = extract.IOCOptions{SheetPrefix: "consolidated", EmailColumn: "Email_Sender", URLColumn: "FE_URL"}

func testIOCOptions(dir string) IOCOptions {
	return IOCOptions{
		Dir:       dir,
		Extension: ".xlsx",
		Extract:   testIOCExtract,
		EmailFile: "combined_IOC_SENDER_EMAIL.csv",
		URLFile:   "combined_IOC_URLs.csv",
	}
}

// writeSheet 生成只含一张工作表的工作簿
func writeSheet(t *testing.T, path, sheet string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
}

func TestProcessWorkbookDeduplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tip.xlsx")
	writeSheet(t, path, "Consolidated_Q1", [][]interface{}{
		{"Email_Sender", "FE_URL"},
		{"phish@bad.example", "hxxp://evil[.]example[.]com/path"},
		{"phish@bad.example", "hxxp://evil[.]example[.]com/path"},
	})

	acc, err := ProcessWorkbook(path, testIOCExtract)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(acc.Emails) != 1 || acc.Emails[0].Source != "tip.xlsx" {
		t.Fatalf("unexpected emails: %+v", acc.Emails)
	}
	if len(acc.URLs) != 1 || acc.URLs[0].Value != "http://evil.example.com/path" {
		t.Fatalf("unexpected urls: %+v", acc.URLs)
	}
}

func TestProcessWorkbookWithoutConsolidatedSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.xlsx")
	writeSheet(t, path, "Summary", [][]interface{}{
		{"Email_Sender"},
		{"a@b.co"},
	})
	acc, err := ProcessWorkbook(path, testIOCExtract)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if acc.Len() != 0 {
		t.Fatalf("expected no records: %+v", acc)
	}
}

func TestRunIOC(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "a.xlsx"), "consolidated", [][]interface{}{
		{"Email_Sender", "FE_URL"},
		{"x@evil.io", "evil[.]io/login"},
	})
	writeSheet(t, filepath.Join(dir, "sub", "b.xlsx"), "CONSOLIDATED_all", [][]interface{}{
		{"Email_Sender"},
		{"x@evil.io"},
		{"broken-address"},
	})
	if err := os.WriteFile(filepath.Join(dir, "corrupt.xlsx"), []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := testIOCOptions(dir)
	opts.SQLitePath = filepath.Join(dir, "archive", "res.db")
	report, err := RunIOC(opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Workbooks != 3 || len(report.Failed) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	// 同一邮箱出现在两个文件中，各保留一条
	if report.Emails != 2 || report.URLs != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}

	emails, err := os.ReadFile(report.EmailPath)
	if err != nil {
		t.Fatalf("read emails: %v", err)
	}
	want := "Tipper,IOC_SENDER_EMAIL\na.xlsx,x@evil.io\nb.xlsx,x@evil.io\n"
	if string(emails) != want {
		t.Fatalf("emails csv = %q, want %q", emails, want)
	}

	urls, err := os.ReadFile(report.URLPath)
	if err != nil {
		t.Fatalf("read urls: %v", err)
	}
	if string(urls) != "Tipper,IOC_URLs\na.xlsx,http://evil.io/login\n" {
		t.Fatalf("urls csv = %q", urls)
	}
	if _, err := os.Stat(opts.SQLitePath); err != nil {
		t.Fatalf("archive not written: %v", err)
	}
}

func TestRunIOCNoRecordsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, filepath.Join(dir, "a.xlsx"), "Other", [][]interface{}{{"Email_Sender"}, {"a@b.co"}})

	report, err := RunIOC(testIOCOptions(dir))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.EmailPath != "" || report.URLPath != "" {
		t.Fatalf("nothing should be written: %+v", report)
	}
	if _, err := os.Stat(filepath.Join(dir, "combined_IOC_SENDER_EMAIL.csv")); !os.IsNotExist(err) {
		t.Fatalf("email csv should not exist")
	}
}

func TestRunIOCRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := RunIOC(testIOCOptions(path)); err == nil {
		t.Fatalf("expected error for non-directory")
	}
}
