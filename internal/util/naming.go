package util

import (
	"fmt"
	"strings"
	"time"
)

// GenerateTaskID 生成统一的任务ID
func GenerateTaskID() string {
	return taskIDAt(time.Now())
}

func taskIDAt(now time.Time) string {
	dateStr := now.Format("20060102")
	tsStr := fmt.Sprintf("%d", now.Unix())
	shortTS := tsStr[len(tsStr)-8:]
	return fmt.Sprintf("%s_%s", dateStr, shortTS)
}

// GenerateTableName 生成数据库表名，如 scan_20250726_53715503
func GenerateTableName(prefix, taskID string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(taskID, "-", "_"))
}

// GenerateScanCSVName 生成默认的扫描报告文件名 scan_output_<YYYYMMDD_HHMMSS>.csv
func GenerateScanCSVName(now time.Time) string {
	return fmt.Sprintf("scan_output_%s.csv", now.Format("20060102_150405"))
}
