package util

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// SetupLogger 配置全局日志输出到 stderr，level 为空时使用 info
func SetupLogger(level, prefix string) error {
	if strings.TrimSpace(level) == "" {
		level = "info"
	}
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	log.SetDefault(logger)
	return nil
}
