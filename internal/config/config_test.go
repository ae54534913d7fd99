package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"), false)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Scan.Strict || cfg.Scan.MissingAddress != MissingAddressSkip {
		t.Fatalf("unexpected scan defaults: %+v", cfg.Scan)
	}
	if cfg.IOC.SheetPrefix != "consolidated" || cfg.IOC.URLFile != "combined_IOC_URLs.csv" {
		t.Fatalf("unexpected ioc defaults: %+v", cfg.IOC)
	}
}

func TestLoadConfigRequiredMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "none.yaml"), true); err == nil {
		t.Fatalf("expected error for missing required config")
	}
}

func TestLoadConfigOverridesAndFills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "scan:\n  strict: false\n  missing_address: ABORT\noutput:\n  utf8_bom: true\nioc:\n  email_column: Sender\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scan.Strict {
		t.Fatalf("strict should be false")
	}
	if cfg.Scan.MissingAddress != MissingAddressAbort {
		t.Fatalf("missing_address = %q", cfg.Scan.MissingAddress)
	}
	if !cfg.Output.UTF8BOM {
		t.Fatalf("utf8_bom should be true")
	}
	if cfg.IOC.EmailColumn != "Sender" || cfg.IOC.URLColumn != "FE_URL" {
		t.Fatalf("unexpected columns: %+v", cfg.IOC)
	}
}

func TestLoadConfigRejectsBadMissingAddress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scan:\n  missing_address: maybe\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path, true); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if err := WriteDefault(path); err == nil {
		t.Fatalf("second write should refuse to overwrite")
	}

	cfg, err := LoadConfig(path, true)
	if err != nil {
		t.Fatalf("load generated config: %v", err)
	}
	if *cfg != *Default() {
		t.Fatalf("generated config differs from defaults: %+v", cfg)
	}
}
