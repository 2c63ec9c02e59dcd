package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
	if cfg.Coerce.DateOrder != "mdy" {
		t.Errorf("Coerce.DateOrder = %q, want %q", cfg.Coerce.DateOrder, "mdy")
	}
	if cfg.Coerce.YearPivot != 20 {
		t.Errorf("Coerce.YearPivot = %d, want %d", cfg.Coerce.YearPivot, 20)
	}
	if len(cfg.Scan.Extensions) != 5 {
		t.Errorf("Scan.Extensions length = %d, want %d", len(cfg.Scan.Extensions), 5)
	}
	if cfg.Merge.ReadConcurrency != 4 {
		t.Errorf("Merge.ReadConcurrency = %d, want %d", cfg.Merge.ReadConcurrency, 4)
	}
	if cfg.Preview.Rows != 200 {
		t.Errorf("Preview.Rows = %d, want %d", cfg.Preview.Rows, 200)
	}
	if cfg.Store.UndoDepth != 12 {
		t.Errorf("Store.UndoDepth = %d, want %d", cfg.Store.UndoDepth, 12)
	}
	if !cfg.Export.PDFEnabled {
		t.Error("Export.PDFEnabled = false, want true")
	}
	if cfg.Export.SheetName != "Sheet1" {
		t.Errorf("Export.SheetName = %q, want %q", cfg.Export.SheetName, "Sheet1")
	}
	if !cfg.Backup.Enabled {
		t.Error("Backup.Enabled = false, want true")
	}
	if cfg.Backup.Dir != "" {
		t.Errorf("Backup.Dir = %q, want empty", cfg.Backup.Dir)
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("DATE_ORDER", "dmy")
	os.Setenv("UNDO_DEPTH", "30")
	os.Setenv("EXPORT_PDF_ENABLED", "false")
	defer func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("DATE_ORDER")
		os.Unsetenv("UNDO_DEPTH")
		os.Unsetenv("EXPORT_PDF_ENABLED")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Coerce.DateOrder != "dmy" {
		t.Errorf("Coerce.DateOrder = %q, want %q", cfg.Coerce.DateOrder, "dmy")
	}
	if cfg.Store.UndoDepth != 30 {
		t.Errorf("Store.UndoDepth = %d, want %d", cfg.Store.UndoDepth, 30)
	}
	if cfg.Export.PDFEnabled {
		t.Error("Export.PDFEnabled = true, want false")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	// Test that TWO_DIGIT_YEAR_PIVOT works as fallback
	os.Setenv("TWO_DIGIT_YEAR_PIVOT", "50")
	defer os.Unsetenv("TWO_DIGIT_YEAR_PIVOT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Coerce.YearPivot != 50 {
		t.Errorf("Coerce.YearPivot = %d, want %d", cfg.Coerce.YearPivot, 50)
	}
}

func TestLoad_PrimaryEnvVarWins(t *testing.T) {
	os.Setenv("YEAR_PIVOT", "10")
	os.Setenv("TWO_DIGIT_YEAR_PIVOT", "50")
	defer func() {
		os.Unsetenv("YEAR_PIVOT")
		os.Unsetenv("TWO_DIGIT_YEAR_PIVOT")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Coerce.YearPivot != 10 {
		t.Errorf("Coerce.YearPivot = %d, want %d", cfg.Coerce.YearPivot, 10)
	}
}

func TestLoad_InvalidInteger(t *testing.T) {
	os.Setenv("YEAR_PIVOT", "twenty")
	defer os.Unsetenv("YEAR_PIVOT")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for non-numeric YEAR_PIVOT")
	}
	if !strings.Contains(err.Error(), "YEAR_PIVOT") {
		t.Errorf("error should mention YEAR_PIVOT: %v", err)
	}
}

func TestLoad_CommaSeparatedSlice(t *testing.T) {
	os.Setenv("SCAN_EXTENSIONS", ".csv, .xlsx , .parquet")
	defer os.Unsetenv("SCAN_EXTENSIONS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	expected := []string{".csv", ".xlsx", ".parquet"}
	if len(cfg.Scan.Extensions) != len(expected) {
		t.Fatalf("Scan.Extensions length = %d, want %d", len(cfg.Scan.Extensions), len(expected))
	}
	for i, v := range expected {
		if cfg.Scan.Extensions[i] != v {
			t.Errorf("Scan.Extensions[%d] = %q, want %q", i, cfg.Scan.Extensions[i], v)
		}
	}
}

// validConfig returns a configuration that passes Validate, for tests
// that break one setting at a time.
func validConfig() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Coerce:  CoerceConfig{DateOrder: "mdy", YearPivot: 20},
		Scan:    ScanConfig{Extensions: []string{".csv", ".xlsx"}},
		Merge:   MergeConfig{ReadConcurrency: 4},
		Preview: PreviewConfig{Rows: 200},
		Store:   StoreConfig{UndoDepth: 12},
		Export:  ExportConfig{Formats: []string{"csv", "xlsx"}, PDFEnabled: true, SheetName: "Sheet1"},
		Backup:  BackupConfig{Enabled: true},
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "LOG_LEVEL") {
		t.Errorf("error should mention LOG_LEVEL: %v", err)
	}
}

func TestValidate_InvalidDateOrder(t *testing.T) {
	cfg := validConfig()
	cfg.Coerce.DateOrder = "ymd"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid date order")
	}
	if !strings.Contains(err.Error(), "DATE_ORDER") {
		t.Errorf("error should mention DATE_ORDER: %v", err)
	}
}

func TestValidate_YearPivotOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Coerce.YearPivot = 120

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for out-of-range year pivot")
	}
	if !strings.Contains(err.Error(), "YEAR_PIVOT") {
		t.Errorf("error should mention YEAR_PIVOT: %v", err)
	}
}

func TestValidate_UnknownExportFormat(t *testing.T) {
	cfg := validConfig()
	cfg.Export.Formats = []string{"csv", "docx"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for unknown export format")
	}
	if !strings.Contains(err.Error(), "EXPORT_FORMATS") {
		t.Errorf("error should mention EXPORT_FORMATS: %v", err)
	}
	if !strings.Contains(err.Error(), "docx") {
		t.Errorf("error should name the bad format: %v", err)
	}
}

func TestValidate_SheetNameTooLong(t *testing.T) {
	cfg := validConfig()
	cfg.Export.SheetName = strings.Repeat("x", 32)

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for oversized sheet name")
	}
	if !strings.Contains(err.Error(), "EXPORT_SHEET_NAME") {
		t.Errorf("error should mention EXPORT_SHEET_NAME: %v", err)
	}
}

func TestValidate_NonPositiveLimits(t *testing.T) {
	cfg := validConfig()
	cfg.Merge.ReadConcurrency = 0
	cfg.Preview.Rows = -1
	cfg.Store.UndoDepth = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for non-positive limits")
	}
	for _, name := range []string{"MERGE_READ_CONCURRENCY", "PREVIEW_ROWS", "UNDO_DEPTH"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should mention %s: %v", name, err)
		}
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "yaml"
	cfg.Coerce.DateOrder = "ydm"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	if !strings.Contains(err.Error(), "LOG_FORMAT") || !strings.Contains(err.Error(), "DATE_ORDER") {
		t.Errorf("error should report every failure: %v", err)
	}
}

func TestConfigString(t *testing.T) {
	cfg := validConfig()
	str := cfg.String()

	for _, want := range []string{"Logging", "mdy", "Sheet1", "Export"} {
		if !strings.Contains(str, want) {
			t.Errorf("String() missing %q: %s", want, str)
		}
	}
}
