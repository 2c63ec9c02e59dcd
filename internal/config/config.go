// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Logging LoggingConfig
	Coerce  CoerceConfig
	Scan    ScanConfig
	Merge   MergeConfig
	Preview PreviewConfig
	Store   StoreConfig
	Export  ExportConfig
	Backup  BackupConfig
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// CoerceConfig holds value-typing settings.
type CoerceConfig struct {
	// DateOrder disambiguates numeric dates: mdy or dmy (default: mdy)
	DateOrder string `env:"DATE_ORDER" default:"mdy"`

	// YearPivot is how many years past the current year a two-digit
	// year may land before it is pushed back a century (default: 20)
	YearPivot int `env:"YEAR_PIVOT" envAlt:"TWO_DIGIT_YEAR_PIVOT" default:"20"`
}

// ScanConfig holds folder scanning settings.
type ScanConfig struct {
	// Extensions is the comma-separated list of file types a folder
	// merge picks up (default: .csv,.tsv,.txt,.xlsx,.xlsm)
	Extensions []string `env:"SCAN_EXTENSIONS" default:".csv,.tsv,.txt,.xlsx,.xlsm"`
}

// MergeConfig holds folder merge settings.
type MergeConfig struct {
	// ReadConcurrency is the number of files read in parallel during a
	// folder merge (default: 4)
	ReadConcurrency int `env:"MERGE_READ_CONCURRENCY" default:"4"`
}

// PreviewConfig holds preview settings.
type PreviewConfig struct {
	// Rows is the maximum number of rows a preview shows (default: 200)
	Rows int `env:"PREVIEW_ROWS" default:"200"`
}

// StoreConfig holds working-table store settings.
type StoreConfig struct {
	// UndoDepth is how many superseded tables the undo stack keeps
	// (default: 12)
	UndoDepth int `env:"UNDO_DEPTH" default:"12"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	// Formats is the comma-separated list of default export formats
	// (default: csv,xlsx)
	Formats []string `env:"EXPORT_FORMATS" default:"csv,xlsx"`

	// PDFEnabled controls whether the PDF writer is registered
	// (default: true)
	PDFEnabled bool `env:"EXPORT_PDF_ENABLED" default:"true"`

	// SheetName is the sheet name for single-sheet Excel saves
	// (default: Sheet1)
	SheetName string `env:"EXPORT_SHEET_NAME" default:"Sheet1"`
}

// BackupConfig holds save-backup settings.
type BackupConfig struct {
	// Enabled controls whether an existing destination is copied aside
	// before a save overwrites it (default: true)
	Enabled bool `env:"BACKUP_ENABLED" default:"true"`

	// Dir is where backups land; empty keeps them next to the original
	Dir string `env:"BACKUP_DIR"`
}
