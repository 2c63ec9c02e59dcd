package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// validExportFormats mirrors the format names the export registry
// understands, including the excel alias for xlsx.
var validExportFormats = map[string]bool{
	"csv":     true,
	"xlsx":    true,
	"excel":   true,
	"pdf":     true,
	"parquet": true,
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	// Coercion validation
	validOrders := map[string]bool{"mdy": true, "dmy": true}
	if !validOrders[strings.ToLower(c.Coerce.DateOrder)] {
		errs = append(errs, fmt.Sprintf("DATE_ORDER (%q) must be mdy or dmy", c.Coerce.DateOrder))
	}
	if c.Coerce.YearPivot < 0 || c.Coerce.YearPivot > 99 {
		errs = append(errs, fmt.Sprintf("YEAR_PIVOT (%d) must be 0-99", c.Coerce.YearPivot))
	}

	// Scan validation
	if len(c.Scan.Extensions) == 0 {
		errs = append(errs, "SCAN_EXTENSIONS must list at least one file extension")
	}

	// Merge validation
	if c.Merge.ReadConcurrency <= 0 {
		errs = append(errs, "MERGE_READ_CONCURRENCY must be positive")
	}

	// Preview validation
	if c.Preview.Rows <= 0 {
		errs = append(errs, "PREVIEW_ROWS must be positive")
	}

	// Store validation
	if c.Store.UndoDepth <= 0 {
		errs = append(errs, "UNDO_DEPTH must be positive")
	}

	// Export validation
	if len(c.Export.Formats) == 0 {
		errs = append(errs, "EXPORT_FORMATS must list at least one format")
	}
	for _, f := range c.Export.Formats {
		if !validExportFormats[strings.ToLower(f)] {
			errs = append(errs, fmt.Sprintf("EXPORT_FORMATS entry (%q) must be one of: csv, xlsx, excel, pdf, parquet", f))
		}
	}
	if c.Export.SheetName == "" {
		errs = append(errs, "EXPORT_SHEET_NAME must not be empty")
	}
	if len([]rune(c.Export.SheetName)) > 31 {
		errs = append(errs, fmt.Sprintf("EXPORT_SHEET_NAME (%q) must be at most 31 characters", c.Export.SheetName))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a string representation of the config for startup logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}, ",
		c.Logging.Level, c.Logging.Format))
	b.WriteString(fmt.Sprintf("Coerce: {DateOrder: %q, YearPivot: %d}, ",
		c.Coerce.DateOrder, c.Coerce.YearPivot))
	b.WriteString(fmt.Sprintf("Scan: {Extensions: %v}, ", c.Scan.Extensions))
	b.WriteString(fmt.Sprintf("Merge: {ReadConcurrency: %d}, ", c.Merge.ReadConcurrency))
	b.WriteString(fmt.Sprintf("Preview: {Rows: %d}, ", c.Preview.Rows))
	b.WriteString(fmt.Sprintf("Store: {UndoDepth: %d}, ", c.Store.UndoDepth))
	b.WriteString(fmt.Sprintf("Export: {Formats: %v, PDFEnabled: %v, SheetName: %q}, ",
		c.Export.Formats, c.Export.PDFEnabled, c.Export.SheetName))
	b.WriteString(fmt.Sprintf("Backup: {Enabled: %v, Dir: %q}",
		c.Backup.Enabled, c.Backup.Dir))
	b.WriteString("}")
	return b.String()
}
