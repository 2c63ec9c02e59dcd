package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/tabwork/tabwork/internal/config"
	"github.com/tabwork/tabwork/internal/engine"
	"github.com/tabwork/tabwork/internal/logging"
	"github.com/tabwork/tabwork/internal/sheet"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err == nil {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Debug("configuration loaded",
		"date_order", cfg.Coerce.DateOrder,
		"export_formats", cfg.Export.Formats,
		"undo_depth", cfg.Store.UndoDepth,
	)

	svc, err := buildService(cfg)
	if err != nil {
		slog.Error("failed to build service", "error", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		usage()
		return
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	if err := cmd.run(svc, cfg, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, engine.FormatUserError(err))
		os.Exit(1)
	}
}

// buildService wires the engine to its on-disk collaborators according
// to the configuration.
func buildService(cfg *config.Config) (*engine.Service, error) {
	fs := afero.NewOsFs()

	codecOpts := []sheet.Option{sheet.WithSheetName(cfg.Export.SheetName)}
	if cfg.Backup.Enabled {
		codecOpts = append(codecOpts, sheet.WithBackups(cfg.Backup.Dir))
	}
	codec := sheet.NewCodec(fs, codecOpts...)

	order, ok := engine.ParseDateOrder(cfg.Coerce.DateOrder)
	if !ok {
		return nil, fmt.Errorf("unrecognized date order %q", cfg.Coerce.DateOrder)
	}

	writers := []engine.FormatWriter{
		codec.CSVWriter(),
		codec.ExcelWriter(),
		codec.ParquetWriter(),
	}
	if cfg.Export.PDFEnabled {
		writers = append(writers, codec.PDFWriter())
	}

	return engine.NewService(engine.Deps{
		Store:           engine.NewStore(cfg.Store.UndoDepth),
		Coercer:         engine.NewCoercer(engine.WithDateOrder(order), engine.WithYearPivot(cfg.Coerce.YearPivot)),
		Reader:          codec,
		Lister:          sheet.NewScanner(fs, cfg.Scan.Extensions),
		Saver:           codec,
		Workbook:        codec,
		Exporter:        engine.NewExporter(writers...),
		ReadConcurrency: cfg.Merge.ReadConcurrency,
		PreviewRows:     cfg.Preview.Rows,
	}), nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tabwork <command> [flags]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, c := range commandList {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Run 'tabwork <command> -h' for the command's flags.")
}
