package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tabwork/tabwork/internal/config"
	"github.com/tabwork/tabwork/internal/engine"
)

// command is one CLI subcommand.
type command struct {
	name    string
	summary string
	run     func(svc *engine.Service, cfg *config.Config, args []string) error
}

// commandList is the dispatch table, in help order.
var commandList = []command{
	{"merge", "combine every supported file in a folder into one table", runMerge},
	{"split", "split a file into per-group files or workbook sheets", runSplit},
	{"fill", "fill a column's missing values", runFill},
	{"convert", "convert a column to a target type", runConvert},
	{"splitcol", "split one column into several on a delimiter", runSplitcol},
	{"autonum", "add a sequential numbering column", runAutonum},
	{"trim", "trim surrounding whitespace from every text cell", runTrim},
	{"dedupe", "drop rows duplicating an earlier value in a column", runDedupe},
	{"daterange", "keep rows whose date column falls inside a range", runDaterange},
	{"search", "keep rows matching any keyword", runSearch},
	{"report", "keep rows selected by a conditional rule", runReport},
	{"lookup", "keep rows matching a value in a column", runLookup},
	{"compare", "compare a column across two files", runCompare},
	{"export", "write a file out in several formats at once", runExport},
	{"stats", "summary statistics for the numeric columns", runStats},
	{"corr", "pairwise correlations of the numeric columns", runCorr},
	{"preview", "show the first rows of a file", runPreview},
}

var commands = map[string]command{}

func init() {
	for _, c := range commandList {
		commands[c.name] = c
	}
}

// usageError reports a bad invocation and exits with the usage status.
func usageError(fs *flag.FlagSet, msg string) error {
	fmt.Fprintln(os.Stderr, msg)
	fs.Usage()
	os.Exit(2)
	return nil
}

// splitList parses a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// saveWorking persists the working table and reports where it went.
func saveWorking(ctx context.Context, svc *engine.Service, path string) error {
	sum, err := svc.SaveAs(ctx, path)
	if err != nil {
		return err
	}
	if sum.BackupPath != "" {
		fmt.Printf("saved %s (%d rows, %d columns; previous content backed up to %s)\n",
			sum.Path, sum.Rows, sum.Cols, sum.BackupPath)
	} else {
		fmt.Printf("saved %s (%d rows, %d columns)\n", sum.Path, sum.Rows, sum.Cols)
	}
	return nil
}

// applyToFile loads a file, runs one transformation, and writes the
// result back out. An empty out path overwrites the input; the backup
// made by the saver keeps the original recoverable.
func applyToFile(svc *engine.Service, in, out string, apply func(ctx context.Context) (*engine.OpSummary, error)) error {
	ctx := context.Background()
	if _, err := svc.LoadFile(ctx, in); err != nil {
		return err
	}
	sum, err := apply(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d rows in, %d rows out, %d affected (%dms)\n",
		sum.Op, sum.RowsIn, sum.RowsOut, sum.Affected, sum.ElapsedMs)
	if out == "" {
		out = in
	}
	return saveWorking(ctx, svc, out)
}

// printTable renders a table with aligned columns.
func printTable(t *engine.Table) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(t.ColumnNames(), "\t"))
	for i := 0; i < t.NumRows(); i++ {
		cells := t.Row(i)
		fields := make([]string, len(cells))
		for j, c := range cells {
			fields[j] = c.String()
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
	}
	w.Flush()
}

// parseDate reads a CLI date argument through the configured coercer, so
// the day/month order convention applies to flags too.
func parseDate(co *engine.Coercer, s string) (time.Time, error) {
	if ts, ok := co.Coerce(engine.Text(s), engine.KindDateTime).Time(); ok {
		return ts, nil
	}
	return time.Time{}, &engine.InvalidPredicateError{Reason: fmt.Sprintf("%q is not a recognizable date", s)}
}

func runMerge(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	dir := fs.String("dir", "", "folder holding the source files")
	out := fs.String("out", "", "write the merged table to this file")
	fs.Parse(args)
	if *dir == "" {
		return usageError(fs, "the -dir flag is required")
	}

	ctx := context.Background()
	sum, err := svc.MergeFolder(ctx, *dir)
	if err != nil {
		return err
	}
	fmt.Printf("merged %d files: %d rows, %d columns (%dms)\n",
		len(sum.Files), sum.Rows, sum.Cols, sum.ElapsedMs)
	if *out != "" {
		return saveWorking(ctx, svc, *out)
	}
	return nil
}

func runSplit(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	by := fs.String("by", "", "column to group rows by")
	dir := fs.String("dir", ".", "folder for the per-group files")
	format := fs.String("format", "csv", "per-group file format")
	workbook := fs.String("workbook", "", "write one workbook with a sheet per group instead")
	fs.Parse(args)
	if *in == "" || *by == "" {
		return usageError(fs, "the -in and -by flags are required")
	}

	ctx := context.Background()
	if _, err := svc.LoadFile(ctx, *in); err != nil {
		return err
	}

	var sum *engine.SplitSummary
	if *workbook != "" {
		var err error
		sum, err = svc.SplitToWorkbook(ctx, *by, *workbook)
		if err != nil {
			return err
		}
	} else {
		f, ok := engine.ParseFormat(*format)
		if !ok {
			return &engine.UnavailableFormatError{Format: engine.Format(*format)}
		}
		var err error
		sum, err = svc.SplitToFiles(ctx, *by, *dir, f)
		if err != nil {
			return err
		}
	}

	fmt.Printf("split by %s into %d groups (%dms)\n", sum.Column, sum.Groups, sum.ElapsedMs)
	for _, p := range sum.Outputs {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func runFill(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	col := fs.String("col", "", "column to fill")
	mode := fs.String("mode", "literal", "fill strategy: literal, mean or median")
	value := fs.String("value", "", "replacement value for literal mode")
	out := fs.String("out", "", "output file (default: overwrite input)")
	fs.Parse(args)
	if *in == "" || *col == "" {
		return usageError(fs, "the -in and -col flags are required")
	}

	m, ok := engine.ParseFillMode(*mode)
	if !ok {
		return &engine.UnsupportedStrategyError{Strategy: *mode, Column: *col, Reason: "unknown fill mode"}
	}
	strat := engine.FillStrategy{Mode: m}
	if m == engine.FillLiteral {
		if *value == "" {
			return usageError(fs, "literal mode needs a -value")
		}
		strat.Literal = engine.Text(*value)
	}

	return applyToFile(svc, *in, *out, func(ctx context.Context) (*engine.OpSummary, error) {
		return svc.FillMissing(ctx, *col, strat)
	})
}

func runConvert(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	col := fs.String("col", "", "column to convert")
	to := fs.String("to", "", "target type: number, datetime, bool or text")
	out := fs.String("out", "", "output file (default: overwrite input)")
	fs.Parse(args)
	if *in == "" || *col == "" || *to == "" {
		return usageError(fs, "the -in, -col and -to flags are required")
	}

	kind, ok := engine.ParseKind(*to)
	if !ok {
		return &engine.UnsupportedStrategyError{Strategy: *to, Column: *col, Reason: "unknown target type"}
	}
	return applyToFile(svc, *in, *out, func(ctx context.Context) (*engine.OpSummary, error) {
		return svc.ConvertColumn(ctx, *col, kind)
	})
}

func runSplitcol(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("splitcol", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	col := fs.String("col", "", "column to split")
	delim := fs.String("delim", ",", "delimiter to split on")
	names := fs.String("names", "", "comma-separated names for the new columns")
	out := fs.String("out", "", "output file (default: overwrite input)")
	fs.Parse(args)
	if *in == "" || *col == "" {
		return usageError(fs, "the -in and -col flags are required")
	}
	if *delim == "" {
		return usageError(fs, "the -delim flag must not be empty")
	}

	return applyToFile(svc, *in, *out, func(ctx context.Context) (*engine.OpSummary, error) {
		return svc.SplitColumn(ctx, *col, *delim, splitList(*names))
	})
}

func runAutonum(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("autonum", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	name := fs.String("name", "id", "name of the numbering column")
	start := fs.Int("start", 1, "first number")
	out := fs.String("out", "", "output file (default: overwrite input)")
	fs.Parse(args)
	if *in == "" {
		return usageError(fs, "the -in flag is required")
	}

	return applyToFile(svc, *in, *out, func(ctx context.Context) (*engine.OpSummary, error) {
		return svc.AutoNumber(ctx, *name, *start)
	})
}

func runTrim(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("trim", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	out := fs.String("out", "", "output file (default: overwrite input)")
	fs.Parse(args)
	if *in == "" {
		return usageError(fs, "the -in flag is required")
	}

	return applyToFile(svc, *in, *out, func(ctx context.Context) (*engine.OpSummary, error) {
		return svc.TrimSpaces(ctx)
	})
}

func runDedupe(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dedupe", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	col := fs.String("col", "", "column whose repeated values mark duplicates")
	out := fs.String("out", "", "output file (default: overwrite input)")
	fs.Parse(args)
	if *in == "" || *col == "" {
		return usageError(fs, "the -in and -col flags are required")
	}

	return applyToFile(svc, *in, *out, func(ctx context.Context) (*engine.OpSummary, error) {
		return svc.Dedupe(ctx, *col)
	})
}

func runDaterange(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("daterange", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	col := fs.String("col", "", "date column to filter on")
	from := fs.String("from", "", "earliest date to keep (empty: unbounded)")
	to := fs.String("to", "", "latest date to keep (empty: unbounded)")
	exclusive := fs.Bool("exclusive", false, "exclude the boundary dates themselves")
	out := fs.String("out", "", "output file (default: overwrite input)")
	fs.Parse(args)
	if *in == "" || *col == "" {
		return usageError(fs, "the -in and -col flags are required")
	}
	if *from == "" && *to == "" {
		return usageError(fs, "at least one of -from and -to is required")
	}

	var start, end time.Time
	var err error
	if *from != "" {
		if start, err = parseDate(svc.Coercer(), *from); err != nil {
			return err
		}
	}
	if *to != "" {
		if end, err = parseDate(svc.Coercer(), *to); err != nil {
			return err
		}
	}

	return applyToFile(svc, *in, *out, func(ctx context.Context) (*engine.OpSummary, error) {
		return svc.FilterDateRange(ctx, *col, start, end, !*exclusive)
	})
}

func runSearch(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	terms := fs.String("terms", "", "comma-separated keywords, any of which keeps a row")
	cols := fs.String("cols", "", "comma-separated columns to search (default: all)")
	out := fs.String("out", "", "output file (default: overwrite input)")
	fs.Parse(args)
	if *in == "" {
		return usageError(fs, "the -in flag is required")
	}
	keywords := splitList(*terms)
	if len(keywords) == 0 {
		return usageError(fs, "the -terms flag is required")
	}

	return applyToFile(svc, *in, *out, func(ctx context.Context) (*engine.OpSummary, error) {
		return svc.Search(ctx, keywords, splitList(*cols))
	})
}

func runReport(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	col := fs.String("col", "", "column the rule evaluates")
	op := fs.String("op", "", "rule: topn, bottomn, duplicates, gt or lt")
	n := fs.Int("n", 10, "row count for topn and bottomn")
	threshold := fs.String("threshold", "", "numeric threshold for gt and lt")
	out := fs.String("out", "", "output file (default: overwrite input)")
	fs.Parse(args)
	if *in == "" || *col == "" || *op == "" {
		return usageError(fs, "the -in, -col and -op flags are required")
	}

	p, ok := engine.ParsePredicateOp(*op)
	if !ok {
		return &engine.InvalidPredicateError{Reason: fmt.Sprintf("unknown predicate %q", *op)}
	}
	return applyToFile(svc, *in, *out, func(ctx context.Context) (*engine.OpSummary, error) {
		return svc.Report(ctx, *col, engine.Predicate{Op: p, N: *n, Threshold: *threshold})
	})
}

func runLookup(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	col := fs.String("col", "", "column to match against")
	value := fs.String("value", "", "value to look for")
	exact := fs.Bool("exact", false, "match the whole cell instead of a substring")
	out := fs.String("out", "", "output file (default: overwrite input)")
	fs.Parse(args)
	if *in == "" || *col == "" || *value == "" {
		return usageError(fs, "the -in, -col and -value flags are required")
	}

	return applyToFile(svc, *in, *out, func(ctx context.Context) (*engine.OpSummary, error) {
		return svc.Lookup(ctx, *col, *value, *exact)
	})
}

func runCompare(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	a := fs.String("a", "", "first file")
	acol := fs.String("acol", "", "column in the first file")
	b := fs.String("b", "", "second file")
	bcol := fs.String("bcol", "", "column in the second file (default: same as -acol)")
	out := fs.String("out", "", "write the full three-sheet report workbook here")
	fs.Parse(args)
	if *a == "" || *b == "" || *acol == "" {
		return usageError(fs, "the -a, -b and -acol flags are required")
	}
	if *bcol == "" {
		*bcol = *acol
	}

	sum, err := svc.CompareFiles(context.Background(), *a, *acol, *b, *bcol, *out)
	if err != nil {
		return err
	}
	fmt.Printf("matches: %d\n", sum.Matches)
	fmt.Printf("only in %s: %d\n", *a, len(sum.Result.OnlyA))
	fmt.Printf("only in %s: %d\n", *b, len(sum.Result.OnlyB))
	if sum.OutPath != "" {
		fmt.Printf("report written to %s\n", sum.OutPath)
	}
	return nil
}

func runExport(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	dir := fs.String("dir", ".", "destination folder")
	base := fs.String("base", "", "output file stem (default: the input's stem)")
	formats := fs.String("formats", "", "comma-separated formats (default: configured set)")
	fs.Parse(args)
	if *in == "" {
		return usageError(fs, "the -in flag is required")
	}

	names := splitList(*formats)
	if len(names) == 0 {
		names = cfg.Export.Formats
	}
	fmts := make([]engine.Format, 0, len(names))
	for _, name := range names {
		f, ok := engine.ParseFormat(name)
		if !ok {
			return &engine.UnavailableFormatError{Format: engine.Format(name)}
		}
		fmts = append(fmts, f)
	}

	ctx := context.Background()
	if _, err := svc.LoadFile(ctx, *in); err != nil {
		return err
	}
	outcomes, err := svc.Export(ctx, *dir, *base, fmts)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Printf("%s: %s\n", o.Format, engine.FormatUserError(o.Err))
		} else {
			fmt.Printf("%s: wrote %s\n", o.Format, o.Path)
		}
	}
	if failed == len(outcomes) && failed > 0 {
		return outcomes[0].Err
	}
	return nil
}

func runStats(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	fs.Parse(args)
	if *in == "" {
		return usageError(fs, "the -in flag is required")
	}

	ctx := context.Background()
	if _, err := svc.LoadFile(ctx, *in); err != nil {
		return err
	}
	report, err := svc.Describe(ctx)
	if err != nil {
		return err
	}
	printTable(report)
	return nil
}

func runCorr(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("corr", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	fs.Parse(args)
	if *in == "" {
		return usageError(fs, "the -in flag is required")
	}

	ctx := context.Background()
	if _, err := svc.LoadFile(ctx, *in); err != nil {
		return err
	}
	report, err := svc.Correlate(ctx)
	if err != nil {
		return err
	}
	printTable(report)
	return nil
}

func runPreview(svc *engine.Service, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	in := fs.String("in", "", "input file")
	n := fs.Int("n", 0, "rows to show (0: the configured cap)")
	fs.Parse(args)
	if *in == "" {
		return usageError(fs, "the -in flag is required")
	}

	ctx := context.Background()
	sum, err := svc.LoadFile(ctx, *in)
	if err != nil {
		return err
	}
	head, err := svc.Preview(ctx, *n)
	if err != nil {
		return err
	}
	printTable(head)
	if head.NumRows() < sum.Rows {
		fmt.Printf("(first %d of %d rows)\n", head.NumRows(), sum.Rows)
	}
	return nil
}
