package engine

// Export-side operations: multi-format export, partition export to files
// or workbook sheets, two-file comparison with its report workbook, and
// the derived statistics reports.

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Export writes the working table under dir in every requested format.
// Outcomes are per-format and independent; the call itself only fails
// when no table is loaded. An empty base derives from the first source
// path, falling back to "export".
func (s *Service) Export(ctx context.Context, dir, base string, formats []Format) ([]ExportOutcome, error) {
	_, log := s.begin(ctx, "export")
	cur, err := s.working()
	if err != nil {
		return nil, err
	}
	if base == "" {
		base = s.defaultBase()
	}

	outcomes := s.exporter.Export(cur, dir, base, formats)
	for _, o := range outcomes {
		if o.Err != nil {
			log.Warn("format failed", "format", o.Format, "error", o.Err)
		} else {
			log.Info("format written", "format", o.Format, "path", o.Path)
		}
	}
	return outcomes, nil
}

// defaultBase derives an output file stem from the working table's first
// source path.
func (s *Service) defaultBase() string {
	sources := s.store.SourcePaths()
	if len(sources) == 0 {
		return "export"
	}
	base := filepath.Base(sources[0])
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		return "export"
	}
	return base
}

// SplitSummary reports a completed partition export.
type SplitSummary struct {
	Column    string   `json:"column"`
	Groups    int      `json:"groups"`
	Outputs   []string `json:"outputs"`
	ElapsedMs int64    `json:"elapsedMs"`
}

// SplitToFiles partitions the working table by a column and writes one
// file per group under dir, named <base>_<label>.<ext>.
func (s *Service) SplitToFiles(ctx context.Context, column, dir string, format Format) (*SplitSummary, error) {
	_, log := s.begin(ctx, "split-files")
	cur, err := s.working()
	if err != nil {
		return nil, err
	}
	w, ok := s.exporter.Writer(format)
	if !ok {
		return nil, &UnavailableFormatError{Format: format}
	}

	start := time.Now()
	p, err := PartitionBy(cur, column)
	if err != nil {
		return nil, err
	}

	base := s.defaultBase()
	outputs := make([]string, 0, p.Len())
	for _, g := range p.Groups {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, g.Label, format))
		if err := w.Write(g.Table, path); err != nil {
			log.Error("group write failed", "column", column, "label", g.Label, "error", err)
			return nil, err
		}
		outputs = append(outputs, path)
	}

	sum := &SplitSummary{
		Column:    column,
		Groups:    p.Len(),
		Outputs:   outputs,
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	log.Info("split to files", "column", column, "groups", sum.Groups)
	return sum, nil
}

// SplitToWorkbook partitions the working table by a column and writes
// one workbook with one sheet per group.
func (s *Service) SplitToWorkbook(ctx context.Context, column, path string) (*SplitSummary, error) {
	_, log := s.begin(ctx, "split-workbook")
	cur, err := s.working()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	p, err := PartitionBy(cur, column)
	if err != nil {
		return nil, err
	}

	sheets := make([]Sheet, p.Len())
	for i, g := range p.Groups {
		sheets[i] = Sheet{Name: g.Label, Table: g.Table}
	}
	if err := s.workbook.WriteWorkbook(path, sheets); err != nil {
		log.Error("workbook write failed", "column", column, "path", path, "error", err)
		return nil, err
	}

	sum := &SplitSummary{
		Column:    column,
		Groups:    p.Len(),
		Outputs:   []string{path},
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	log.Info("split to workbook", "column", column, "groups", sum.Groups, "path", path)
	return sum, nil
}

// CompareSummary reports a two-file column comparison.
type CompareSummary struct {
	Result    *Comparison `json:"result"`
	Matches   int         `json:"matches"`
	OutPath   string      `json:"outPath,omitempty"`
	ElapsedMs int64       `json:"elapsedMs"`
}

// CompareFiles compares a column of one file against a column of
// another. With a non-empty outPath the full report is written as a
// three-sheet workbook: the joined matching rows, then the rows unique
// to each side.
func (s *Service) CompareFiles(ctx context.Context, pathA, columnA, pathB, columnB, outPath string) (*CompareSummary, error) {
	_, log := s.begin(ctx, "compare")
	start := time.Now()

	tA, err := s.reader.Read(pathA)
	if err != nil {
		return nil, err
	}
	tB, err := s.reader.Read(pathB)
	if err != nil {
		return nil, err
	}

	result, err := Compare(tA, columnA, tB, columnB)
	if err != nil {
		log.Error("compare failed", "error", err)
		return nil, err
	}

	matches, err := MatchRows(tA, columnA, tB, columnB)
	if err != nil {
		return nil, err
	}

	if outPath != "" {
		onlyA, err := rowsWithValues(tA, columnA, result.OnlyA)
		if err != nil {
			return nil, err
		}
		onlyB, err := rowsWithValues(tB, columnB, result.OnlyB)
		if err != nil {
			return nil, err
		}
		sheets := []Sheet{
			{Name: "Matches", Table: matches},
			{Name: "Only_in_a", Table: onlyA},
			{Name: "Only_in_b", Table: onlyB},
		}
		if err := s.workbook.WriteWorkbook(outPath, sheets); err != nil {
			log.Error("report write failed", "path", outPath, "error", err)
			return nil, err
		}
	}

	sum := &CompareSummary{
		Result:    result,
		Matches:   matches.NumRows(),
		OutPath:   outPath,
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	log.Info("compared columns",
		"only_a", len(result.OnlyA), "only_b", len(result.OnlyB), "both", len(result.Both),
		"match_rows", sum.Matches)
	return sum, nil
}

// Describe returns the descriptive-statistics report for the working
// table's numeric columns.
func (s *Service) Describe(ctx context.Context) (*Table, error) {
	_, log := s.begin(ctx, "describe")
	cur, err := s.working()
	if err != nil {
		return nil, err
	}
	report, err := Describe(s.co, cur)
	if err != nil {
		return nil, err
	}
	log.Info("described table", "numeric_columns", report.NumRows())
	return report, nil
}

// Correlate returns the Pearson correlation matrix for the working
// table's numeric columns.
func (s *Service) Correlate(ctx context.Context) (*Table, error) {
	_, log := s.begin(ctx, "correlate")
	cur, err := s.working()
	if err != nil {
		return nil, err
	}
	report, err := Correlate(s.co, cur)
	if err != nil {
		return nil, err
	}
	log.Info("correlated columns", "numeric_columns", report.NumRows())
	return report, nil
}
