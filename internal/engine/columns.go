package engine

// columns.go holds the per-column transformations: fill-missing, type
// conversion, delimiter splitting, auto-numbering, whitespace trimming
// and duplicate-row removal. Each returns a new table and, where a
// transformation can silently change cells, a count of affected cells so
// callers can report what happened.

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// FillMode names a fill-missing strategy.
type FillMode string

const (
	FillLiteral FillMode = "literal"
	FillMean    FillMode = "mean"
	FillMedian  FillMode = "median"
)

// ParseFillMode maps a user-supplied strategy name to a FillMode.
func ParseFillMode(s string) (FillMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "literal", "value":
		return FillLiteral, true
	case "mean", "avg", "average":
		return FillMean, true
	case "median":
		return FillMedian, true
	}
	return "", false
}

// FillStrategy selects how FillMissing computes replacement values. The
// Literal cell is only consulted in literal mode.
type FillStrategy struct {
	Mode    FillMode
	Literal Cell
}

// FillMissing fills a column's absent values and returns the new table
// with the number of cells filled. Literal mode replaces Missing cells
// with the given value. Mean and median compute their statistic over the
// cells that coerce to Number, then fill both the Missing cells and the
// cells that failed coercion; cells that already held usable numbers keep
// their original value. Mean or median over a column with no numeric
// values fails with UnsupportedStrategyError.
func FillMissing(co *Coercer, t *Table, column string, strat FillStrategy) (*Table, int, error) {
	if t == nil {
		return nil, 0, &SchemaError{Reason: "table is nil"}
	}
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, 0, err
	}
	cells := t.cols[ci].Cells

	var fill Cell
	replaceFailed := false

	switch strat.Mode {
	case FillLiteral:
		if strat.Literal.IsMissing() {
			return nil, 0, &UnsupportedStrategyError{
				Strategy: string(FillLiteral),
				Column:   column,
				Reason:   "fill value is missing",
			}
		}
		fill = strat.Literal
	case FillMean, FillMedian:
		nums := make([]decimal.Decimal, 0, len(cells))
		for _, cell := range cells {
			if d, ok := co.Coerce(cell, KindNumber).Number(); ok {
				nums = append(nums, d)
			}
		}
		if len(nums) == 0 {
			return nil, 0, &UnsupportedStrategyError{
				Strategy: string(strat.Mode),
				Column:   column,
				Reason:   "no numeric values to average",
			}
		}
		if strat.Mode == FillMean {
			fill = Number(decimal.Avg(nums[0], nums[1:]...))
		} else {
			fill = Number(median(nums))
		}
		replaceFailed = true
	default:
		return nil, 0, &UnsupportedStrategyError{
			Strategy: string(strat.Mode),
			Column:   column,
			Reason:   "unknown strategy",
		}
	}

	out := make([]Cell, len(cells))
	filled := 0
	for i, cell := range cells {
		replace := cell.IsMissing()
		if replaceFailed && !replace {
			_, ok := co.Coerce(cell, KindNumber).Number()
			replace = !ok
		}
		if replace {
			out[i] = fill
			filled++
		} else {
			out[i] = cell
		}
	}
	return t.withColumnCells(ci, out), filled, nil
}

// median returns the middle of the values, averaging the two central
// values for even counts. The input is not modified.
func median(nums []decimal.Decimal) decimal.Decimal {
	sorted := append([]decimal.Decimal(nil), nums...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cmp(sorted[j]) < 0 })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return decimal.Avg(sorted[mid-1], sorted[mid])
}

// ConvertColumn coerces every cell of a column to the target kind.
// Value-level failures are absorbed: unconvertible cells become Missing
// and the returned count reports how many cells are Missing afterward
// (failed conversions plus values that were already absent). Converting
// an already-converted column is a no-op.
func ConvertColumn(co *Coercer, t *Table, column string, target Kind) (*Table, int, error) {
	if t == nil {
		return nil, 0, &SchemaError{Reason: "table is nil"}
	}
	if target == KindMissing {
		return nil, 0, &UnsupportedStrategyError{
			Strategy: target.String(),
			Column:   column,
			Reason:   "not a convertible type",
		}
	}
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, 0, err
	}

	cells := t.cols[ci].Cells
	out := make([]Cell, len(cells))
	missing := 0
	for i, cell := range cells {
		v := co.Coerce(cell, target)
		if v.IsMissing() {
			missing++
		}
		out[i] = v
	}
	return t.withColumnCells(ci, out), missing, nil
}

// SplitColumn splits each cell's canonical text on a literal delimiter
// into new Text columns appended after the existing ones; the original
// column is kept. With explicit names the split produces exactly that
// many parts, surplus text merging into the last part. Without names the
// column count is the widest split observed and names are generated as
// <column>_1, <column>_2, ... Rows with fewer parts pad with Missing, as
// do empty parts and Missing source cells. A new name that collides with
// an existing column fails with ColumnExistsError.
func SplitColumn(t *Table, column, delimiter string, names []string) (*Table, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}
	if delimiter == "" {
		return nil, &InvalidPredicateError{Reason: "empty delimiter"}
	}
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	cells := t.cols[ci].Cells

	parts := make([][]string, len(cells))
	width := 0
	for i, cell := range cells {
		if cell.IsMissing() {
			continue
		}
		if len(names) > 0 {
			parts[i] = strings.SplitN(cell.String(), delimiter, len(names))
		} else {
			parts[i] = strings.Split(cell.String(), delimiter)
		}
		if len(parts[i]) > width {
			width = len(parts[i])
		}
	}

	if len(names) > 0 {
		width = len(names)
	} else {
		if width == 0 {
			width = 1
		}
		names = make([]string, width)
		for i := range names {
			names[i] = fmt.Sprintf("%s_%d", column, i+1)
		}
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if name == "" {
			return nil, &SchemaError{Reason: "empty split column name"}
		}
		if t.HasColumn(name) || seen[name] {
			return nil, &ColumnExistsError{Column: name}
		}
		seen[name] = true
	}

	cols := make([]Column, 0, len(t.cols)+width)
	cols = append(cols, t.cols...)
	for p := 0; p < width; p++ {
		cells := make([]Cell, len(parts))
		for i := range parts {
			if p < len(parts[i]) {
				if piece := parts[i][p]; piece != "" {
					cells[i] = Text(piece)
					continue
				}
			}
			cells[i] = Missing()
		}
		cols = append(cols, Column{Name: names[p], Cells: cells})
	}
	return New(cols)
}

// AutoNumber appends a column of strictly increasing integers in current
// row order, starting at start. Fails with ColumnExistsError when the
// name is already taken.
func AutoNumber(t *Table, name string, start int) (*Table, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}
	if name == "" {
		return nil, &SchemaError{Reason: "empty column name"}
	}
	if t.HasColumn(name) {
		return nil, &ColumnExistsError{Column: name}
	}

	cells := make([]Cell, t.NumRows())
	for i := range cells {
		cells[i] = NumberFromInt(int64(start + i))
	}
	cols := make([]Column, 0, len(t.cols)+1)
	cols = append(cols, t.cols...)
	cols = append(cols, Column{Name: name, Cells: cells})
	return New(cols)
}

// TrimSpaces trims surrounding whitespace from every Text cell and
// returns the new table with the number of cells changed. Cells left
// empty by trimming become Missing.
func TrimSpaces(t *Table) (*Table, int) {
	if t == nil {
		return nil, 0
	}
	cols := make([]Column, len(t.cols))
	changed := 0
	for ci, col := range t.cols {
		cells := make([]Cell, len(col.Cells))
		for i, cell := range col.Cells {
			if raw, ok := cell.Text(); ok {
				trimmed := strings.TrimSpace(raw)
				if trimmed != raw {
					changed++
					if trimmed == "" {
						cells[i] = Missing()
					} else {
						cells[i] = Text(trimmed)
					}
					continue
				}
			}
			cells[i] = cell
		}
		cols[ci] = Column{Name: col.Name, Cells: cells}
	}
	nt, _ := New(cols)
	nt.source = t.source
	return nt, changed
}

// Dedupe removes rows whose key column repeats an earlier raw value,
// keeping the first occurrence, and returns the new table with the
// number of rows removed. An empty column name deduplicates on whole-row
// identity.
func Dedupe(t *Table, column string) (*Table, int, error) {
	if t == nil {
		return nil, 0, &SchemaError{Reason: "table is nil"}
	}

	keyOf := func(row int) string {
		parts := make([]string, len(t.cols))
		for ci, col := range t.cols {
			parts[ci] = col.Cells[row].key()
		}
		return strings.Join(parts, "\x1f")
	}
	if column != "" {
		ci, err := t.columnIndex(column)
		if err != nil {
			return nil, 0, err
		}
		keyOf = func(row int) string { return t.cols[ci].Cells[row].key() }
	}

	seen := make(map[string]bool)
	var idx []int
	for i := 0; i < t.NumRows(); i++ {
		k := keyOf(i)
		if seen[k] {
			continue
		}
		seen[k] = true
		idx = append(idx, i)
	}
	removed := t.NumRows() - len(idx)
	return t.selectRows(idx), removed, nil
}
