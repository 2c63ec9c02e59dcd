package engine

import (
	"fmt"
	"strings"
)

// Column is one named column of cells.
type Column struct {
	Name  string
	Cells []Cell
}

// Table is an ordered sequence of named columns of equal length. A Table
// is immutable once built: every operation returns a new Table and never
// mutates its input, so snapshots are safe to share across concurrent
// read-only operations.
type Table struct {
	cols   []Column
	index  map[string]int
	source string
}

// New builds a table from columns, validating that names are non-empty
// and unique and that all columns share one length.
func New(cols []Column) (*Table, error) {
	t := &Table{cols: cols}
	if err := t.buildIndex(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) buildIndex() error {
	t.index = make(map[string]int, len(t.cols))
	rows := -1
	for i, col := range t.cols {
		if col.Name == "" {
			return &SchemaError{Reason: fmt.Sprintf("column %d has an empty name", i+1)}
		}
		if _, dup := t.index[col.Name]; dup {
			return &SchemaError{Reason: fmt.Sprintf("duplicate column name %q", col.Name)}
		}
		t.index[col.Name] = i
		if rows == -1 {
			rows = len(col.Cells)
		} else if len(col.Cells) != rows {
			return &SchemaError{
				Reason: fmt.Sprintf("column %q has %d rows, expected %d", col.Name, len(col.Cells), rows),
			}
		}
	}
	return nil
}

// FromStringRows builds a table from a header row and raw string rows, the
// shape file readers produce. Every value passes through CleanCell; cells
// that are empty after cleaning load as Missing, everything else as Text.
// Empty header names become column_N and duplicate header names are
// suffixed _2, _3, ... in encounter order. Short rows pad with Missing;
// rows longer than the header fail unless the surplus cells are empty.
func FromStringRows(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, &SchemaError{Reason: "no columns in header"}
	}

	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		name := CleanCell(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if used[name] {
			base := name
			for n := 2; ; n++ {
				name = fmt.Sprintf("%s_%d", base, n)
				if !used[name] {
					break
				}
			}
		}
		used[name] = true
		names[i] = name
	}

	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = Column{Name: name, Cells: make([]Cell, 0, len(rows))}
	}

	for ri, row := range rows {
		if len(row) > len(names) {
			for _, extra := range row[len(names):] {
				if CleanCell(extra) != "" {
					return nil, &SchemaError{
						Reason: fmt.Sprintf("row %d has %d cells, header has %d", ri+1, len(row), len(names)),
					}
				}
			}
			row = row[:len(names)]
		}
		for ci := range cols {
			var raw string
			if ci < len(row) {
				raw = CleanCell(row[ci])
			}
			if raw == "" {
				cols[ci].Cells = append(cols[ci].Cells, Missing())
			} else {
				cols[ci].Cells = append(cols[ci].Cells, Text(raw))
			}
		}
	}

	return New(cols)
}

// WithSource returns a copy of the table tagged with a provenance
// identifier, typically the file path it was read from.
func (t *Table) WithSource(src string) *Table {
	clone := *t
	clone.source = src
	return &clone
}

// Source returns the table's provenance identifier, or "" if untagged.
func (t *Table) Source() string { return t.source }

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Cells)
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column. The returned cells must not be
// mutated.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

// ColumnAt returns the column at position i in table order.
func (t *Table) ColumnAt(i int) Column { return t.cols[i] }

// HasColumn reports whether the table contains the named column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Row returns a copy of row i across all columns, in column order.
func (t *Table) Row(i int) []Cell {
	row := make([]Cell, len(t.cols))
	for ci, col := range t.cols {
		row[ci] = col.Cells[i]
	}
	return row
}

// Head returns a table holding the first n rows (all rows when n exceeds
// the row count, no rows when n <= 0).
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.NumRows() {
		n = t.NumRows()
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return t.selectRows(idx)
}

// Validate re-checks the table's structural invariants. Tables built
// through New are always valid; Validate guards zero-value and hand-built
// tables at the store boundary.
func (t *Table) Validate() error {
	if t == nil {
		return &SchemaError{Reason: "table is nil"}
	}
	probe := &Table{cols: t.cols}
	return probe.buildIndex()
}

// Equal reports whether two tables have the same columns in the same
// order with cell-equal contents. Provenance is ignored.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.cols) != len(o.cols) || t.NumRows() != o.NumRows() {
		return false
	}
	for i, col := range t.cols {
		other := o.cols[i]
		if col.Name != other.Name {
			return false
		}
		for j, cell := range col.Cells {
			if !cell.Equal(other.Cells[j]) {
				return false
			}
		}
	}
	return true
}

// String summarizes the table for logs.
func (t *Table) String() string {
	if t == nil {
		return "<nil table>"
	}
	return fmt.Sprintf("table(%d cols x %d rows: %s)", t.NumCols(), t.NumRows(), strings.Join(t.ColumnNames(), ", "))
}

// selectRows builds a new table from the given row indices, preserving
// column order and provenance. Indices may repeat and appear in any
// order; the output follows them exactly.
func (t *Table) selectRows(idx []int) *Table {
	cols := make([]Column, len(t.cols))
	for ci, col := range t.cols {
		cells := make([]Cell, len(idx))
		for out, ri := range idx {
			cells[out] = col.Cells[ri]
		}
		cols[ci] = Column{Name: col.Name, Cells: cells}
	}
	nt := &Table{cols: cols, source: t.source}
	// Index rebuild cannot fail: names were valid in the source table.
	_ = nt.buildIndex()
	return nt
}

// withColumnCells returns a copy of the table with one column's cells
// replaced. The new cells must match the table's row count.
func (t *Table) withColumnCells(i int, cells []Cell) *Table {
	cols := make([]Column, len(t.cols))
	copy(cols, t.cols)
	cols[i] = Column{Name: t.cols[i].Name, Cells: cells}
	nt := &Table{cols: cols, source: t.source}
	_ = nt.buildIndex()
	return nt
}

// columnIndex returns the position of a column, or a ColumnNotFoundError.
func (t *Table) columnIndex(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, &ColumnNotFoundError{Column: name}
	}
	return i, nil
}
