package engine

import (
	"errors"
	"testing"
)

// mustTable builds a table from columns and fails the test on error.
func mustTable(t *testing.T, cols []Column) *Table {
	t.Helper()
	tbl, err := New(cols)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return tbl
}

// textColumn builds a column of Text cells, with "" loading as Missing.
func textColumn(name string, values ...string) Column {
	cells := make([]Cell, len(values))
	for i, v := range values {
		if v == "" {
			cells[i] = Missing()
		} else {
			cells[i] = Text(v)
		}
	}
	return Column{Name: name, Cells: cells}
}

// ----------------------------------------------------------------------------
// New Tests
// ----------------------------------------------------------------------------

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cols    []Column
		wantErr bool
	}{
		{
			name: "valid table",
			cols: []Column{
				textColumn("a", "1", "2"),
				textColumn("b", "x", "y"),
			},
		},
		{
			name: "zero columns",
			cols: nil,
		},
		{
			name: "empty column name",
			cols: []Column{
				textColumn("", "1"),
			},
			wantErr: true,
		},
		{
			name: "duplicate column name",
			cols: []Column{
				textColumn("a", "1"),
				textColumn("a", "2"),
			},
			wantErr: true,
		},
		{
			name: "ragged columns",
			cols: []Column{
				textColumn("a", "1", "2"),
				textColumn("b", "x"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cols)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var schemaErr *SchemaError
				if !errors.As(err, &schemaErr) {
					t.Errorf("New() error type = %T, want *SchemaError", err)
				}
			}
		})
	}
}

// ----------------------------------------------------------------------------
// FromStringRows Tests
// ----------------------------------------------------------------------------

func TestFromStringRows(t *testing.T) {
	t.Run("basic load", func(t *testing.T) {
		tbl, err := FromStringRows(
			[]string{"name", "amount"},
			[][]string{
				{"alice", "10"},
				{"bob", "20"},
			},
		)
		if err != nil {
			t.Fatalf("FromStringRows() error: %v", err)
		}
		if tbl.NumRows() != 2 || tbl.NumCols() != 2 {
			t.Errorf("got %dx%d, want 2 rows x 2 cols", tbl.NumRows(), tbl.NumCols())
		}
		col, _ := tbl.Column("name")
		if got, _ := col.Cells[0].Text(); got != "alice" {
			t.Errorf("cell = %q, want %q", got, "alice")
		}
	})

	t.Run("empty cells load as missing", func(t *testing.T) {
		tbl, err := FromStringRows(
			[]string{"a", "b"},
			[][]string{{"1", ""}, {"", "  "}},
		)
		if err != nil {
			t.Fatalf("FromStringRows() error: %v", err)
		}
		colB, _ := tbl.Column("b")
		if !colB.Cells[0].IsMissing() || !colB.Cells[1].IsMissing() {
			t.Error("empty and whitespace-only cells should load as missing")
		}
	})

	t.Run("cells are cleaned", func(t *testing.T) {
		tbl, err := FromStringRows(
			[]string{"id"},
			[][]string{{`="000123"`}},
		)
		if err != nil {
			t.Fatalf("FromStringRows() error: %v", err)
		}
		col, _ := tbl.Column("id")
		if got, _ := col.Cells[0].Text(); got != "000123" {
			t.Errorf("cell = %q, want cleaned %q", got, "000123")
		}
	})

	t.Run("empty header names become column_N", func(t *testing.T) {
		tbl, err := FromStringRows([]string{"a", "", ""}, nil)
		if err != nil {
			t.Fatalf("FromStringRows() error: %v", err)
		}
		want := []string{"a", "column_2", "column_3"}
		got := tbl.ColumnNames()
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ColumnNames()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("duplicate headers are suffixed", func(t *testing.T) {
		tbl, err := FromStringRows([]string{"x", "x", "x"}, nil)
		if err != nil {
			t.Fatalf("FromStringRows() error: %v", err)
		}
		want := []string{"x", "x_2", "x_3"}
		got := tbl.ColumnNames()
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("ColumnNames()[%d] = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("short rows pad with missing", func(t *testing.T) {
		tbl, err := FromStringRows(
			[]string{"a", "b", "c"},
			[][]string{{"1"}},
		)
		if err != nil {
			t.Fatalf("FromStringRows() error: %v", err)
		}
		if c, _ := tbl.Column("b"); !c.Cells[0].IsMissing() {
			t.Error("padded cell should be missing")
		}
		if c, _ := tbl.Column("c"); !c.Cells[0].IsMissing() {
			t.Error("padded cell should be missing")
		}
	})

	t.Run("surplus empty cells are dropped", func(t *testing.T) {
		tbl, err := FromStringRows(
			[]string{"a"},
			[][]string{{"1", "", "  "}},
		)
		if err != nil {
			t.Fatalf("FromStringRows() error: %v", err)
		}
		if tbl.NumCols() != 1 {
			t.Errorf("NumCols() = %d, want 1", tbl.NumCols())
		}
	})

	t.Run("surplus data fails", func(t *testing.T) {
		_, err := FromStringRows(
			[]string{"a"},
			[][]string{{"1", "overflow"}},
		)
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Errorf("error = %v, want *SchemaError", err)
		}
	})

	t.Run("no header fails", func(t *testing.T) {
		_, err := FromStringRows(nil, nil)
		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Errorf("error = %v, want *SchemaError", err)
		}
	})
}

// ----------------------------------------------------------------------------
// Accessor Tests
// ----------------------------------------------------------------------------

func TestTableAccessors(t *testing.T) {
	tbl := mustTable(t, []Column{
		textColumn("a", "1", "2", "3"),
		textColumn("b", "x", "y", "z"),
	})

	if tbl.NumRows() != 3 {
		t.Errorf("NumRows() = %d, want 3", tbl.NumRows())
	}
	if tbl.NumCols() != 2 {
		t.Errorf("NumCols() = %d, want 2", tbl.NumCols())
	}
	if !tbl.HasColumn("a") || tbl.HasColumn("zzz") {
		t.Error("HasColumn misreported membership")
	}
	if _, ok := tbl.Column("zzz"); ok {
		t.Error("Column() found a column that does not exist")
	}
	if got := tbl.ColumnAt(1).Name; got != "b" {
		t.Errorf("ColumnAt(1).Name = %q, want %q", got, "b")
	}

	row := tbl.Row(1)
	if len(row) != 2 {
		t.Fatalf("Row(1) length = %d, want 2", len(row))
	}
	if got, _ := row[0].Text(); got != "2" {
		t.Errorf("Row(1)[0] = %q, want %q", got, "2")
	}
	if got, _ := row[1].Text(); got != "y" {
		t.Errorf("Row(1)[1] = %q, want %q", got, "y")
	}
}

func TestTableHead(t *testing.T) {
	tbl := mustTable(t, []Column{textColumn("a", "1", "2", "3")})

	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{-1, 0},
		{2, 2},
		{3, 3},
		{10, 3},
	}

	for _, tt := range tests {
		if got := tbl.Head(tt.n).NumRows(); got != tt.want {
			t.Errorf("Head(%d).NumRows() = %d, want %d", tt.n, got, tt.want)
		}
	}

	head := tbl.Head(2)
	col, _ := head.Column("a")
	if got, _ := col.Cells[1].Text(); got != "2" {
		t.Errorf("Head(2) second row = %q, want %q", got, "2")
	}
}

func TestTableEqual(t *testing.T) {
	base := mustTable(t, []Column{textColumn("a", "1", "2")})

	t.Run("equal contents", func(t *testing.T) {
		other := mustTable(t, []Column{textColumn("a", "1", "2")})
		if !base.Equal(other) {
			t.Error("tables with equal contents should be Equal")
		}
	})

	t.Run("source is ignored", func(t *testing.T) {
		tagged := base.WithSource("one.csv")
		if !base.Equal(tagged) {
			t.Error("provenance should not affect equality")
		}
	})

	t.Run("different cell", func(t *testing.T) {
		other := mustTable(t, []Column{textColumn("a", "1", "9")})
		if base.Equal(other) {
			t.Error("tables with different cells should not be Equal")
		}
	})

	t.Run("different column name", func(t *testing.T) {
		other := mustTable(t, []Column{textColumn("b", "1", "2")})
		if base.Equal(other) {
			t.Error("tables with different column names should not be Equal")
		}
	})

	t.Run("nil handling", func(t *testing.T) {
		var nilTable *Table
		if base.Equal(nil) {
			t.Error("table should not equal nil")
		}
		if !nilTable.Equal(nil) {
			t.Error("nil should equal nil")
		}
	})
}

func TestTableWithSource(t *testing.T) {
	tbl := mustTable(t, []Column{textColumn("a", "1")})
	tagged := tbl.WithSource("data.csv")

	if tagged.Source() != "data.csv" {
		t.Errorf("Source() = %q, want %q", tagged.Source(), "data.csv")
	}
	if tbl.Source() != "" {
		t.Error("WithSource should not mutate the original")
	}
}

func TestTableValidate(t *testing.T) {
	t.Run("nil table", func(t *testing.T) {
		var tbl *Table
		var schemaErr *SchemaError
		if err := tbl.Validate(); !errors.As(err, &schemaErr) {
			t.Errorf("Validate() error = %v, want *SchemaError", err)
		}
	})

	t.Run("valid table", func(t *testing.T) {
		tbl := mustTable(t, []Column{textColumn("a", "1")})
		if err := tbl.Validate(); err != nil {
			t.Errorf("Validate() error = %v, want nil", err)
		}
	})
}
