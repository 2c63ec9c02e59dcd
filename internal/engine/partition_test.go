package engine

import (
	"errors"
	"strings"
	"testing"
)

// ----------------------------------------------------------------------------
// PartitionBy Tests
// ----------------------------------------------------------------------------

func TestPartitionBy(t *testing.T) {
	tbl := mustTable(t, []Column{
		textColumn("region", "west", "east", "west", "", "east"),
		textColumn("amount", "1", "2", "3", "4", "5"),
	})

	p, err := PartitionBy(tbl, "region")
	if err != nil {
		t.Fatalf("PartitionBy() error: %v", err)
	}

	// Groups in first-appearance order, Missing as its own group.
	wantLabels := []string{"west", "east", "(blank)"}
	if p.Len() != len(wantLabels) {
		t.Fatalf("Len() = %d, want %d", p.Len(), len(wantLabels))
	}
	for i, want := range wantLabels {
		if p.Groups[i].Label != want {
			t.Errorf("Groups[%d].Label = %q, want %q", i, p.Groups[i].Label, want)
		}
	}

	// Disjoint and exhaustive: group sizes sum to the source rows.
	total := 0
	for _, g := range p.Groups {
		total += g.Table.NumRows()
	}
	if total != tbl.NumRows() {
		t.Errorf("group rows sum to %d, want %d", total, tbl.NumRows())
	}

	// Rows keep their source order inside each group.
	west := p.Groups[0].Table
	amounts, _ := west.Column("amount")
	if v, _ := amounts.Cells[0].Text(); v != "1" {
		t.Errorf("west row 0 amount = %q, want %q", v, "1")
	}
	if v, _ := amounts.Cells[1].Text(); v != "3" {
		t.Errorf("west row 1 amount = %q, want %q", v, "3")
	}

	// The missing group's key is Missing.
	if !p.Groups[2].Key.IsMissing() {
		t.Error("blank group's key should be missing")
	}
}

func TestPartitionBy_RawValueIdentity(t *testing.T) {
	// A numeric 5 and the text "5" are different raw values.
	tbl := mustTable(t, []Column{
		{Name: "v", Cells: []Cell{NumberFromInt(5), Text("5"), NumberFromFloat(5.0)}},
	})

	p, err := PartitionBy(tbl, "v")
	if err != nil {
		t.Fatalf("PartitionBy() error: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (number 5 and text \"5\")", p.Len())
	}
	if p.Groups[0].Table.NumRows() != 2 {
		t.Errorf("numeric group rows = %d, want 2", p.Groups[0].Table.NumRows())
	}
}

func TestPartitionBy_UnknownColumn(t *testing.T) {
	tbl := mustTable(t, []Column{textColumn("a", "1")})

	_, err := PartitionBy(tbl, "zzz")
	var notFound *ColumnNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("PartitionBy() error = %v, want *ColumnNotFoundError", err)
	}
	if notFound.Column != "zzz" {
		t.Errorf("ColumnNotFoundError.Column = %q, want %q", notFound.Column, "zzz")
	}
}

func TestPartitionBy_SingleValueReproducesTable(t *testing.T) {
	tbl := mustTable(t, []Column{
		textColumn("k", "only", "only"),
		textColumn("v", "1", "2"),
	})

	p, err := PartitionBy(tbl, "k")
	if err != nil {
		t.Fatalf("PartitionBy() error: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
	if !p.Groups[0].Table.Equal(tbl) {
		t.Error("single-group partition should reproduce the table")
	}
}

// ----------------------------------------------------------------------------
// Label Tests
// ----------------------------------------------------------------------------

func TestFileSafeLabel(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"plain text", Text("west"), "west"},
		{"missing", Missing(), "(blank)"},
		{"path separators replaced", Text("a/b\\c"), "a_b_c"},
		{"reserved punctuation replaced", Text(`q:*?"<>|`), "q_______"},
		{"control characters replaced", Text("a\tb"), "a_b"},
		{"trailing dots trimmed", Text("name..."), "name"},
		{"number uses canonical form", NumberFromFloat(5.0), "5"},
		{"only unsafe characters", Text("..."), "_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fileSafeLabel(tt.cell); got != tt.want {
				t.Errorf("fileSafeLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileSafeLabel_CapsLength(t *testing.T) {
	long := Text(strings.Repeat("x", 200))
	got := fileSafeLabel(long)
	if len([]rune(got)) != 80 {
		t.Errorf("label length = %d runes, want 80", len([]rune(got)))
	}
}

func TestPartitionBy_CollidingLabels(t *testing.T) {
	// "a/b" and "a:b" both sanitize to "a_b".
	tbl := mustTable(t, []Column{textColumn("k", "a/b", "a:b")})

	p, err := PartitionBy(tbl, "k")
	if err != nil {
		t.Fatalf("PartitionBy() error: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}
	if p.Groups[0].Label != "a_b" || p.Groups[1].Label != "a_b_2" {
		t.Errorf("labels = %q, %q; want a_b, a_b_2", p.Groups[0].Label, p.Groups[1].Label)
	}
}
