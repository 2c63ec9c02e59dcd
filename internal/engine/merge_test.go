package engine

import (
	"errors"
	"testing"
)

// ----------------------------------------------------------------------------
// Merge Tests
// ----------------------------------------------------------------------------

func TestMerge_SingleTable(t *testing.T) {
	co := newTestCoercer()
	tbl := mustTable(t, []Column{
		textColumn("a", "1", "2"),
		textColumn("b", "x", "y"),
	})

	got, err := Merge(co, []*Table{tbl})
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if !got.Equal(tbl) {
		t.Error("merging a single table should reproduce it")
	}
}

func TestMerge_UnionColumns(t *testing.T) {
	co := newTestCoercer()
	first := mustTable(t, []Column{
		textColumn("name", "alice", "bob"),
		textColumn("amount", "10", "20"),
	})
	second := mustTable(t, []Column{
		textColumn("name", "carol"),
		textColumn("city", "oslo"),
	})

	got, err := Merge(co, []*Table{first, second})
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	// Union of columns in first-seen order.
	wantNames := []string{"name", "amount", "city"}
	gotNames := got.ColumnNames()
	if len(gotNames) != len(wantNames) {
		t.Fatalf("ColumnNames() = %v, want %v", gotNames, wantNames)
	}
	for i := range wantNames {
		if gotNames[i] != wantNames[i] {
			t.Errorf("ColumnNames()[%d] = %q, want %q", i, gotNames[i], wantNames[i])
		}
	}

	if got.NumRows() != 3 {
		t.Fatalf("NumRows() = %d, want 3", got.NumRows())
	}

	// Rows concatenate in input order.
	name, _ := got.Column("name")
	if v, _ := name.Cells[2].Text(); v != "carol" {
		t.Errorf("row 2 name = %q, want %q", v, "carol")
	}

	// A column absent from one input holds Missing for that input's rows.
	amount, _ := got.Column("amount")
	if !amount.Cells[2].IsMissing() {
		t.Error("second file's rows should be missing under 'amount'")
	}
	city, _ := got.Column("city")
	if !city.Cells[0].IsMissing() || !city.Cells[1].IsMissing() {
		t.Error("first file's rows should be missing under 'city'")
	}
	if v, _ := city.Cells[2].Text(); v != "oslo" {
		t.Errorf("row 2 city = %q, want %q", v, "oslo")
	}
}

func TestMerge_KindConflict(t *testing.T) {
	co := newTestCoercer()
	numbers := mustTable(t, []Column{textColumn("v", "1", "2")}).WithSource("numbers.csv")
	dates := mustTable(t, []Column{textColumn("v", "2024-01-15")}).WithSource("dates.csv")

	_, err := Merge(co, []*Table{numbers, dates})

	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) {
		t.Fatalf("Merge() error = %v, want *MergeError", err)
	}
	if mergeErr.Column != "v" {
		t.Errorf("MergeError.Column = %q, want %q", mergeErr.Column, "v")
	}
	if mergeErr.SourceA != "numbers.csv" || mergeErr.SourceB != "dates.csv" {
		t.Errorf("MergeError sources = %q, %q; want both input names",
			mergeErr.SourceA, mergeErr.SourceB)
	}
}

func TestMerge_TextNeverConflicts(t *testing.T) {
	co := newTestCoercer()
	numbers := mustTable(t, []Column{textColumn("v", "1", "2")})
	words := mustTable(t, []Column{textColumn("v", "hello")})

	got, err := Merge(co, []*Table{numbers, words})
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if got.NumRows() != 3 {
		t.Errorf("NumRows() = %d, want 3", got.NumRows())
	}
}

func TestMerge_AllMissingColumnAdoptsLaterKind(t *testing.T) {
	co := newTestCoercer()
	empty := mustTable(t, []Column{textColumn("v", "", "")})
	dates := mustTable(t, []Column{textColumn("v", "2024-01-15")})
	numbers := mustTable(t, []Column{textColumn("v", "5")})

	// The all-missing first input claims nothing; the second input's
	// DateTime then conflicts with the third input's Number.
	_, err := Merge(co, []*Table{empty, dates, numbers})
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) {
		t.Fatalf("Merge() error = %v, want *MergeError", err)
	}

	// Without the numeric input the merge goes through.
	got, err := Merge(co, []*Table{empty, dates})
	if err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if got.NumRows() != 3 {
		t.Errorf("NumRows() = %d, want 3", got.NumRows())
	}
}

func TestMerge_NoInputs(t *testing.T) {
	co := newTestCoercer()

	var mergeErr *MergeError
	if _, err := Merge(co, nil); !errors.As(err, &mergeErr) {
		t.Errorf("Merge(nil) error = %v, want *MergeError", err)
	}
	if _, err := Merge(co, []*Table{nil}); !errors.As(err, &mergeErr) {
		t.Errorf("Merge([nil]) error = %v, want *MergeError", err)
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	co := newTestCoercer()
	first := mustTable(t, []Column{textColumn("a", "1")})
	second := mustTable(t, []Column{textColumn("b", "2")})
	firstCopy := mustTable(t, []Column{textColumn("a", "1")})
	secondCopy := mustTable(t, []Column{textColumn("b", "2")})

	if _, err := Merge(co, []*Table{first, second}); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}

	if !first.Equal(firstCopy) || !second.Equal(secondCopy) {
		t.Error("Merge() should not mutate its inputs")
	}
}
