package engine

import (
	"errors"
	"testing"
)

// ----------------------------------------------------------------------------
// Compare Tests
// ----------------------------------------------------------------------------

func TestCompare(t *testing.T) {
	a := mustTable(t, []Column{textColumn("id", "1", "2", "3", "2")})
	b := mustTable(t, []Column{textColumn("ref", "2", "4", "3")})

	got, err := Compare(a, "id", b, "ref")
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}

	assertTexts(t, got.OnlyA, []string{"1"})
	assertTexts(t, got.OnlyB, []string{"4"})
	assertTexts(t, got.Both, []string{"2", "3"})
}

func TestCompare_Disjoint(t *testing.T) {
	a := mustTable(t, []Column{textColumn("v", "x", "y", "z", "x")})
	b := mustTable(t, []Column{textColumn("v", "y", "w")})

	got, err := Compare(a, "v", b, "v")
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}

	// Every distinct value lands in exactly one set.
	seen := make(map[string]int)
	for _, v := range got.OnlyA {
		seen[v]++
	}
	for _, v := range got.OnlyB {
		seen[v]++
	}
	for _, v := range got.Both {
		seen[v]++
	}
	for v, n := range seen {
		if n != 1 {
			t.Errorf("value %q appears in %d sets, want 1", v, n)
		}
	}
	if len(seen) != 4 {
		t.Errorf("distinct values = %d, want 4", len(seen))
	}
}

func TestCompare_NormalizedIdentity(t *testing.T) {
	// Membership is computed over canonical text, so a numeric 5 in one
	// file matches the text "5" in the other.
	a := mustTable(t, []Column{
		{Name: "v", Cells: []Cell{NumberFromInt(5), NumberFromFloat(7.0)}},
	})
	b := mustTable(t, []Column{textColumn("v", "5", "8")})

	got, err := Compare(a, "v", b, "v")
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}

	assertTexts(t, got.Both, []string{"5"})
	assertTexts(t, got.OnlyA, []string{"7"})
	assertTexts(t, got.OnlyB, []string{"8"})
}

func TestCompare_MissingParticipates(t *testing.T) {
	a := mustTable(t, []Column{textColumn("v", "x", "")})
	b := mustTable(t, []Column{textColumn("v", "y", "")})

	got, err := Compare(a, "v", b, "v")
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}
	// Missing normalizes to "" on both sides and lands in Both.
	assertTexts(t, got.Both, []string{""})
}

func TestCompare_UnknownColumn(t *testing.T) {
	a := mustTable(t, []Column{textColumn("v", "x")})
	b := mustTable(t, []Column{textColumn("v", "y")})

	var notFound *ColumnNotFoundError
	if _, err := Compare(a, "zzz", b, "v"); !errors.As(err, &notFound) {
		t.Errorf("Compare() error = %v, want *ColumnNotFoundError", err)
	}
	if _, err := Compare(a, "v", b, "zzz"); !errors.As(err, &notFound) {
		t.Errorf("Compare() error = %v, want *ColumnNotFoundError", err)
	}
}

// ----------------------------------------------------------------------------
// MatchRows Tests
// ----------------------------------------------------------------------------

func TestMatchRows(t *testing.T) {
	a := mustTable(t, []Column{
		textColumn("id", "1", "2", "3"),
		textColumn("name", "alice", "bob", "carol"),
	})
	b := mustTable(t, []Column{
		textColumn("ref", "2", "2", "3"),
		textColumn("city", "oslo", "lisbon", "madrid"),
	})

	got, err := MatchRows(a, "id", b, "ref")
	if err != nil {
		t.Fatalf("MatchRows() error: %v", err)
	}

	// Row 2 of A matches two B rows; row 3 matches one. A's order rules.
	assertTexts(t, columnTexts(t, got, "id"), []string{"2", "2", "3"})
	assertTexts(t, columnTexts(t, got, "name"), []string{"bob", "bob", "carol"})
	assertTexts(t, columnTexts(t, got, "city"), []string{"oslo", "lisbon", "madrid"})
}

func TestMatchRows_SuffixesCollidingNames(t *testing.T) {
	a := mustTable(t, []Column{
		textColumn("id", "1"),
		textColumn("name", "alice"),
	})
	b := mustTable(t, []Column{
		textColumn("id", "1"),
		textColumn("city", "oslo"),
	})

	got, err := MatchRows(a, "id", b, "id")
	if err != nil {
		t.Fatalf("MatchRows() error: %v", err)
	}

	wantNames := []string{"id_a", "name", "id_b", "city"}
	gotNames := got.ColumnNames()
	if len(gotNames) != len(wantNames) {
		t.Fatalf("ColumnNames() = %v, want %v", gotNames, wantNames)
	}
	for i := range wantNames {
		if gotNames[i] != wantNames[i] {
			t.Errorf("ColumnNames()[%d] = %q, want %q", i, gotNames[i], wantNames[i])
		}
	}
}

func TestMatchRows_NoMatches(t *testing.T) {
	a := mustTable(t, []Column{textColumn("id", "1")})
	b := mustTable(t, []Column{textColumn("id", "2")})

	got, err := MatchRows(a, "id", b, "id")
	if err != nil {
		t.Fatalf("MatchRows() error: %v", err)
	}
	if got.NumRows() != 0 {
		t.Errorf("NumRows() = %d, want 0", got.NumRows())
	}
	// The joined header is still present.
	if got.NumCols() != 2 {
		t.Errorf("NumCols() = %d, want 2", got.NumCols())
	}
}

// ----------------------------------------------------------------------------
// rowsWithValues Tests
// ----------------------------------------------------------------------------

func TestRowsWithValues(t *testing.T) {
	tbl := mustTable(t, []Column{
		textColumn("v", "x", "y", "z", "x"),
		textColumn("id", "a", "b", "c", "d"),
	})

	got, err := rowsWithValues(tbl, "v", []string{"x", "z"})
	if err != nil {
		t.Fatalf("rowsWithValues() error: %v", err)
	}
	assertTexts(t, columnTexts(t, got, "id"), []string{"a", "c", "d"})

	empty, err := rowsWithValues(tbl, "v", nil)
	if err != nil {
		t.Fatalf("rowsWithValues() error: %v", err)
	}
	if empty.NumRows() != 0 {
		t.Errorf("NumRows() = %d, want 0", empty.NumRows())
	}
}
