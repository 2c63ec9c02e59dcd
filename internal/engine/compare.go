package engine

import "fmt"

// Comparison classifies the distinct values of two columns into three
// disjoint sets. Every distinct normalized value present in either column
// appears in exactly one set. Sets keep first-seen order: OnlyA and Both
// follow column A, OnlyB follows column B.
type Comparison struct {
	OnlyA []string
	OnlyB []string
	Both  []string
}

// Compare classifies one column against another. Both columns are
// normalized through canonical text before membership is computed, so a
// numeric 5 and the text "5" are the same value. Missing normalizes to
// the empty string and participates like any other value.
func Compare(tA *Table, columnA string, tB *Table, columnB string) (*Comparison, error) {
	setA, err := distinctText(tA, columnA)
	if err != nil {
		return nil, err
	}
	setB, err := distinctText(tB, columnB)
	if err != nil {
		return nil, err
	}

	inB := make(map[string]bool, len(setB))
	for _, v := range setB {
		inB[v] = true
	}
	inA := make(map[string]bool, len(setA))
	for _, v := range setA {
		inA[v] = true
	}

	result := &Comparison{}
	for _, v := range setA {
		if inB[v] {
			result.Both = append(result.Both, v)
		} else {
			result.OnlyA = append(result.OnlyA, v)
		}
	}
	for _, v := range setB {
		if !inA[v] {
			result.OnlyB = append(result.OnlyB, v)
		}
	}
	return result, nil
}

// distinctText returns a column's distinct canonical-text values in
// first-seen order.
func distinctText(t *Table, column string) ([]string, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, cell := range t.cols[ci].Cells {
		v := cell.String()
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out, nil
}

// MatchRows joins the rows of two tables whose compared columns carry the
// same normalized value: every A-row pairs with every matching B-row, in
// A's row order. The output carries all of A's columns then all of B's;
// when a name appears on both sides the copies are suffixed _a and _b.
func MatchRows(tA *Table, columnA string, tB *Table, columnB string) (*Table, error) {
	if tA == nil || tB == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}
	ciA, err := tA.columnIndex(columnA)
	if err != nil {
		return nil, err
	}
	ciB, err := tB.columnIndex(columnB)
	if err != nil {
		return nil, err
	}

	byValue := make(map[string][]int)
	for i, cell := range tB.cols[ciB].Cells {
		v := cell.String()
		byValue[v] = append(byValue[v], i)
	}

	var pairsA, pairsB []int
	for i, cell := range tA.cols[ciA].Cells {
		for _, j := range byValue[cell.String()] {
			pairsA = append(pairsA, i)
			pairsB = append(pairsB, j)
		}
	}

	names := make(map[string]int, len(tA.cols)+len(tB.cols))
	for _, col := range tA.cols {
		names[col.Name]++
	}
	for _, col := range tB.cols {
		names[col.Name]++
	}
	suffixed := func(name, suffix string) string {
		if names[name] > 1 {
			return name + suffix
		}
		return name
	}

	cols := make([]Column, 0, len(tA.cols)+len(tB.cols))
	for _, col := range tA.cols {
		cells := make([]Cell, len(pairsA))
		for out, ri := range pairsA {
			cells[out] = col.Cells[ri]
		}
		cols = append(cols, Column{Name: suffixed(col.Name, "_a"), Cells: cells})
	}
	for _, col := range tB.cols {
		cells := make([]Cell, len(pairsB))
		for out, ri := range pairsB {
			cells[out] = col.Cells[ri]
		}
		cols = append(cols, Column{Name: suffixed(col.Name, "_b"), Cells: cells})
	}

	t, err := New(cols)
	if err != nil {
		// Suffixing keeps joined names unique; a collision here means
		// the inputs already used _a/_b forms of the same name.
		return nil, fmt.Errorf("join columns: %w", err)
	}
	return t, nil
}

// rowsWithValues keeps the rows of a table whose column's normalized text
// is in the given value set. It backs the only-in-A / only-in-B sheets of
// the comparison workbook.
func rowsWithValues(t *Table, column string, values []string) (*Table, error) {
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(values))
	for _, v := range values {
		want[v] = true
	}
	var idx []int
	for i, cell := range t.cols[ci].Cells {
		if want[cell.String()] {
			idx = append(idx, i)
		}
	}
	return t.selectRows(idx), nil
}
