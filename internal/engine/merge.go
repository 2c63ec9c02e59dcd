package engine

import "fmt"

// Merge combines tables into one under outer-union semantics: the output
// columns are the union of all input columns in first-seen order, and a
// table lacking a column contributes Missing for every one of its rows
// under that column. Rows concatenate in the order the tables are given,
// preserving each table's own row order, so merging a single table
// reproduces it.
//
// Merge fails when two inputs declare the same column name with
// conflicting definite inferred kinds (say, Number in one file and
// DateTime in another); the error names the column and both inputs.
// Columns inferring as Text never conflict.
func Merge(co *Coercer, tables []*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, &MergeError{Reason: "no input tables"}
	}

	type colClaim struct {
		kind   Kind
		source string
	}

	var names []string
	claims := make(map[string]colClaim)

	for ti, t := range tables {
		if t == nil {
			return nil, &MergeError{Reason: fmt.Sprintf("input %d is nil", ti+1)}
		}
		src := t.source
		if src == "" {
			src = fmt.Sprintf("input %d", ti+1)
		}
		for _, col := range t.cols {
			kind := co.InferColumnKind(col.Cells)
			prev, seen := claims[col.Name]
			if !seen {
				names = append(names, col.Name)
				claims[col.Name] = colClaim{kind: kind, source: src}
				continue
			}
			if conflicting(prev.kind, kind) {
				return nil, &MergeError{
					Column:  col.Name,
					SourceA: prev.source,
					SourceB: src,
					Reason:  fmt.Sprintf("%s data cannot union with %s data", prev.kind, kind),
				}
			}
			// A definite kind claims the column over an earlier
			// missing-only sighting.
			if prev.kind == KindMissing && kind != KindMissing {
				claims[col.Name] = colClaim{kind: kind, source: src}
			}
		}
	}

	total := 0
	for _, t := range tables {
		total += t.NumRows()
	}

	out := make([]Column, len(names))
	for i, name := range names {
		out[i] = Column{Name: name, Cells: make([]Cell, 0, total)}
	}

	for _, t := range tables {
		rows := t.NumRows()
		for i, name := range names {
			if col, ok := t.Column(name); ok {
				out[i].Cells = append(out[i].Cells, col.Cells...)
			} else {
				for r := 0; r < rows; r++ {
					out[i].Cells = append(out[i].Cells, Missing())
				}
			}
		}
	}

	return New(out)
}

// conflicting reports whether two inferred column kinds cannot share a
// column. Text and Missing are compatible with anything.
func conflicting(a, b Kind) bool {
	if a == b {
		return false
	}
	if a == KindText || b == KindText || a == KindMissing || b == KindMissing {
		return false
	}
	return true
}
