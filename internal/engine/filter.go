package engine

// filter.go holds the three predicate families: date-range filtering,
// multi-keyword search, and the conditional-formatting predicates
// (top-N, bottom-N, duplicates, threshold comparisons), plus value
// lookup. Filters are read-only: each returns a new table of the
// selected rows and never composes with another filter implicitly.

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FilterDateRange keeps rows whose column value coerces to a DateTime
// inside [start, end]. Rows that coerce to Missing are excluded. Bounds
// are inclusive unless inclusive is false (then both ends are strict). A
// zero start or end leaves that side unbounded.
func FilterDateRange(co *Coercer, t *Table, column string, start, end time.Time, inclusive bool) (*Table, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, &InvalidPredicateError{
			Reason: fmt.Sprintf("date range ends (%s) before it starts (%s)", end.Format("2006-01-02"), start.Format("2006-01-02")),
		}
	}

	var idx []int
	for i, cell := range t.cols[ci].Cells {
		v := co.Coerce(cell, KindDateTime)
		ts, ok := v.Time()
		if !ok {
			continue
		}
		if !start.IsZero() {
			if inclusive && ts.Before(start) {
				continue
			}
			if !inclusive && !ts.After(start) {
				continue
			}
		}
		if !end.IsZero() {
			if inclusive && ts.After(end) {
				continue
			}
			if !inclusive && !ts.Before(end) {
				continue
			}
		}
		idx = append(idx, i)
	}
	return t.selectRows(idx), nil
}

// Search keeps rows where any selected column's canonical text contains
// any keyword, case-insensitively. Blank keywords are ignored; with no
// usable keywords no rows match. An empty column list searches every
// column.
func Search(t *Table, keywords []string, columns []string) (*Table, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}

	cis := make([]int, 0, len(columns))
	if len(columns) == 0 {
		for i := range t.cols {
			cis = append(cis, i)
		}
	} else {
		for _, name := range columns {
			ci, err := t.columnIndex(name)
			if err != nil {
				return nil, err
			}
			cis = append(cis, ci)
		}
	}

	kws := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			kws = append(kws, kw)
		}
	}
	if len(kws) == 0 {
		return t.selectRows(nil), nil
	}

	var idx []int
rows:
	for i := 0; i < t.NumRows(); i++ {
		for _, ci := range cis {
			text := strings.ToLower(t.cols[ci].Cells[i].String())
			if text == "" {
				continue
			}
			for _, kw := range kws {
				if strings.Contains(text, kw) {
					idx = append(idx, i)
					continue rows
				}
			}
		}
	}
	return t.selectRows(idx), nil
}

// Lookup keeps rows whose column value matches a sought value. Exact
// matching compares whitespace-trimmed canonical text; partial matching
// is a case-insensitive substring test.
func Lookup(t *Table, column, value string, exact bool) (*Table, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}

	var idx []int
	if exact {
		want := strings.TrimSpace(value)
		for i, cell := range t.cols[ci].Cells {
			if strings.TrimSpace(cell.String()) == want {
				idx = append(idx, i)
			}
		}
	} else {
		want := strings.ToLower(strings.TrimSpace(value))
		if want == "" {
			return t.selectRows(nil), nil
		}
		for i, cell := range t.cols[ci].Cells {
			if strings.Contains(strings.ToLower(cell.String()), want) {
				idx = append(idx, i)
			}
		}
	}
	return t.selectRows(idx), nil
}

// PredicateOp names a conditional-formatting predicate.
type PredicateOp string

const (
	PredTopN        PredicateOp = "topn"
	PredBottomN     PredicateOp = "bottomn"
	PredDuplicates  PredicateOp = "duplicates"
	PredGreaterThan PredicateOp = "gt"
	PredLessThan    PredicateOp = "lt"
)

// ParsePredicateOp maps a user-supplied predicate name to a PredicateOp.
func ParsePredicateOp(s string) (PredicateOp, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "topn", "top":
		return PredTopN, true
	case "bottomn", "bottom":
		return PredBottomN, true
	case "duplicates", "dups":
		return PredDuplicates, true
	case "gt", "greater", ">":
		return PredGreaterThan, true
	case "lt", "less", "<":
		return PredLessThan, true
	}
	return "", false
}

// Predicate is one conditional-formatting rule: the operation, the row
// count for top/bottom selection, and the raw threshold text for the
// comparison operations.
type Predicate struct {
	Op        PredicateOp
	N         int
	Threshold string
}

// ApplyPredicate evaluates a predicate against one column and returns the
// matching rows.
func ApplyPredicate(co *Coercer, t *Table, column string, p Predicate) (*Table, error) {
	switch p.Op {
	case PredTopN:
		return TopN(co, t, column, p.N)
	case PredBottomN:
		return BottomN(co, t, column, p.N)
	case PredDuplicates:
		return Duplicates(t, column)
	case PredGreaterThan, PredLessThan:
		threshold, ok := co.ParseNumber(p.Threshold)
		if !ok {
			return nil, &InvalidPredicateError{Reason: fmt.Sprintf("threshold %q is not numeric", p.Threshold)}
		}
		if p.Op == PredGreaterThan {
			return GreaterThan(co, t, column, threshold)
		}
		return LessThan(co, t, column, threshold)
	}
	return nil, &InvalidPredicateError{Reason: fmt.Sprintf("unknown predicate %q", string(p.Op))}
}

// TopN keeps the n rows with the highest values in the column. Ranking is
// numeric, or by timestamp when the column infers as DateTime. Rows whose
// value does not coerce are never candidates. Selection truncates
// strictly: exactly min(n, candidates) rows come back in rank order, with
// ties broken by earlier original position.
func TopN(co *Coercer, t *Table, column string, n int) (*Table, error) {
	return rankSelect(co, t, column, n, true)
}

// BottomN keeps the n rows with the lowest values in the column, under
// the same rules as TopN.
func BottomN(co *Coercer, t *Table, column string, n int) (*Table, error) {
	return rankSelect(co, t, column, n, false)
}

func rankSelect(co *Coercer, t *Table, column string, n int, descending bool) (*Table, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}
	if n <= 0 {
		return nil, &InvalidPredicateError{Reason: fmt.Sprintf("row count must be positive, got %d", n)}
	}
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}

	cells := t.cols[ci].Cells
	target := KindNumber
	if co.InferColumnKind(cells) == KindDateTime {
		target = KindDateTime
	}

	type ranked struct {
		row int
		num decimal.Decimal
		ts  time.Time
	}
	candidates := make([]ranked, 0, len(cells))
	for i, cell := range cells {
		v := co.Coerce(cell, target)
		switch target {
		case KindNumber:
			if d, ok := v.Number(); ok {
				candidates = append(candidates, ranked{row: i, num: d})
			}
		case KindDateTime:
			if ts, ok := v.Time(); ok {
				candidates = append(candidates, ranked{row: i, ts: ts})
			}
		}
	}

	less := func(a, b ranked) bool {
		if target == KindDateTime {
			return a.ts.Before(b.ts)
		}
		return a.num.Cmp(b.num) < 0
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if descending {
			return less(candidates[j], candidates[i])
		}
		return less(candidates[i], candidates[j])
	})

	if n > len(candidates) {
		n = len(candidates)
	}
	idx := make([]int, n)
	for i := 0; i < n; i++ {
		idx[i] = candidates[i].row
	}
	return t.selectRows(idx), nil
}

// Duplicates keeps every row whose raw column value occurs more than
// once, in original row order. All occurrences come back, not just the
// extras.
func Duplicates(t *Table, column string) (*Table, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, cell := range t.cols[ci].Cells {
		counts[cell.key()]++
	}
	var idx []int
	for i, cell := range t.cols[ci].Cells {
		if counts[cell.key()] > 1 {
			idx = append(idx, i)
		}
	}
	return t.selectRows(idx), nil
}

// GreaterThan keeps rows whose column value coerces to a Number strictly
// above the threshold. Rows that fail coercion are excluded, never
// matched.
func GreaterThan(co *Coercer, t *Table, column string, threshold decimal.Decimal) (*Table, error) {
	return compareSelect(co, t, column, threshold, 1)
}

// LessThan keeps rows whose column value coerces to a Number strictly
// below the threshold.
func LessThan(co *Coercer, t *Table, column string, threshold decimal.Decimal) (*Table, error) {
	return compareSelect(co, t, column, threshold, -1)
}

func compareSelect(co *Coercer, t *Table, column string, threshold decimal.Decimal, want int) (*Table, error) {
	if t == nil {
		return nil, &SchemaError{Reason: "table is nil"}
	}
	ci, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	var idx []int
	for i, cell := range t.cols[ci].Cells {
		d, ok := co.Coerce(cell, KindNumber).Number()
		if !ok {
			continue
		}
		if d.Cmp(threshold) == want {
			idx = append(idx, i)
		}
	}
	return t.selectRows(idx), nil
}
