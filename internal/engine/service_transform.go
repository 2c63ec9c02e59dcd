package engine

// Transform operations: each reads the working table, applies one pure
// operation, atomically replaces the working table with the result, and
// returns a summary of what changed. A failed operation leaves the
// working table untouched.

import (
	"context"
	"time"
)

// OpSummary reports one transformation of the working table.
type OpSummary struct {
	Op        string `json:"op"`
	Column    string `json:"column,omitempty"`
	RowsIn    int    `json:"rowsIn"`
	RowsOut   int    `json:"rowsOut"`
	Affected  int    `json:"affected,omitempty"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// apply runs one pure transform against the working table and swaps in
// the result. affected is whatever count the operation reported.
func (s *Service) apply(ctx context.Context, op, column string, fn func(cur *Table) (*Table, int, error)) (*OpSummary, error) {
	_, log := s.begin(ctx, op)
	cur, err := s.working()
	if err != nil {
		return nil, err
	}
	start := time.Now()

	out, affected, err := fn(cur)
	if err != nil {
		log.Error("operation failed", "column", column, "error", err)
		return nil, err
	}
	if err := s.store.Replace(out); err != nil {
		return nil, err
	}

	sum := &OpSummary{
		Op:        op,
		Column:    column,
		RowsIn:    cur.NumRows(),
		RowsOut:   out.NumRows(),
		Affected:  affected,
		ElapsedMs: time.Since(start).Milliseconds(),
	}
	log.Info("applied", "column", column, "rows_in", sum.RowsIn, "rows_out", sum.RowsOut, "affected", affected)
	return sum, nil
}

// FillMissing fills a column's absent values with the given strategy.
func (s *Service) FillMissing(ctx context.Context, column string, strat FillStrategy) (*OpSummary, error) {
	return s.apply(ctx, "fill-missing", column, func(cur *Table) (*Table, int, error) {
		return FillMissing(s.co, cur, column, strat)
	})
}

// ConvertColumn coerces a column to the target kind; the summary's
// Affected counts the cells left Missing afterward.
func (s *Service) ConvertColumn(ctx context.Context, column string, target Kind) (*OpSummary, error) {
	return s.apply(ctx, "convert", column, func(cur *Table) (*Table, int, error) {
		return ConvertColumn(s.co, cur, column, target)
	})
}

// SplitColumn splits a column on a delimiter into new columns.
func (s *Service) SplitColumn(ctx context.Context, column, delimiter string, names []string) (*OpSummary, error) {
	return s.apply(ctx, "split-column", column, func(cur *Table) (*Table, int, error) {
		out, err := SplitColumn(cur, column, delimiter, names)
		if err != nil {
			return nil, 0, err
		}
		return out, out.NumCols() - cur.NumCols(), nil
	})
}

// AutoNumber appends a sequential numbering column.
func (s *Service) AutoNumber(ctx context.Context, name string, start int) (*OpSummary, error) {
	return s.apply(ctx, "auto-number", name, func(cur *Table) (*Table, int, error) {
		out, err := AutoNumber(cur, name, start)
		if err != nil {
			return nil, 0, err
		}
		return out, out.NumRows(), nil
	})
}

// TrimSpaces trims whitespace from every text cell of the working table.
func (s *Service) TrimSpaces(ctx context.Context) (*OpSummary, error) {
	return s.apply(ctx, "trim-spaces", "", func(cur *Table) (*Table, int, error) {
		out, changed := TrimSpaces(cur)
		return out, changed, nil
	})
}

// Dedupe drops rows repeating an earlier value in the key column,
// keeping first occurrences.
func (s *Service) Dedupe(ctx context.Context, column string) (*OpSummary, error) {
	return s.apply(ctx, "dedupe", column, func(cur *Table) (*Table, int, error) {
		return Dedupe(cur, column)
	})
}

// FilterDateRange keeps rows whose column falls inside the date range.
func (s *Service) FilterDateRange(ctx context.Context, column string, start, end time.Time, inclusive bool) (*OpSummary, error) {
	return s.apply(ctx, "date-range", column, func(cur *Table) (*Table, int, error) {
		out, err := FilterDateRange(s.co, cur, column, start, end, inclusive)
		if err != nil {
			return nil, 0, err
		}
		return out, cur.NumRows() - out.NumRows(), nil
	})
}

// Search keeps rows matching any keyword in any selected column.
func (s *Service) Search(ctx context.Context, keywords, columns []string) (*OpSummary, error) {
	return s.apply(ctx, "search", "", func(cur *Table) (*Table, int, error) {
		out, err := Search(cur, keywords, columns)
		if err != nil {
			return nil, 0, err
		}
		return out, out.NumRows(), nil
	})
}

// Report keeps the rows selected by a conditional-formatting predicate.
func (s *Service) Report(ctx context.Context, column string, p Predicate) (*OpSummary, error) {
	return s.apply(ctx, "report", column, func(cur *Table) (*Table, int, error) {
		out, err := ApplyPredicate(s.co, cur, column, p)
		if err != nil {
			return nil, 0, err
		}
		return out, out.NumRows(), nil
	})
}

// Lookup keeps rows whose column matches the sought value.
func (s *Service) Lookup(ctx context.Context, column, value string, exact bool) (*OpSummary, error) {
	return s.apply(ctx, "lookup", column, func(cur *Table) (*Table, int, error) {
		out, err := Lookup(cur, column, value, exact)
		if err != nil {
			return nil, 0, err
		}
		return out, out.NumRows(), nil
	})
}
