package engine

// errors.go defines the engine's error taxonomy. Structural failures (bad
// column names, incompatible merges, unavailable export formats) surface as
// typed errors. Value-level coercion failures never do: they are absorbed
// into Missing cells and reported only as counts in operation results.

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrNoUndo is returned by Store.Undo when no earlier table is available.
var ErrNoUndo = errors.New("nothing to undo")

// SchemaError reports a structurally invalid table: ragged columns,
// duplicate or empty column names, or a missing working table.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "invalid table: " + e.Reason
}

// ColumnNotFoundError reports a reference to a column the table lacks.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found", e.Column)
}

// ColumnExistsError reports an attempt to add a column under a name the
// table already uses.
type ColumnExistsError struct {
	Column string
}

func (e *ColumnExistsError) Error() string {
	return fmt.Sprintf("column %q already exists", e.Column)
}

// MergeError reports inputs that cannot be combined into one table. When
// two inputs declare the same column with incompatible data, Column names
// the column and SourceA/SourceB identify the inputs.
type MergeError struct {
	Column  string
	SourceA string
	SourceB string
	Reason  string
}

func (e *MergeError) Error() string {
	if e.Column == "" {
		return "merge failed: " + e.Reason
	}
	return fmt.Sprintf("merge failed: column %q: %s (%s vs %s)", e.Column, e.Reason, e.SourceA, e.SourceB)
}

// InvalidPredicateError reports an unusable filter or operation parameter,
// such as a non-positive row count or a non-numeric threshold.
type InvalidPredicateError struct {
	Reason string
}

func (e *InvalidPredicateError) Error() string {
	return "invalid predicate: " + e.Reason
}

// UnsupportedStrategyError reports a fill or conversion strategy that
// cannot be applied to the named column.
type UnsupportedStrategyError struct {
	Strategy string
	Column   string
	Reason   string
}

func (e *UnsupportedStrategyError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("strategy %q not supported: %s", e.Strategy, e.Reason)
	}
	return fmt.Sprintf("strategy %q not supported for column %q: %s", e.Strategy, e.Column, e.Reason)
}

// UnavailableFormatError reports an export format with no registered
// writer, such as PDF when the PDF collaborator is disabled.
type UnavailableFormatError struct {
	Format Format
}

func (e *UnavailableFormatError) Error() string {
	return fmt.Sprintf("format %q is not available", e.Format)
}

// ReadError reports a failed file read with its path and underlying cause.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// Permission reports whether the read failed due to access rights.
func (e *ReadError) Permission() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}

// WriteError reports a failed file write with its path and underlying
// cause.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Permission reports whether the write failed due to access rights.
func (e *WriteError) Permission() bool {
	return errors.Is(e.Err, fs.ErrPermission)
}
