// Package engine provides the business logic for tabular transformations.
//
// This package is the heart of the tool, containing all domain logic
// independent of any file format or command-line layer. It can be used by
// CLI commands, services, or tests without modification.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Table: An immutable column-ordered grid of typed cells. Every
//     transformation returns a new table and leaves its input untouched.
//   - Cell: A single typed value (number, date, boolean, text) or the
//     distinguished missing value.
//   - Coercer: Best-effort conversion between cell kinds. Coercion never
//     fails; values that cannot be converted become missing.
//   - Store: The working table plus a bounded undo history. Commands act
//     on the store's current table and replace it atomically.
//   - Service: The main entry point for all operations (load, merge,
//     transform, export, compare).
//
// # Loading and Merging
//
// Tables enter the engine through the [Reader] and [Lister] collaborators,
// implemented by the sheet package. Merging a folder reads every supported
// file concurrently and combines them column-wise:
//
//	svc := engine.NewService(engine.Deps{Reader: codec, Lister: scanner})
//	sum, err := svc.MergeFolder(ctx, "./input")
//
// Columns are matched by name across files; a column missing from one file
// is filled with missing cells for that file's rows. Files that disagree on
// a column's inferred kind abort the merge with a [MergeError] naming the
// column and both sources.
//
// # Transformations
//
// Each transformation validates its arguments, derives a new table from
// the current one, and replaces the store's working table. The previous
// table moves onto the undo stack, so [Service.Undo] restores it exactly.
//
// # Exporting
//
// Format writers are registered on an [Exporter] at startup. Requesting a
// format with no registered writer yields an [UnavailableFormatError];
// other formats in the same request still run. Each write is atomic: a
// failed write leaves no partial file behind.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using [MapError].
// Each error category has a short code for support reference:
//
//   - TBL001-TBL003: Table errors (schema, unknown column, name collisions)
//   - OP001-OP003: Operation errors (merge conflicts, bad predicates, strategies)
//   - IO001-IO005: File errors (read, write, permissions, formats)
package engine
