package engine

// messages.go maps the engine's typed errors to user-facing messages
// with actionable guidance. The CLI prints these instead of raw error
// chains; users can quote the code when reporting a problem.
//
// Codes are grouped by category:
//
//	TBL001 - Invalid table structure
//	TBL002 - Column not found
//	TBL003 - Column already exists
//
//	OP001  - Merge conflict
//	OP002  - Invalid filter or parameter
//	OP003  - Unsupported fill/convert strategy
//
//	IO001  - Read failure
//	IO002  - Read permission denied
//	IO003  - Write failure
//	IO004  - Write permission denied
//	IO005  - Export format unavailable
//
//	ERR000 - Anything unrecognized; the technical cause is appended.

import (
	"errors"
	"fmt"
)

// UserMessage provides user-friendly error information with actionable
// guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// MapError translates an engine error into a UserMessage. Unrecognized
// errors fall through to ERR000 with the technical message preserved.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if errors.Is(err, ErrNoUndo) {
		return UserMessage{
			Message: "There is nothing to undo",
			Action:  "Run a transformation first",
			Code:    "OP002",
		}
	}

	var (
		schemaErr *SchemaError
		notFound  *ColumnNotFoundError
		exists    *ColumnExistsError
		mergeErr  *MergeError
		predErr   *InvalidPredicateError
		stratErr  *UnsupportedStrategyError
		formatErr *UnavailableFormatError
		readErr   *ReadError
		writeErr  *WriteError
	)

	switch {
	case errors.As(err, &schemaErr):
		return UserMessage{
			Message: "The table is not structurally valid: " + schemaErr.Reason,
			Action:  "Load a rectangular table with unique column names first",
			Code:    "TBL001",
		}
	case errors.As(err, &notFound):
		return UserMessage{
			Message: fmt.Sprintf("Column %q does not exist in the table", notFound.Column),
			Action:  "Check the column name against the table's headers",
			Code:    "TBL002",
		}
	case errors.As(err, &exists):
		return UserMessage{
			Message: fmt.Sprintf("Column %q already exists", exists.Column),
			Action:  "Pick a column name that is not already in use",
			Code:    "TBL003",
		}
	case errors.As(err, &mergeErr):
		msg := "The files could not be merged: " + mergeErr.Reason
		if mergeErr.Column != "" {
			msg = fmt.Sprintf("Column %q holds incompatible data in %s and %s",
				mergeErr.Column, mergeErr.SourceA, mergeErr.SourceB)
		}
		return UserMessage{
			Message: msg,
			Action:  "Align the conflicting column's values or remove one of the files",
			Code:    "OP001",
		}
	case errors.As(err, &predErr):
		return UserMessage{
			Message: "The filter parameters are not usable: " + predErr.Reason,
			Action:  "Correct the parameter and run the operation again",
			Code:    "OP002",
		}
	case errors.As(err, &stratErr):
		return UserMessage{
			Message: stratErr.Error(),
			Action:  "Choose a literal fill value, or convert the column to numbers first",
			Code:    "OP003",
		}
	case errors.As(err, &formatErr):
		return UserMessage{
			Message: fmt.Sprintf("Export format %q is not available", formatErr.Format),
			Action:  "Enable the format in the configuration or pick another format",
			Code:    "IO005",
		}
	case errors.As(err, &readErr):
		if readErr.Permission() {
			return UserMessage{
				Message: "Permission denied reading " + readErr.Path,
				Action:  "Check the file's access rights",
				Code:    "IO002",
			}
		}
		return UserMessage{
			Message: "Could not read " + readErr.Path,
			Action:  "Verify the file exists and is a supported spreadsheet format",
			Code:    "IO001",
		}
	case errors.As(err, &writeErr):
		if writeErr.Permission() {
			return UserMessage{
				Message: "Permission denied writing " + writeErr.Path,
				Action:  "Check the destination directory's access rights",
				Code:    "IO004",
			}
		}
		return UserMessage{
			Message: "Could not write " + writeErr.Path,
			Action:  "Verify the destination directory exists and has free space",
			Code:    "IO003",
		}
	}

	return UserMessage{
		Message: "The operation failed: " + err.Error(),
		Action:  "Check the log output for details",
		Code:    "ERR000",
	}
}

// FormatUserError renders a UserMessage for terminal output:
// "message. action (code)".
func FormatUserError(err error) string {
	m := MapError(err)
	return fmt.Sprintf("%s. %s (%s)", m.Message, m.Action, m.Code)
}
