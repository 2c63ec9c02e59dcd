package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "schema error",
			err:      &SchemaError{Reason: "ragged columns"},
			wantCode: "TBL001",
		},
		{
			name:     "column not found",
			err:      &ColumnNotFoundError{Column: "region"},
			wantCode: "TBL002",
		},
		{
			name:     "column exists",
			err:      &ColumnExistsError{Column: "id"},
			wantCode: "TBL003",
		},
		{
			name:     "merge conflict",
			err:      &MergeError{Column: "v", SourceA: "a.csv", SourceB: "b.csv", Reason: "kind conflict"},
			wantCode: "OP001",
		},
		{
			name:     "invalid predicate",
			err:      &InvalidPredicateError{Reason: "row count must be positive"},
			wantCode: "OP002",
		},
		{
			name:     "nothing to undo",
			err:      ErrNoUndo,
			wantCode: "OP002",
		},
		{
			name:     "unsupported strategy",
			err:      &UnsupportedStrategyError{Strategy: "mean", Column: "v", Reason: "no numeric values"},
			wantCode: "OP003",
		},
		{
			name:     "unavailable format",
			err:      &UnavailableFormatError{Format: FormatPDF},
			wantCode: "IO005",
		},
		{
			name:     "read failure",
			err:      &ReadError{Path: "in.csv", Err: errors.New("no such file")},
			wantCode: "IO001",
		},
		{
			name:     "write failure",
			err:      &WriteError{Path: "out.csv", Err: errors.New("disk full")},
			wantCode: "IO003",
		},
		{
			name:     "wrapped typed error still maps",
			err:      fmt.Errorf("loading: %w", &ColumnNotFoundError{Column: "x"}),
			wantCode: "TBL002",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() should carry a message for non-nil errors")
			}
		})
	}
}

func TestMapError_PermissionVariants(t *testing.T) {
	read := &ReadError{Path: "in.csv", Err: fmt.Errorf("open in.csv: %w", fs.ErrPermission)}
	if got := MapError(read); got.Code != "IO002" {
		t.Errorf("permission read code = %q, want IO002", got.Code)
	}

	write := &WriteError{Path: "out.csv", Err: fmt.Errorf("create out.csv: %w", fs.ErrPermission)}
	if got := MapError(write); got.Code != "IO004" {
		t.Errorf("permission write code = %q, want IO004", got.Code)
	}
}

func TestMapError_MergeWithoutColumn(t *testing.T) {
	got := MapError(&MergeError{Reason: "no input tables"})
	if got.Code != "OP001" {
		t.Errorf("code = %q, want OP001", got.Code)
	}
	if !strings.Contains(got.Message, "no input tables") {
		t.Errorf("message %q should carry the reason", got.Message)
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&ColumnNotFoundError{Column: "region"})

	expected := `Column "region" does not exist in the table. Check the column name against the table's headers (TBL002)`
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}
