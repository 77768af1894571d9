package vset_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/vvka-141/vset/pkg/vset"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, vset.ExitSuccess},
		{"general error", errors.New("something went wrong"), vset.ExitGeneralError},
		{"invalid config", fmt.Errorf("BaseURL is required: %w", vset.ErrInvalidConfig), vset.ExitConfigError},
		{"configuration error", &vset.ConfigurationError{File: "x.csv", Message: "no accession"}, vset.ExitConfigError},
		{"schema error", &vset.SchemaError{Row: 2, Column: "label", Message: "blank"}, vset.ExitSchemaError},
		{"conflict error", &vset.ConflictError{TermAccession: "a.b", Owner: "a", Incoming: "c"}, vset.ExitConflictError},
		{"approval denied", vset.ErrApprovalDenied, vset.ExitApprovalDenied},
		{"connection failed", vset.ErrConnectionFailed, vset.ExitConnectionError},
		{"unsupported auth", vset.ErrUnsupportedAuthMethod, vset.ExitConfigError},
		{"batch failed", fmt.Errorf("2 of 3 files failed: %w", vset.ErrBatchFailed), vset.ExitBatchError},
		{"check failed", fmt.Errorf("4 dangling deprecation reference(s): %w", vset.ErrCheckFailed), vset.ExitCheckError},
		{"wrapped schema error", fmt.Errorf("failed to ingest appris.csv: %w",
			&vset.SchemaError{File: "appris.csv", Row: 5, Column: "additional", Message: "invalid JSON"}), vset.ExitSchemaError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vset.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForError_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unknown flag", errors.New("unknown flag --foo"), vset.ExitUsageError},
		{"unknown shorthand flag", errors.New("unknown shorthand flag: 'x'"), vset.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), vset.ExitUsageError},
		{"required flag", errors.New("required flag \"directory\" not set"), vset.ExitUsageError},
		{"invalid argument", errors.New("invalid argument \"abc\" for \"--timeout\""), vset.ExitUsageError},
		{"missing required argument", errors.New("missing required argument: <file>"), vset.ExitUsageError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vset.ExitCodeForError(tt.err); got != tt.want {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestExitCodeForError_ConnectionPatterns(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"failed to connect", errors.New("failed to connect to `host=localhost`")},
		{"connection refused", errors.New("dial tcp 127.0.0.1:5432: connection refused")},
		{"no such host", errors.New("dial tcp: lookup db.invalid: no such host")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vset.ExitCodeForError(tt.err); got != vset.ExitConnectionError {
				t.Errorf("ExitCodeForError(%v) = %d, want %d", tt.err, got, vset.ExitConnectionError)
			}
		})
	}
}

func TestSchemaError_Format(t *testing.T) {
	err := &vset.SchemaError{File: "appris.csv", Row: 5, Column: "additional", Message: "invalid JSON object"}

	if !errors.Is(err, vset.ErrSchema) {
		t.Error("SchemaError should unwrap to ErrSchema")
	}
	msg := err.Error()
	for _, want := range []string{"appris.csv", "row 5", `"additional"`, "invalid JSON object"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestSchemaError_WithoutFile(t *testing.T) {
	err := &vset.SchemaError{Row: 2, Column: "label", Message: "missing required column"}
	msg := err.Error()
	if !strings.Contains(msg, "row 2") || !strings.Contains(msg, `"label"`) {
		t.Errorf("Error() = %q, expected row and column", msg)
	}
}

func TestConfigurationError_Format(t *testing.T) {
	err := &vset.ConfigurationError{
		File:    ".csv",
		Message: "cannot derive a valueset accession from the filename",
		Hint:    "pass --accession or add an entry to the metadata file",
	}

	if !errors.Is(err, vset.ErrConfiguration) {
		t.Error("ConfigurationError should unwrap to ErrConfiguration")
	}
	msg := err.Error()
	if !strings.Contains(msg, "cannot derive") || !strings.Contains(msg, "hint:") {
		t.Errorf("Error() = %q, expected message and hint", msg)
	}
}

func TestConflictError_Format(t *testing.T) {
	err := &vset.ConflictError{TermAccession: "appris.principal1.1", Owner: "appris", Incoming: "tsl"}

	if !errors.Is(err, vset.ErrConflict) {
		t.Error("ConflictError should unwrap to ErrConflict")
	}
	msg := err.Error()
	for _, want := range []string{"appris.principal1.1", `"appris"`, `"tsl"`} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}
