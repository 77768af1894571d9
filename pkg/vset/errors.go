package vset

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	report, err := ingestor.Ingest(ctx, config)
//	if errors.Is(err, vset.ErrConflict) {
//	    // Handle cross-ValueSet accession collision
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfiguration indicates ValueSet identity could not be resolved
	// from overrides, the metadata file, or the source filename.
	ErrConfiguration = errors.New("valueset metadata unresolved")

	// ErrSchema indicates a CSV row failed required-field or type validation.
	ErrSchema = errors.New("schema validation failed")

	// ErrConflict indicates a term accession is already owned by a
	// different ValueSet.
	ErrConflict = errors.New("term accession conflict")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrApprovalDenied indicates the user denied approval for the operation.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrBatchFailed indicates at least one file of a multi-file run failed.
	ErrBatchFailed = errors.New("batch completed with failures")

	// ErrCheckFailed indicates the consistency check found dangling references.
	ErrCheckFailed = errors.New("consistency check failed")
)

// ConfigurationError reports an unresolvable ValueSet identity.
// It unwraps to ErrConfiguration.
type ConfigurationError struct {
	// File is the source file whose metadata could not be resolved.
	File string

	// Message describes what could not be determined.
	Message string

	// Hint suggests how to fix the problem. Optional.
	Hint string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	if e.File != "" {
		fmt.Fprintf(&b, "%s: ", e.File)
	}
	b.WriteString(e.Message)
	if e.Hint != "" {
		fmt.Fprintf(&b, " (hint: %s)", e.Hint)
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// SchemaError reports a row that failed validation. Row and Column are
// always populated; Row is 1-based with the header as row 1, so the first
// data row is row 2. Header-level failures use Row 1.
// It unwraps to ErrSchema.
type SchemaError struct {
	File    string
	Row     int
	Column  string
	Message string
}

func (e *SchemaError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: row %d, column %q: %s", e.File, e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// ConflictError reports a term accession already owned by another ValueSet.
// It unwraps to ErrConflict.
type ConflictError struct {
	// TermAccession is the colliding term accession.
	TermAccession string

	// Owner is the ValueSet accession currently owning the term.
	Owner string

	// Incoming is the ValueSet accession being ingested.
	Incoming string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("term %q already belongs to valueset %q, cannot ingest under %q",
		e.TermAccession, e.Owner, e.Incoming)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Check for sentinel errors
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrConfiguration):
		return ExitConfigError
	case errors.Is(err, ErrSchema):
		return ExitSchemaError
	case errors.Is(err, ErrConflict):
		return ExitConflictError
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrBatchFailed):
		return ExitBatchError
	case errors.Is(err, ErrCheckFailed):
		return ExitCheckError
	}

	// Check for common connection error patterns
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	// Check for cobra argument/flag error patterns
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "missing required argument") ||
		strings.Contains(errStr, "invalid argument ") ||
		strings.Contains(errStr, "arg(s), received") {
		return ExitUsageError
	}

	return ExitGeneralError
}
