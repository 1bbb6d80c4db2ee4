package table

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedFormat is matched by UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrValidation is matched by ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrComputation is matched by ComputationError.
	ErrComputation = errors.New("computation failed")
)

// NotFoundError indicates the input source does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input not found: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("input not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() []error { return []error{ErrNotFound, e.Err} }

// UnsupportedFormatError indicates a file type no loader accepts.
type UnsupportedFormatError struct {
	Path   string
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q for %s (use .csv, .tsv, .txt or .xlsx)", e.Format, e.Path)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// ValidationError is terminal: the table cannot be analyzed at all.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid table: %s", e.Reason) }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ComputationError is scoped to a single column and never aborts a report.
type ComputationError struct {
	Column string
	Reason string
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("column %q: %s", e.Column, e.Reason)
}

func (e *ComputationError) Unwrap() error { return ErrComputation }
