package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingField indicates a required column that is absent, blank or
	// not a number. The row does not enter the collection.
	ErrMissingField = errors.New("dataset: missing required field")

	// ErrInvalidPair indicates a pair cell that is present but not a number.
	ErrInvalidPair = errors.New("dataset: invalid pair value")

	// ErrUnknownSpecimen indicates a selection by a name that was not loaded.
	ErrUnknownSpecimen = errors.New("dataset: unknown specimen")
)

// MissingFieldError wraps ErrMissingField with the offending row and column.
type MissingFieldError struct {
	Row   int
	Field string
	Value string
}

func (e *MissingFieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("row %d: %v: %s", e.Row, ErrMissingField, e.Field)
	}
	return fmt.Sprintf("row %d: %v: %s=%q", e.Row, ErrMissingField, e.Field, e.Value)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// RowError ties a specimen construction failure to its input row.
type RowError struct {
	Row  int
	Name string
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Row, e.Name, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// SelectionError reports an unknown specimen name with the valid names.
type SelectionError struct {
	Name      string
	Available []string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("%v: %q (available: %s)", ErrUnknownSpecimen, e.Name, strings.Join(e.Available, ", "))
}

func (e *SelectionError) Unwrap() error {
	return ErrUnknownSpecimen
}
