package grader

import (
	"errors"
	"fmt"
)

// ErrNilDocument is returned when Grade is called without a document.
var ErrNilDocument = errors.New("no document to grade")

// SelectorError reports a selector the selector engine could not compile.
type SelectorError struct {
	Selector string
	Err      error
}

// Error implements the error interface.
func (e *SelectorError) Error() string {
	return fmt.Sprintf("invalid selector %q: %v", e.Selector, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *SelectorError) Unwrap() error {
	return e.Err
}
