// Package apperr defines the error kinds shared by every domain package.
//
// Domain packages declare their own sentinels wrapping these kinds, e.g.
//
//	var ErrNotFound = fmt.Errorf("estimate %w", apperr.ErrNotFound)
//
// so callers can match either the specific sentinel or the kind with errors.Is.
package apperr

import (
	"errors"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidState = errors.New("invalid state")
)

// ValidationError carries every violation found in a structurally invalid input.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// Invalid builds a ValidationError from one or more violations.
func Invalid(violations ...string) error {
	return &ValidationError{Violations: violations}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
