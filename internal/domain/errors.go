package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service layer wraps exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage unavailable")
)

// Error carries the field or record that caused a client-fixable failure.
// Cause, when set, is a more specific sentinel such as a storage-level
// "team not found".
type Error struct {
	Kind   error
	Field  string
	Reason string
	Cause  error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Reason)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// Because sets Cause and returns e.
func (e *Error) Because(cause error) *Error {
	e.Cause = cause
	return e
}

func Validation(field, format string, args ...any) *Error {
	return &Error{Kind: ErrValidation, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func Conflict(field, format string, args ...any) *Error {
	return &Error{Kind: ErrConflict, Field: field, Reason: fmt.Sprintf(format, args...)}
}

func NotFound(field, format string, args ...any) *Error {
	return &Error{Kind: ErrNotFound, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Storage marks err as a persistence failure while keeping the original chain.
func Storage(err error) error {
	if err == nil || errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
