package fault

import (
	"errors"
	"fmt"
)

// ValidationError is a client-detected precondition failure. The store is
// never called when one of these is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// ConflictError is a store-detected state conflict: capacity exceeded,
// session already canceled, duplicate attendance. Callers should refresh
// the relevant list so the view reflects the true current state.
type ConflictError struct {
	Msg string
}

func (e *ConflictError) Error() string {
	return e.Msg
}

// TransportError wraps a network or unexpected store fault. It is surfaced
// as a generic retry-capable message; nothing retries automatically.
type TransportError struct {
	Msg string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Validation builds a field-scoped validation error.
func Validation(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// Conflict builds a conflict error.
func Conflict(msg string) error {
	return &ConflictError{Msg: msg}
}

// Transport wraps err as a transport-level failure.
func Transport(msg string, err error) error {
	return &TransportError{Msg: msg, Err: err}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reports whether err is (or wraps) a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
