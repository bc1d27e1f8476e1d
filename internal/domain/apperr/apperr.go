package apperr

import (
	"errors"
	"fmt"
)

// Kind sentinels. Match with errors.Is(err, apperr.ErrForbidden).
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
	ErrInternal     = errors.New("internal error")
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a typed lifecycle failure: a kind, a human message, optional
// field-level details (validation only) and an optional underlying cause.
type Error struct {
	kind   error
	Msg    string
	Fields []FieldError
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.Msg, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.Msg)
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func NotFound(format string, args ...any) *Error {
	return &Error{kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{kind: ErrForbidden, Msg: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) *Error {
	return &Error{kind: ErrInvalidState, Msg: fmt.Sprintf(format, args...)}
}

func Validation(msg string, fields ...FieldError) *Error {
	return &Error{kind: ErrValidation, Msg: msg, Fields: fields}
}

// Internal wraps a persistence or unexpected failure.
func Internal(msg string, cause error) *Error {
	return &Error{kind: ErrInternal, Msg: msg, cause: cause}
}

// KindOf returns the kind sentinel carried by err, or ErrInternal for
// anything untyped.
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrForbidden, ErrInvalidState, ErrValidation, ErrInternal} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrInternal
}

// FieldsOf returns field-level details when err is a validation *Error.
func FieldsOf(err error) []FieldError {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}

// MessageOf returns the typed message, falling back to err.Error().
func MessageOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return err.Error()
}
