package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func IsValidationError(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// InvalidOperationError indicates a structurally disallowed action, e.g.
// submitting homework for a lesson that requires none. It signals a
// programming/UX error upstream rather than bad user input.
type InvalidOperationError struct {
	message string
}

func NewInvalidOperationError(msg string) error {
	return &InvalidOperationError{message: msg}
}

func (err InvalidOperationError) Error() string {
	return err.message
}

func IsInvalidOperation(err error) bool {
	_, ok := errors.Cause(err).(*InvalidOperationError)
	return ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
