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

// SilentError is a client-facing error carrying its own HTTP status code.
// The API error handler translates it as-is and skips diagnostic logging,
// so it can be raised for clean expected failures without log noise.
type SilentError struct {
	Code int
	Msg  string
}

func NewSilentError(code int, msg string) error {
	return &SilentError{Code: code, Msg: msg}
}

func (err SilentError) Error() string {
	return err.Msg
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
