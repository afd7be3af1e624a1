package core

import "github.com/pkg/errors"

// FieldError reports a violation tied to a specific field; for dataset
// errors the field is the offending roll number or column name.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is the error for rejected input data. Fields carries the
// individual violations so callers can report them all at once.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// FieldMap flattens the field errors to field -> message.
// Nil when the error carries no field detail.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	m := make(map[string]string, len(err.Fields))
	for _, fld := range err.Fields {
		m[fld.Field] = fld.Error
	}
	return m
}

type shutdown struct {
	message string
}

// NewShutdownError returns an error signalling that the application cannot
// continue and should be shut down gracefully.
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
