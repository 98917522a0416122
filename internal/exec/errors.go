package exec

import (
	"errors"
	"fmt"
)

// Code categorizes execution-surface errors.
type Code string

const (
	// ErrCodeArityMismatch indicates the requested attribute count does
	// not match the supplied output bindings (or a wildcard was used
	// where an exact arity is required).
	ErrCodeArityMismatch Code = "ARITY_MISMATCH"

	// ErrCodeNotScalar indicates Fetch1 matched zero or more than one
	// record.
	ErrCodeNotScalar Code = "NOT_SCALAR"
)

// SurfaceError is a structured execution-surface error.
type SurfaceError struct {
	Code    Code
	Message string
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newSurfaceError(code Code, format string, args ...any) *SurfaceError {
	return &SurfaceError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCode reports whether err is (or wraps) a SurfaceError with the
// given code.
func IsCode(err error, code Code) bool {
	var se *SurfaceError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
