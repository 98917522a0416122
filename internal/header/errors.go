package header

import (
	"errors"
	"fmt"
)

// Code categorizes header-algebra errors.
type Code string

const (
	// ErrCodeDuplicateAttribute indicates two resulting attributes share
	// a name after projection.
	ErrCodeDuplicateAttribute Code = "DUPLICATE_ATTRIBUTE"

	// ErrCodeUnknownAttribute indicates a plain or rename spec referenced
	// a name absent from the source header.
	ErrCodeUnknownAttribute Code = "UNKNOWN_ATTRIBUTE"

	// ErrCodeTypeMismatch indicates a natural-join match column has
	// incompatible types on the two sides.
	ErrCodeTypeMismatch Code = "TYPE_MISMATCH"

	// ErrCodeBlobJoinKey indicates a blob attribute would be used for
	// join matching.
	ErrCodeBlobJoinKey Code = "BLOB_JOIN_KEY"
)

// Error is a structured header-algebra error. It names the offending
// attribute so callers can report which column broke the transform.
type Error struct {
	Code    Code
	Attr    string
	Message string
}

func (e *Error) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Attr, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code Code, attr, message string) *Error {
	return &Error{Code: code, Attr: attr, Message: message}
}

// IsCode reports whether err is (or wraps) a header Error with the given
// code.
func IsCode(err error, code Code) bool {
	var he *Error
	if errors.As(err, &he) {
		return he.Code == code
	}
	return false
}
