package sqlgen

import (
	"errors"
	"fmt"
)

// Code categorizes compilation errors.
type Code string

const (
	// ErrCodeInvalidStandaloneOperator indicates a Union or Negation node
	// was compiled directly instead of being used as a restriction value.
	ErrCodeInvalidStandaloneOperator Code = "INVALID_STANDALONE_OPERATOR"

	// ErrCodeBlobJoinKey indicates an aggregate's source and detail
	// share a blob-named attribute, which would become a match column.
	ErrCodeBlobJoinKey Code = "BLOB_JOIN_KEY"

	// ErrCodeAggregateRequiresComputation indicates an aggregate spec
	// list produced no pending alias, so nothing is being computed per
	// group.
	ErrCodeAggregateRequiresComputation Code = "AGGREGATE_REQUIRES_COMPUTATION"

	// ErrCodeBlobInRestriction indicates a tuple-set restriction named a
	// blob attribute.
	ErrCodeBlobInRestriction Code = "BLOB_IN_RESTRICTION"

	// ErrCodeNonScalarLiteral indicates a tuple-set value is not a
	// scalar the literal encoder can format.
	ErrCodeNonScalarLiteral Code = "NON_SCALAR_LITERAL"
)

// CompileError is a structured compilation error.
type CompileError struct {
	Code    Code
	Detail  string // offending attribute, value or operator when known
	Message string
}

func (e *CompileError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Detail, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newCompileError(code Code, detail, message string) *CompileError {
	return &CompileError{Code: code, Detail: detail, Message: message}
}

// IsCode reports whether err is (or wraps) a CompileError with the given
// code.
func IsCode(err error, code Code) bool {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}
