package rel

import (
	"errors"
	"fmt"
)

// ErrCodeMultiRestrictionShape is the code carried by ShapeError.
const ErrCodeMultiRestrictionShape = "MULTI_RESTRICTION_SHAPE"

// ShapeError reports a Restrict or Union argument whose shape cannot be
// interpreted as a restriction value.
type ShapeError struct {
	Message string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeMultiRestrictionShape, e.Message)
}

func newShapeError(message string) *ShapeError {
	return &ShapeError{Message: message}
}

func newShapeErrorf(format string, args ...any) *ShapeError {
	return &ShapeError{Message: fmt.Sprintf(format, args...)}
}

// IsShapeError reports whether err is (or wraps) a ShapeError.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}
