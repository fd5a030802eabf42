// internal/matching/errors.go
package matching

import (
	"errors"
	"fmt"
)

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrInvalidConfig     = errors.New("invalid scoring config")
)

// InvalidInputError is the only error the scoring core produces. Callers
// should never pass vectors of different lengths.
type InvalidInputError struct {
	Field  string
	Reason error
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input %s: %v", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return e.Reason
}

// IsInvalidInput reports whether err came from rejected scoring input.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

func dimensionMismatch(a, b int) error {
	return &InvalidInputError{
		Field:  "embedding",
		Reason: fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, a, b),
	}
}
