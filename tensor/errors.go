package tensor

import (
	"errors"
	"fmt"
)

// ErrValidation is the root of the validation error taxonomy. Every
// construction failure in this package (and in packages building on it)
// wraps ErrValidation, so callers can match the whole class with a
// single errors.Is check.
//
// Validation failures indicate a programming bug, not a transient
// condition: they are never retried and abort the surrounding operation.
var ErrValidation = errors.New("tensor: validation failed")

// Specific validation failures. Each wraps ErrValidation.
var (
	// ErrWrongDevice is returned when a buffer does not reside on the
	// expected device.
	ErrWrongDevice = fmt.Errorf("%w: buffer not on expected device", ErrValidation)

	// ErrNotContiguous is returned when a buffer is not contiguous in
	// row-major order.
	ErrNotContiguous = fmt.Errorf("%w: buffer not contiguous", ErrValidation)

	// ErrDTypeMismatch is returned when a buffer's element type does not
	// match the view's type parameter.
	ErrDTypeMismatch = fmt.Errorf("%w: element type mismatch", ErrValidation)

	// ErrRankMismatch is returned when a buffer's dimension count does
	// not match the view's declared rank.
	ErrRankMismatch = fmt.Errorf("%w: rank mismatch", ErrValidation)

	// ErrBadShape is returned when a requested shape has a negative
	// extent or does not match the backing data length.
	ErrBadShape = fmt.Errorf("%w: bad shape", ErrValidation)
)
