package query

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by this package wraps exactly one of
// these sentinels, so callers can classify failures with errors.Is.
var (
	// ErrValidation marks caller input rejected before any engine work:
	// malformed offsets, out-of-bounds or inverted subarrays, nil buffers.
	// The query status is never changed by a validation failure.
	ErrValidation = errors.New("invalid query input")

	// ErrUsage marks calls that violate the query lifecycle, such as
	// processing an uninitialized or terminal query. The status is unchanged.
	ErrUsage = errors.New("invalid query usage")

	// ErrEngine marks failures surfaced by the Reader or Writer. A process
	// failure of this category forces the query status to Failed.
	ErrEngine = errors.New("engine failure")

	// ErrInternal marks invariant violations that indicate engine
	// misconfiguration rather than caller error, such as an unsupported
	// domain datatype reaching the subarray validator.
	ErrInternal = errors.New("internal invariant violation")
)

// BoundsError reports a subarray range rejected by the bounds validator.
type BoundsError struct {
	// Dim is the name of the offending dimension.
	Dim string

	// Lo and Hi are the offending subarray range values.
	Lo, Hi any

	// Inverted is true when the lower bound exceeds the upper bound, and
	// false when the range falls outside the domain.
	Inverted bool
}

func (e *BoundsError) Error() string {
	if e.Inverted {
		return fmt.Sprintf("subarray lower bound exceeds upper bound on dimension %q: [%v, %v]", e.Dim, e.Lo, e.Hi)
	}
	return fmt.Sprintf("subarray out of bounds on dimension %q: [%v, %v]", e.Dim, e.Lo, e.Hi)
}

func (e *BoundsError) Unwrap() error { return ErrValidation }

// OffsetRangeError reports a variable-length offset that points at or beyond
// the end of the value buffer.
type OffsetRangeError struct {
	Offset     uint64
	BufferSize uint64
}

func (e *OffsetRangeError) Error() string {
	return fmt.Sprintf("invalid offsets: offset %d specified for buffer of size %d", e.Offset, e.BufferSize)
}

func (e *OffsetRangeError) Unwrap() error { return ErrValidation }

// OffsetOrderError reports a variable-length offset buffer whose offsets are
// not strictly ascending.
type OffsetOrderError struct {
	// Index is the position of the offending offset.
	Index int

	// Offset and Prev are the offending offset and its predecessor.
	Offset, Prev uint64
}

func (e *OffsetOrderError) Error() string {
	return fmt.Sprintf("invalid offsets: offsets must be given in strictly ascending order (offset[%d]=%d after %d)",
		e.Index, e.Offset, e.Prev)
}

func (e *OffsetOrderError) Unwrap() error { return ErrValidation }

// engineErr wraps an engine failure so errors.Is matches both ErrEngine and
// the underlying error.
func engineErr(err error) error {
	return fmt.Errorf("%w: %w", ErrEngine, err)
}
