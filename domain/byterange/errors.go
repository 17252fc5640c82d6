package byterange

import (
	"errors"
	"fmt"
)

// Sentinel errors for range parsing.
var (
	// ErrMalformedRange indicates a range-spec that matches no known grammar.
	ErrMalformedRange = errors.New("range not valid")

	// ErrInvalidRange indicates a parseable range that breaks an invariant.
	ErrInvalidRange = errors.New("range invariant violated")
)

// MalformedRangeError is returned when a range-spec or the length suffix of
// a Range header cannot be parsed.
type MalformedRangeError struct {
	Spec  string
	cause error
}

// Error implements the error interface.
func (e *MalformedRangeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %q: %v", ErrMalformedRange, e.Spec, e.cause)
	}
	return fmt.Sprintf("%s: %q", ErrMalformedRange, e.Spec)
}

// Is reports whether target is ErrMalformedRange.
func (e *MalformedRangeError) Is(target error) bool {
	return target == ErrMalformedRange
}

// Unwrap returns the underlying cause, if any.
func (e *MalformedRangeError) Unwrap() error {
	return e.cause
}

// ValidationError is returned when a parsed range violates an invariant.
// Its message combines the rendered range with the violation message.
type ValidationError struct {
	Range     ByteRange
	Violation Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Range.String() + ": " + e.Violation.Message()
}

// Is reports whether target is ErrInvalidRange.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRange
}
