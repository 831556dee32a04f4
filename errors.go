package beanbuff

import (
	"errors"
	"fmt"
)

// The engine distinguishes two failure classes. A ValidationError means the
// input data contradicts itself (an explicit expiration magnitude that
// disagrees with the inventory, a position that never closes); the run for
// the affected partition is aborted and the caller is expected to fix the
// upstream data. A StructuralError means a precondition of the engine was
// violated by the caller (rows fed out of time order within one instrument
// partition).
//
// Everything else observed while matching (crossing over, reductions that
// exceed the open lots, expirations with no prior activity) is normal,
// silently handled control flow: broker logs are frequently incomplete and a
// best-effort reconciliation beats wholesale rejection.

// ValidationError reports input data that contradicts itself.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

// Validationf creates a ValidationError with a formatted reason.
func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StructuralError reports a violated engine precondition.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string { return "structural: " + e.Reason }

// Structuralf creates a StructuralError with a formatted reason.
func Structuralf(format string, args ...any) error {
	return &StructuralError{Reason: fmt.Sprintf(format, args...)}
}

// IsStructural reports whether err is a StructuralError.
func IsStructural(err error) bool {
	var s *StructuralError
	return errors.As(err, &s)
}
