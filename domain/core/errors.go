package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Precondition violations (propagate to the caller, fail the batch)
	ErrNonFiniteInput = errors.New("non-finite value in input")

	// Configuration errors (fatal at startup, never reached per-comparison)
	ErrInvalidAlpha = errors.New("alpha must be in (0, 1)")

	// Loader errors
	ErrUnknownMetric   = errors.New("unknown metric column")
	ErrVariantMismatch = errors.New("variant label not found in data")
	ErrEmptyRunTable   = errors.New("run table contains no usable rows")

	// Repository errors
	ErrNotFound         = errors.New("resource not found")
	ErrAnalysisNotFound = fmt.Errorf("%w: analysis", ErrNotFound)
)

// NewNonFiniteError reports the offending position for a precondition violation.
func NewNonFiniteError(sequence string, index int, value float64) error {
	return fmt.Errorf("%w: %s[%d] = %v", ErrNonFiniteInput, sequence, index, value)
}

// NewAlphaError reports a rejected significance threshold.
func NewAlphaError(alpha float64) error {
	return fmt.Errorf("%w: got %v", ErrInvalidAlpha, alpha)
}

// IsPreconditionError reports whether err indicates a caller contract violation
// rather than a recoverable data condition.
func IsPreconditionError(err error) bool {
	return errors.Is(err, ErrNonFiniteInput)
}

// IsConfigError reports whether err was raised at configuration time.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidAlpha)
}
