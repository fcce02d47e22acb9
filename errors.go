// Package geodesy is a library of computations on the reference
// ellipsoid: angles, coordinates, map projections, geodesic problems,
// datum transformations and reductions of field observations.
//
// The subpackages share the error values declared here so callers can
// classify any failure with errors.Is.
package geodesy

import (
	"errors"
	"fmt"
)

// Base error kinds.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotConverged     = errors.New("failed to converge")
	ErrMissingParameter = errors.New("missing parameter")
	ErrCannotResolve    = errors.New("cannot resolve")
)

// Specific errors.
var (
	ErrLatitudeRange  = fmt.Errorf("latitude: %w", ErrInvalidInput)
	ErrLongitudeRange = fmt.Errorf("longitude: %w", ErrInvalidInput)
	ErrEastingRange   = fmt.Errorf("easting: %w", ErrInvalidInput)
	ErrNorthingRange  = fmt.Errorf("northing: %w", ErrInvalidInput)
	ErrZone           = fmt.Errorf("zone: %w", ErrInvalidInput)
	ErrBand           = fmt.Errorf("latitude band: %w", ErrInvalidInput)
	ErrGridReference  = fmt.Errorf("grid reference: %w", ErrInvalidInput)
	ErrSingularMatrix = fmt.Errorf("singular normal matrix: %w", ErrCannotResolve)
)

// RangeError reports a value outside its permitted domain.
type RangeError struct {
	Field  string  // Quantity that was checked
	Value  float64 // The offending value
	Reason string  // Constraint that was violated
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range: %v (%s)", e.Field, e.Value, e.Reason)
}

// Unwrap returns the underlying error kind.
func (e *RangeError) Unwrap() error {
	return ErrInvalidInput
}

// DimensionError reports coordinate arithmetic on mismatched dimensions.
type DimensionError struct {
	Want int
	Got  int
}

// Error implements the error interface.
func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: want %d, got %d", e.Want, e.Got)
}

// Unwrap returns the underlying error kind.
func (e *DimensionError) Unwrap() error {
	return ErrInvalidInput
}

// MissingParameterError names a required parameter that was not supplied.
type MissingParameterError struct {
	Key string
}

// Error implements the error interface.
func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Key)
}

// Unwrap returns the underlying error kind.
func (e *MissingParameterError) Unwrap() error {
	return ErrMissingParameter
}

// ConvergenceError reports an iteration that hit its cap.
type ConvergenceError struct {
	Op         string // Computation that was iterating
	Iterations int    // Iterations performed before giving up
}

// Error implements the error interface.
func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s: no convergence after %d iterations", e.Op, e.Iterations)
}

// Unwrap returns the underlying error kind.
func (e *ConvergenceError) Unwrap() error {
	return ErrNotConverged
}
