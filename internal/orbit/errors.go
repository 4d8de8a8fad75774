package orbit

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCatalog indicates curated selection was requested without entries.
	ErrEmptyCatalog = errors.New("orbit: curated catalog is empty")

	// ErrInvalidDimensions indicates a non-positive subset or point count.
	ErrInvalidDimensions = errors.New("orbit: subset and point counts must be positive")

	// ErrOutOfBounds indicates a coefficient outside its constraint interval.
	ErrOutOfBounds = errors.New("orbit: parameter out of valid bounds")

	// ErrUnknownEntry indicates a history id that was never selected.
	ErrUnknownEntry = errors.New("orbit: unknown history entry")

	// ErrInvalidRating indicates a rating outside [MinRating, MaxRating].
	ErrInvalidRating = errors.New("orbit: rating out of range")
)

// BoundsError reports which coefficient violated its interval.
type BoundsError struct {
	Name  string
	Value float64
	Range Range
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("orbit: %s=%g outside [%g, %g]", e.Name, e.Value, e.Range.Min, e.Range.Max)
}

func (e *BoundsError) Unwrap() error {
	return ErrOutOfBounds
}
