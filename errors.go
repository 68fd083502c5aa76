package vecdb

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecdb/index"
)

var (
	// ErrAlreadyExists is returned when creating a collection whose name is taken.
	ErrAlreadyExists = errors.New("collection already exists")

	// ErrNotFound is returned for operations on an unknown collection.
	ErrNotFound = errors.New("collection not found")

	// ErrIndexNotBuilt is returned when querying a collection that was never indexed.
	ErrIndexNotBuilt = errors.New("index not built")

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("k must be positive")

	// ErrInvalidName is returned for empty collection names.
	ErrInvalidName = errors.New("invalid collection name")

	// ErrClosed is returned by operations on a closed Database.
	ErrClosed = errors.New("database closed")

	// ErrDimensionMismatch matches every DimensionMismatchError and CountMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidDimension matches every InvalidDimensionError.
	ErrInvalidDimension = errors.New("invalid dimension")
)

// DimensionMismatchError indicates a vector whose length differs from the
// collection's dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type DimensionMismatchError struct {
	Expected int
	Actual   int

	// Position is the offset of the offending vector within an insert
	// batch, or -1 for a query vector.
	Position int

	cause error
}

func (e *DimensionMismatchError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("dimension mismatch: vector %d: expected %d, got %d", e.Position, e.Expected, e.Actual)
	}
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

func (e *DimensionMismatchError) Unwrap() error { return e.cause }

// CountMismatchError indicates an insert batch with a different number of
// vectors and values.
type CountMismatchError struct {
	Vectors int
	Values  int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: %d vectors but %d values", e.Vectors, e.Values)
}

func (e *CountMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// InvalidDimensionError indicates a non-positive collection dimension.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type InvalidDimensionError struct {
	Dimension int
	cause     error
}

func (e *InvalidDimensionError) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

func (e *InvalidDimensionError) Is(target error) bool { return target == ErrInvalidDimension }

func (e *InvalidDimensionError) Unwrap() error { return e.cause }

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *index.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &DimensionMismatchError{Expected: dm.Expected, Actual: dm.Actual, Position: -1, cause: err}
	}
	var id *index.ErrInvalidDimension
	if errors.As(err, &id) {
		return &InvalidDimensionError{Dimension: id.Dimension, cause: err}
	}
	if errors.Is(err, index.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}

	return err
}
