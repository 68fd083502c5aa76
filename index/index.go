package index

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidK is returned when k is not positive.
var ErrInvalidK = errors.New("k must be positive")

// ErrDimensionMismatch is a named error type for dimension mismatch
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// ErrInvalidDimension is returned when an index is built with a non-positive dimension.
type ErrInvalidDimension struct {
	Dimension int
}

func (e *ErrInvalidDimension) Error() string {
	return fmt.Sprintf("invalid dimension: %d", e.Dimension)
}

// Result is a single search hit.
type Result struct {
	// ID is the position of the point in the slice the index was built from.
	ID uint32

	// Score is the cosine similarity between the query and the point.
	Score float32
}

// Filter reports whether the point with the given id is eligible as a result.
type Filter func(id uint32) bool

// SearchOptions tunes a single search.
type SearchOptions struct {
	// EF overrides the exploration budget of graph indexes.
	// Zero means the index default. Exact indexes ignore it.
	EF int

	// Filter restricts the eligible points. Nil admits every point.
	Filter Filter
}

// Index is a built, immutable nearest neighbor structure.
// Implementations are safe for concurrent Search calls.
type Index interface {
	// Search returns up to k results ranked by descending similarity.
	Search(query []float32, k int, opts SearchOptions) ([]Result, error)

	// Len returns the number of points the index was built from.
	Len() int

	// Dimension returns the vector dimension the index was built for.
	Dimension() int
}

// Builder constructs an Index from a point snapshot.
//
// Given the same points in the same order, a Builder must produce an index
// whose searches return identical results.
type Builder interface {
	Build(dimension int, points [][]float32) (Index, error)

	// Name identifies the strategy in logs and stats.
	Name() string
}

// ValidateQuery checks the arguments shared by every Search implementation.
func ValidateQuery(dimension int, query []float32, k int) error {
	if k <= 0 {
		return ErrInvalidK
	}
	if len(query) != dimension {
		return &ErrDimensionMismatch{Expected: dimension, Actual: len(query)}
	}
	return nil
}

// ValidatePoints checks that every point matches dimension.
func ValidatePoints(dimension int, points [][]float32) error {
	if dimension <= 0 {
		return &ErrInvalidDimension{Dimension: dimension}
	}
	for _, p := range points {
		if len(p) != dimension {
			return &ErrDimensionMismatch{Expected: dimension, Actual: len(p)}
		}
	}
	return nil
}

// SortResults orders results by descending score, then ascending id.
func SortResults(results []Result) {
	slices.SortFunc(results, func(a, b Result) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
