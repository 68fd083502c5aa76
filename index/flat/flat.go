// Package flat provides an exact, brute-force implementation of index.Index.
package flat

import (
	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/internal/queue"
)

// Compile time checks to ensure Flat satisfies the index interfaces.
var (
	_ index.Index   = (*Flat)(nil)
	_ index.Builder = Builder{}
)

// Builder builds Flat indexes.
type Builder struct{}

// Name returns "flat".
func (Builder) Name() string { return "flat" }

// Build implements index.Builder.
func (Builder) Build(dimension int, points [][]float32) (index.Index, error) {
	return New(dimension, points)
}

// Flat scans every point on each search. Results are exact.
type Flat struct {
	dimension int
	points    [][]float32
}

// New creates a flat index over points. The slice is retained, not copied;
// callers must not mutate the vectors afterwards.
func New(dimension int, points [][]float32) (*Flat, error) {
	if err := index.ValidatePoints(dimension, points); err != nil {
		return nil, err
	}

	return &Flat{
		dimension: dimension,
		points:    points,
	}, nil
}

// Len returns the number of indexed points.
func (f *Flat) Len() int { return len(f.points) }

// Dimension returns the vector dimension.
func (f *Flat) Dimension() int { return f.dimension }

// Search performs an exact k-nearest neighbor search.
func (f *Flat) Search(query []float32, k int, opts index.SearchOptions) ([]index.Result, error) {
	if err := index.ValidateQuery(f.dimension, query, k); err != nil {
		return nil, err
	}

	k = min(k, len(f.points))
	if k == 0 {
		return []index.Result{}, nil
	}

	topCandidates := queue.NewMax(k + 1)

	for i, p := range f.points {
		id := uint32(i)
		if opts.Filter != nil && !opts.Filter(id) {
			continue
		}

		topCandidates.Push(queue.Item{Node: id, Distance: distance.CosineDistance(query, p)})
		if topCandidates.Len() > k {
			topCandidates.Pop()
		}
	}

	items := topCandidates.Drain()
	results := make([]index.Result, len(items))
	for i, it := range items {
		results[i] = index.Result{ID: it.Node, Score: distance.Similarity(it.Distance)}
	}

	return results, nil
}
