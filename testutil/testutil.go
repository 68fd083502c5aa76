package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/index"
)

// RNG is a seeded, mutex-guarded source of test vectors.
type RNG struct {
	mu   sync.Mutex
	rand *rand.Rand
	seed int64
}

// NewRNG returns an RNG seeded with seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: rand.New(rand.NewSource(seed)), seed: seed} // nolint gosec
}

// Reset rewinds the RNG to its seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	r.rand.Seed(r.seed)
	r.mu.Unlock()
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 { return r.seed }

// generate returns num vectors of length dim sharing one backing array,
// each filled by fill while the lock is held.
func (r *RNG) generate(num, dim int, fill func(i int, vec []float32)) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	out := make([][]float32, num)
	for i := range out {
		out[i] = data[i*dim : (i+1)*dim : (i+1)*dim]
		fill(i, out[i])
	}
	return out
}

// UniformVectors returns vectors with components in [0, 1).
func (r *RNG) UniformVectors(num, dim int) [][]float32 {
	return r.generate(num, dim, func(_ int, vec []float32) {
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
	})
}

// UniformRangeVectors returns vectors with components in [-1, 1).
func (r *RNG) UniformRangeVectors(num, dim int) [][]float32 {
	return r.generate(num, dim, func(_ int, vec []float32) {
		for j := range vec {
			vec[j] = 2*r.rand.Float32() - 1
		}
	})
}

// UnitVectors returns vectors drawn uniformly from the unit sphere.
func (r *RNG) UnitVectors(num, dim int) [][]float32 {
	return r.generate(num, dim, func(_ int, vec []float32) {
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		distance.NormalizeL2InPlace(vec)
	})
}

// ClusteredVectors returns num vectors spread around clusters unit
// centroids with Gaussian noise of the given standard deviation. Vector i
// belongs to cluster i % clusters.
func (r *RNG) ClusteredVectors(num, dim, clusters int, spread float32) [][]float32 {
	centroids := r.UnitVectors(clusters, dim)

	return r.generate(num, dim, func(i int, vec []float32) {
		c := centroids[i%clusters]
		for j := range vec {
			vec[j] = c[j] + spread*float32(r.rand.NormFloat64())
		}
	})
}

// ExactTopK scores every vector against query by cosine similarity and
// returns the best k in result order.
func ExactTopK(query []float32, vectors [][]float32, k int) []index.Result {
	results := make([]index.Result, len(vectors))
	for i, v := range vectors {
		results[i] = index.Result{ID: uint32(i), Score: distance.CosineSimilarity(query, v)}
	}
	index.SortResults(results)

	return results[:min(k, len(results))]
}

// ComputeRecall returns the fraction of the first min(len) ground truth ids
// found in approximate. Two empty lists have recall 1.
func ComputeRecall(groundTruth, approximate []index.Result) float64 {
	k := min(len(groundTruth), len(approximate))
	if k == 0 {
		if len(groundTruth) == len(approximate) {
			return 1
		}
		return 0
	}

	want := make(map[uint32]struct{}, k)
	for _, r := range groundTruth[:k] {
		want[r.ID] = struct{}{}
	}

	hits := 0
	for _, r := range approximate {
		if _, ok := want[r.ID]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}
