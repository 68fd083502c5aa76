package hnsw

import (
	"math"
	"testing"

	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/index/flat"
	"github.com/hupe1980/vecdb/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var colors = [][]float32{
	{10, 12, 4.5},
	{10, 11, 10.5},
	{10, 20.5, 15},
}

func TestHNSW(t *testing.T) {
	t.Run("ExactOnSmallSet", func(t *testing.T) {
		idx, err := NewBuilder().Build(3, colors)
		require.NoError(t, err)
		assert.Equal(t, 3, idx.Len())
		assert.Equal(t, 3, idx.Dimension())

		results, err := idx.Search([]float32{10, 12.5, 4.5}, 1, index.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, uint32(0), results[0].ID)
		assert.InDelta(t, 0.9997943, results[0].Score, 1e-6)
	})

	t.Run("KLargerThanGraph", func(t *testing.T) {
		idx, err := NewBuilder().Build(3, colors)
		require.NoError(t, err)

		results, err := idx.Search([]float32{10, 12.5, 4.5}, math.MaxInt, index.SearchOptions{EF: math.MaxInt})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, uint32(0), results[0].ID)
	})

	t.Run("AppendedPoints", func(t *testing.T) {
		points := append([][]float32{}, colors...)
		points = append(points, []float32{10, 12, 16.5}, []float32{10, 30, 40.5})

		idx, err := NewBuilder().Build(3, points)
		require.NoError(t, err)

		results, err := idx.Search([]float32{10, 30.5, 35.5}, 1, index.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, uint32(4), results[0].ID)
		assert.InDelta(t, 0.9973914, results[0].Score, 1e-6)
	})

	t.Run("IdenticalVectorRanksFirst", func(t *testing.T) {
		rng := testutil.NewRNG(7)
		points := rng.UniformRangeVectors(50, 8)

		idx, err := NewBuilder().Build(8, points)
		require.NoError(t, err)

		for i, p := range points {
			results, err := idx.Search(p, 3, index.SearchOptions{})
			require.NoError(t, err)
			require.NotEmpty(t, results)
			assert.Equal(t, uint32(i), results[0].ID)
			assert.InDelta(t, 1.0, results[0].Score, 1e-5)
		}
	})

	t.Run("ScoresNonIncreasing", func(t *testing.T) {
		rng := testutil.NewRNG(1)
		points := rng.UniformRangeVectors(200, 16)

		idx, err := NewBuilder().Build(16, points)
		require.NoError(t, err)

		results, err := idx.Search(rng.UniformRangeVectors(1, 16)[0], 20, index.SearchOptions{})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(results), 20)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		idx, err := NewBuilder().Build(3, nil)
		require.NoError(t, err)

		results, err := idx.Search([]float32{1, 2, 3}, 5, index.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Filter", func(t *testing.T) {
		idx, err := NewBuilder().Build(3, colors)
		require.NoError(t, err)

		results, err := idx.Search([]float32{10, 12.5, 4.5}, 3, index.SearchOptions{
			Filter: func(id uint32) bool { return id == 2 },
		})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, uint32(2), results[0].ID)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := NewBuilder().Build(0, nil)
		var id *index.ErrInvalidDimension
		assert.ErrorAs(t, err, &id)

		idx, err := NewBuilder().Build(3, colors)
		require.NoError(t, err)

		_, err = idx.Search([]float32{1, 2}, 1, index.SearchOptions{})
		var dm *index.ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)

		_, err = idx.Search([]float32{1, 2, 3}, 0, index.SearchOptions{})
		assert.ErrorIs(t, err, index.ErrInvalidK)
	})
}

func TestDeterministicBuild(t *testing.T) {
	rng := testutil.NewRNG(3)
	points := rng.UniformRangeVectors(300, 12)
	queries := rng.UniformRangeVectors(20, 12)

	b := NewBuilder(func(o *Options) {
		o.M = 8
		o.EFConstruction = 64
		o.EFSearch = 16
	})

	a1, err := b.Build(12, points)
	require.NoError(t, err)
	a2, err := b.Build(12, points)
	require.NoError(t, err)

	assert.Equal(t, a1.(*HNSW).Stats(), a2.(*HNSW).Stats())

	for _, q := range queries {
		r1, err := a1.Search(q, 10, index.SearchOptions{})
		require.NoError(t, err)
		r2, err := a2.Search(q, 10, index.SearchOptions{})
		require.NoError(t, err)
		assert.Equal(t, r1, r2)
	}
}

func TestRecall(t *testing.T) {
	rng := testutil.NewRNG(11)
	points := rng.ClusteredVectors(1000, 32, 10, 0.2)
	queries := rng.ClusteredVectors(25, 32, 10, 0.2)

	approx, err := NewBuilder().Build(32, points)
	require.NoError(t, err)
	exact, err := flat.New(32, points)
	require.NoError(t, err)

	var total float64
	for _, q := range queries {
		want, err := exact.Search(q, 10, index.SearchOptions{})
		require.NoError(t, err)
		got, err := approx.Search(q, 10, index.SearchOptions{})
		require.NoError(t, err)

		total += testutil.ComputeRecall(want, got)
	}

	assert.GreaterOrEqual(t, total/float64(len(queries)), 0.9)
}

func TestStats(t *testing.T) {
	idx, err := New(3, colors, NewBuilder().Options())
	require.NoError(t, err)

	s := idx.Stats()
	assert.Equal(t, 3, s.Nodes)
	require.NotEmpty(t, s.Levels)
	assert.Equal(t, 3, s.Levels[0].Nodes)
	// Every node links to both others on the bottom layer.
	assert.Equal(t, 6, s.Levels[0].Connections)
	assert.Contains(t, s.String(), "nodes = 3")
}

func TestNewBuilderClampsOptions(t *testing.T) {
	b := NewBuilder(func(o *Options) {
		o.M = 1
		o.EFConstruction = 0
		o.EFSearch = 0
	})

	opts := b.Options()
	assert.Equal(t, 2, opts.M)
	assert.Equal(t, 2, opts.EFConstruction)
	assert.Equal(t, 1, opts.EFSearch)
	assert.Equal(t, "hnsw", b.Name())
}
