package flat

import (
	"math"
	"testing"

	"github.com/hupe1980/vecdb/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var colors = [][]float32{
	{10, 12, 4.5},
	{10, 11, 10.5},
	{10, 20.5, 15},
}

func TestFlat(t *testing.T) {
	t.Run("ExactTopOne", func(t *testing.T) {
		f, err := New(3, colors)
		require.NoError(t, err)
		assert.Equal(t, 3, f.Len())
		assert.Equal(t, 3, f.Dimension())

		results, err := f.Search([]float32{10, 12.5, 4.5}, 1, index.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, uint32(0), results[0].ID)
		assert.InDelta(t, 0.9997943, results[0].Score, 1e-6)
	})

	t.Run("RankedDescending", func(t *testing.T) {
		f, err := New(3, colors)
		require.NoError(t, err)

		results, err := f.Search([]float32{10, 12.5, 4.5}, 10, index.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, results, 3)
		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
	})

	t.Run("KLargerThanPoints", func(t *testing.T) {
		f, err := New(3, colors)
		require.NoError(t, err)

		results, err := f.Search([]float32{10, 12.5, 4.5}, math.MaxInt, index.SearchOptions{})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, uint32(0), results[0].ID)
	})

	t.Run("Filter", func(t *testing.T) {
		f, err := New(3, colors)
		require.NoError(t, err)

		results, err := f.Search([]float32{10, 12.5, 4.5}, 3, index.SearchOptions{
			Filter: func(id uint32) bool { return id != 0 },
		})
		require.NoError(t, err)
		require.Len(t, results, 2)
		for _, r := range results {
			assert.NotEqual(t, uint32(0), r.ID)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		f, err := Builder{}.Build(3, nil)
		require.NoError(t, err)

		results, err := f.Search([]float32{1, 2, 3}, 5, index.SearchOptions{})
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := New(3, [][]float32{{1, 2}})
		assert.Error(t, err)

		f, err := New(3, colors)
		require.NoError(t, err)

		_, err = f.Search([]float32{1, 2}, 1, index.SearchOptions{})
		var dm *index.ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)

		_, err = f.Search([]float32{1, 2, 3}, 0, index.SearchOptions{})
		assert.ErrorIs(t, err, index.ErrInvalidK)
	})
}
