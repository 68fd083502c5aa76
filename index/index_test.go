package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateQuery(t *testing.T) {
	assert.NoError(t, ValidateQuery(3, []float32{1, 2, 3}, 1))
	assert.ErrorIs(t, ValidateQuery(3, []float32{1, 2, 3}, 0), ErrInvalidK)

	err := ValidateQuery(3, []float32{1, 2}, 1)
	var dm *ErrDimensionMismatch
	assert.True(t, errors.As(err, &dm))
	assert.Equal(t, 3, dm.Expected)
	assert.Equal(t, 2, dm.Actual)
}

func TestValidatePoints(t *testing.T) {
	assert.NoError(t, ValidatePoints(2, nil))
	assert.NoError(t, ValidatePoints(2, [][]float32{{1, 2}, {3, 4}}))

	var id *ErrInvalidDimension
	assert.True(t, errors.As(ValidatePoints(0, nil), &id))

	var dm *ErrDimensionMismatch
	assert.True(t, errors.As(ValidatePoints(2, [][]float32{{1, 2}, {3}}), &dm))
}

func TestSortResults(t *testing.T) {
	results := []Result{
		{ID: 4, Score: 0.5},
		{ID: 1, Score: 0.9},
		{ID: 2, Score: 0.5},
		{ID: 0, Score: 0.7},
	}

	SortResults(results)

	assert.Equal(t, []Result{
		{ID: 1, Score: 0.9},
		{ID: 0, Score: 0.7},
		{ID: 2, Score: 0.5},
		{ID: 4, Score: 0.5},
	}, results)
}
