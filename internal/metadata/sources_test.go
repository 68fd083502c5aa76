package imetadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSourceIndex(t *testing.T) {
	s := NewSourceIndex()
	s.AddRange("a.txt", 0, 3)
	s.AddRange("b.txt", 3, 5)
	s.AddRange("a.txt", 5, 6)
	s.AddRange("empty", 6, 6)

	assert.Equal(t, map[string]uint64{"a.txt": 4, "b.txt": 2}, s.Counts())

	u := s.Union([]string{"b.txt", "missing"})
	assert.Equal(t, uint64(2), u.GetCardinality())
	assert.True(t, u.Contains(3))
	assert.True(t, u.Contains(4))
	assert.False(t, u.Contains(0))

	all := s.Union([]string{"a.txt", "b.txt"})
	assert.Equal(t, uint64(6), all.GetCardinality())

	assert.True(t, s.Union(nil).IsEmpty())
}
