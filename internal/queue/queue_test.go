package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Some items and their priorities.
var items = []float32{0.4, 9, 0.001, 0.0534, 0.234, 2.03, 2.042, 2.532, 1.0009, 0.329, 0.193, 0.999, 0.020391, 2.0991, 1.203, 10.03, 1.039, 1.0008, 5.029, 0.789}

func TestMaxValidation(t *testing.T) {
	h := NewMax(len(items))

	for k, v := range items {
		h.Push(Item{Node: uint32(k), Distance: v})
	}

	maxItem, ok := h.Top()
	require.True(t, ok)
	assert.Equal(t, float32(10.03), maxItem.Distance)
	assert.Equal(t, uint32(15), maxItem.Node)
	assert.Equal(t, 20, h.Len())

	// Prune
	for h.Len() > 10 {
		h.Pop()
	}

	maxItem, _ = h.Top()
	assert.Equal(t, float32(1.0008), maxItem.Distance)
	assert.Equal(t, uint32(17), maxItem.Node)

	for h.Len() > 1 {
		h.Pop()
	}

	maxItem, _ = h.Top()
	assert.Equal(t, float32(0.001), maxItem.Distance)
	assert.Equal(t, uint32(2), maxItem.Node)

	h.Pop()
	assert.Equal(t, 0, h.Len())

	_, ok = h.Pop()
	assert.False(t, ok)
}

func TestMinValidation(t *testing.T) {
	h := NewMin(len(items))

	for k, v := range items {
		h.Push(Item{Node: uint32(k), Distance: v})
	}

	minItem, ok := h.Top()
	require.True(t, ok)
	assert.Equal(t, float32(0.001), minItem.Distance)
	assert.Equal(t, uint32(2), minItem.Node)

	prev := float32(-1)
	for h.Len() > 0 {
		it, _ := h.Pop()
		assert.GreaterOrEqual(t, it.Distance, prev)
		prev = it.Distance
	}
}

func TestTieBreakByNode(t *testing.T) {
	minQ := NewMin(4)
	maxQ := NewMax(4)
	for _, n := range []uint32{3, 1, 2, 0} {
		minQ.Push(Item{Node: n, Distance: 0.5})
		maxQ.Push(Item{Node: n, Distance: 0.5})
	}

	top, _ := minQ.Top()
	assert.Equal(t, uint32(0), top.Node)

	top, _ = maxQ.Top()
	assert.Equal(t, uint32(3), top.Node)
}

func TestDrainClosestFirst(t *testing.T) {
	for _, h := range []*PriorityQueue{NewMin(0), NewMax(0)} {
		h.Push(Item{Node: 1, Distance: 0.3})
		h.Push(Item{Node: 2, Distance: 0.1})
		h.Push(Item{Node: 3, Distance: 0.2})

		out := h.Drain()
		require.Len(t, out, 3)
		assert.Equal(t, []uint32{2, 3, 1}, []uint32{out[0].Node, out[1].Node, out[2].Node})
		assert.Equal(t, 0, h.Len())
	}
}
