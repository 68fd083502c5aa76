// Package hnsw implements a Hierarchical Navigable Small World graph index.
//
// The graph is built in a single pass over a point snapshot. Node levels are
// drawn from a generator seeded by Options.Seed, so building twice from the
// same points in the same order yields the same graph and the same search
// results.
package hnsw

import (
	"math"
	"math/rand"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/vecdb/distance"
	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/internal/queue"
)

// Compile time checks to ensure HNSW satisfies the index interfaces.
var (
	_ index.Index   = (*HNSW)(nil)
	_ index.Builder = Builder{}
)

// maxLevelCap bounds node levels; with any sane M the probability of
// exceeding it is negligible.
const maxLevelCap = 16

// Options represents the options for configuring HNSW.
type Options struct {
	// M specifies the number of established connections for every new element during construction.
	// Reasonable range for M is 2-100. Higher M works better on datasets with high intrinsic dimensionality and/or high recall,
	// while low M works better for datasets with low intrinsic dimensionality and/or low recalls.
	// The bottom layer allows 2*M connections.
	M int `json:"m"`

	// EFConstruction is the size of the dynamic candidate list while linking new nodes.
	EFConstruction int `json:"ef_construction"`

	// EFSearch is the default size of the dynamic candidate list at query time.
	// Searches always use at least k.
	EFSearch int `json:"ef_search"`

	// Heuristic indicates whether to use the neighbor selection heuristic (true) or plain closest-M (false).
	// The heuristic keeps the graph navigable on clustered data.
	Heuristic bool `json:"heuristic"`

	// Seed seeds the level generator.
	Seed int64 `json:"seed"`
}

// DefaultOptions contains the default configuration options for HNSW.
var DefaultOptions = Options{
	M:              16,
	EFConstruction: 200,
	EFSearch:       100,
	Heuristic:      true,
	Seed:           42,
}

// Builder builds HNSW graphs with fixed options.
type Builder struct {
	opts Options
}

// NewBuilder returns a Builder configured by optFns applied over DefaultOptions.
func NewBuilder(optFns ...func(o *Options)) Builder {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.M < 2 {
		// M == 1 would result in division by zero
		// 1 / log(1.0 * M) = 1 / 0
		opts.M = 2
	}
	if opts.EFConstruction < opts.M {
		opts.EFConstruction = opts.M
	}
	if opts.EFSearch < 1 {
		opts.EFSearch = 1
	}

	return Builder{opts: opts}
}

// Name returns "hnsw".
func (Builder) Name() string { return "hnsw" }

// Options returns the effective options.
func (b Builder) Options() Options { return b.opts }

// Build implements index.Builder.
func (b Builder) Build(dimension int, points [][]float32) (index.Index, error) {
	if b.opts.M == 0 {
		b = NewBuilder()
	}
	return New(dimension, points, b.opts)
}

// node represents a node in the HNSW graph
type node struct {
	connections [][]uint32 // Links to other nodes, per layer
	vector      []float32
	norm        float32
	level       int
}

// HNSW represents the Hierarchical Navigable Small World graph
type HNSW struct {
	dimension int
	mmax      int     // Max number of connections per element/per layer
	mmax0     int     // Max for the 0 layer
	ml        float64 // Normalization factor for level generation
	ep        uint32  // Entry point, a node on the top layer
	maxLevel  int     // Track the current max level used

	nodes []*node
	opts  Options
	rng   *rand.Rand
}

// New builds a graph over points. Point i gets id i. The vectors are
// retained, not copied; callers must not mutate them afterwards.
func New(dimension int, points [][]float32, opts Options) (*HNSW, error) {
	if err := index.ValidatePoints(dimension, points); err != nil {
		return nil, err
	}

	h := &HNSW{
		dimension: dimension,
		mmax:      opts.M,
		mmax0:     2 * opts.M,
		ml:        1 / math.Log(1.0*float64(opts.M)),
		nodes:     make([]*node, 0, len(points)),
		opts:      opts,
		rng:       rand.New(rand.NewSource(opts.Seed)), // nolint gosec
	}

	for _, p := range points {
		h.insert(p)
	}

	// The generator is only needed during construction.
	h.rng = nil

	return h, nil
}

// Len returns the number of nodes in the graph.
func (h *HNSW) Len() int { return len(h.nodes) }

// Dimension returns the vector dimension.
func (h *HNSW) Dimension() int { return h.dimension }

func (h *HNSW) randomLevel() int {
	// 1 - Float64() is in (0, 1], so the logarithm stays finite.
	level := int(math.Floor(-math.Log(1-h.rng.Float64()) * h.ml))
	return min(level, maxLevelCap)
}

func (h *HNSW) distance(q []float32, qnorm float32, id uint32) float32 {
	n := h.nodes[id]
	return 1 - distance.CosineSimilarityNorms(q, n.vector, qnorm, n.norm)
}

// insert inserts a new element into the HNSW graph
func (h *HNSW) insert(v []float32) {
	id := uint32(len(h.nodes))
	level := h.randomLevel()

	n := &node{
		vector:      v,
		norm:        distance.Magnitude(v),
		level:       level,
		connections: make([][]uint32, level+1),
	}
	h.nodes = append(h.nodes, n)

	if id == 0 {
		h.ep = 0
		h.maxLevel = level
		return
	}

	// Find single shortest path from top layers above our current node, which will be our new starting-point
	ep := h.ep
	epDist := h.distance(v, n.norm, ep)
	for l := h.maxLevel; l > level; l-- {
		ep, epDist = h.greedy(v, n.norm, ep, epDist, l)
	}

	// For all levels equal and below our current node, find the top (closest) candidates and create a link
	for l := min(level, h.maxLevel); l >= 0; l-- {
		candidates := h.searchLayer(v, n.norm, queue.Item{Node: ep, Distance: epDist}, h.opts.EFConstruction, l, nil)

		neighbours := h.selectNeighbours(candidates, h.mmax)

		n.connections[l] = make([]uint32, len(neighbours))
		for i, nb := range neighbours {
			n.connections[l][i] = nb.Node
		}

		// Next link the neighbour nodes to our new node, making it visible
		for _, nb := range neighbours {
			h.link(nb.Node, id, l)
		}

		ep, epDist = candidates[0].Node, candidates[0].Distance
	}

	if level > h.maxLevel {
		h.ep = id
		h.maxLevel = level
	}
}

// greedy walks level towards q, moving to any strictly closer neighbour until none is left.
func (h *HNSW) greedy(q []float32, qnorm float32, ep uint32, epDist float32, level int) (uint32, float32) {
	changed := true
	for changed {
		changed = false

		for _, nb := range h.nodes[ep].connections[level] {
			d := h.distance(q, qnorm, nb)
			if d < epDist {
				// Update the starting point to our new node
				ep = nb
				// Update the currently shortest distance
				epDist = d
				changed = true
			}
		}
	}

	return ep, epDist
}

// link adds a directed edge first -> second on level, pruning first's
// neighbour list when it exceeds the layer's capacity.
func (h *HNSW) link(first, second uint32, level int) {
	maxConnections := h.mmax
	// HNSW allows double the connections for the bottom level (0)
	if level == 0 {
		maxConnections = h.mmax0
	}

	n := h.nodes[first]
	n.connections[level] = append(n.connections[level], second)

	if len(n.connections[level]) <= maxConnections {
		return
	}

	candidates := queue.NewMax(len(n.connections[level]))
	for _, id := range n.connections[level] {
		candidates.Push(queue.Item{Node: id, Distance: h.distance(n.vector, n.norm, id)})
	}

	selected := h.selectNeighbours(candidates.Drain(), maxConnections)

	// Next, reorder our connected nodes with the improved lower distances within the graph
	conns := n.connections[level][:0]
	for _, it := range selected {
		conns = append(conns, it.Node)
	}
	n.connections[level] = conns
}

// searchLayer performs a best-first search in a specified layer of the graph
// and returns up to ef items, closest first.
//
// Nodes rejected by filter are still traversed, so a selective filter does
// not disconnect the graph; they are only kept out of the result set.
func (h *HNSW) searchLayer(q []float32, qnorm float32, ep queue.Item, ef int, level int, filter index.Filter) []queue.Item {
	visited := bitset.New(uint(len(h.nodes)))
	visited.Set(uint(ep.Node))

	candidates := queue.NewMin(ef)
	candidates.Push(ep)

	topCandidates := queue.NewMax(ef + 1)
	if filter == nil || filter(ep.Node) {
		topCandidates.Push(ep)
	}

	for candidates.Len() > 0 {
		candidate, _ := candidates.Pop()

		if topCandidates.Len() >= ef {
			worst, _ := topCandidates.Top()
			if candidate.Distance > worst.Distance {
				break
			}
		}

		conns := h.nodes[candidate.Node].connections
		if level >= len(conns) { // Check if level is within bounds
			continue
		}

		for _, nb := range conns[level] {
			if visited.Test(uint(nb)) {
				continue
			}
			visited.Set(uint(nb))

			d := h.distance(q, qnorm, nb)

			if topCandidates.Len() >= ef {
				worst, _ := topCandidates.Top()
				if d >= worst.Distance {
					continue
				}
			}

			item := queue.Item{Node: nb, Distance: d}
			candidates.Push(item)

			if filter == nil || filter(nb) {
				topCandidates.Push(item)
				if topCandidates.Len() > ef {
					topCandidates.Pop()
				}
			}
		}
	}

	return topCandidates.Drain()
}

// selectNeighbours picks at most m items from candidates (closest first).
//
// With the heuristic enabled a candidate is skipped when it is closer to an
// already selected neighbour than to the base node; skipped candidates fill
// any remaining slots.
func (h *HNSW) selectNeighbours(candidates []queue.Item, m int) []queue.Item {
	if len(candidates) <= m {
		return candidates
	}
	if !h.opts.Heuristic {
		return candidates[:m]
	}

	selected := make([]queue.Item, 0, m)
	var pruned []queue.Item

	for _, c := range candidates {
		if len(selected) >= m {
			break
		}

		cn := h.nodes[c.Node]
		keep := true
		for _, s := range selected {
			if h.distance(cn.vector, cn.norm, s.Node) < c.Distance {
				keep = false
				break
			}
		}

		if keep {
			selected = append(selected, c)
		} else {
			pruned = append(pruned, c)
		}
	}

	// Add any additional items from pruned if current items < m
	for _, p := range pruned {
		if len(selected) >= m {
			break
		}
		selected = append(selected, p)
	}

	return selected
}

// Search performs a k-nearest neighbor search in the HNSW graph.
func (h *HNSW) Search(query []float32, k int, opts index.SearchOptions) ([]index.Result, error) {
	if err := index.ValidateQuery(h.dimension, query, k); err != nil {
		return nil, err
	}

	if len(h.nodes) == 0 {
		return []index.Result{}, nil
	}

	// No search can return more than every node.
	k = min(k, len(h.nodes))

	ef := opts.EF
	if ef <= 0 {
		ef = h.opts.EFSearch
	}
	ef = min(max(ef, k), len(h.nodes))

	qnorm := distance.Magnitude(query)

	ep := h.ep
	epDist := h.distance(query, qnorm, ep)
	for l := h.maxLevel; l > 0; l-- {
		ep, epDist = h.greedy(query, qnorm, ep, epDist, l)
	}

	items := h.searchLayer(query, qnorm, queue.Item{Node: ep, Distance: epDist}, ef, 0, opts.Filter)
	if len(items) > k {
		items = items[:k]
	}

	results := make([]index.Result, len(items))
	for i, it := range items {
		results[i] = index.Result{ID: it.Node, Score: distance.Similarity(it.Distance)}
	}
	index.SortResults(results)

	return results, nil
}
