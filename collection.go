package vecdb

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/index/hnsw"
	imetadata "github.com/hupe1980/vecdb/internal/metadata"
	"github.com/hupe1980/vecdb/internal/resource"
	"github.com/hupe1980/vecdb/snapshot"
)

// builtIndex wraps an index for storage in an atomic.Pointer.
type builtIndex struct {
	index.Index
}

// collection owns the points of one named collection and its index.
//
// points, values and sources grow only by append; ids are positions in
// these slices. A point snapshot is taken by copying the slice headers
// under the read lock, so later appends never affect a running build.
type collection struct {
	name      string
	dimension int

	mu      sync.RWMutex
	points  [][]float32
	values  []string
	sources []string
	tags    *imetadata.SourceIndex

	index atomic.Pointer[builtIndex]

	// buildMu serializes builds of this collection.
	buildMu sync.Mutex
}

func newCollection(name string, dimension int) *collection {
	return &collection{
		name:      name,
		dimension: dimension,
		tags:      imetadata.NewSourceIndex(),
	}
}

// validate checks an insert batch without touching the collection.
func (c *collection) validate(vectors [][]float32, values []string) error {
	if len(vectors) != len(values) {
		return &CountMismatchError{Vectors: len(vectors), Values: len(values)}
	}
	for i, v := range vectors {
		if len(v) != c.dimension {
			return &DimensionMismatchError{Expected: c.dimension, Actual: len(v), Position: i}
		}
	}
	return nil
}

// append adds a validated batch. Vectors are copied.
func (c *collection) append(vectors [][]float32, values []string, source string) {
	if len(vectors) == 0 {
		return
	}

	// One backing array per batch.
	flat := make([]float32, len(vectors)*c.dimension)
	copied := make([][]float32, len(vectors))
	for i, v := range vectors {
		dst := flat[i*c.dimension : (i+1)*c.dimension : (i+1)*c.dimension]
		copy(dst, v)
		copied[i] = dst
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := uint32(len(c.points))
	c.points = append(c.points, copied...)
	c.values = append(c.values, values...)
	for range vectors {
		c.sources = append(c.sources, source)
	}
	c.tags.AddRange(source, start, uint32(len(c.points)))
}

// pointSnapshot returns the current points. The returned slice must not be modified.
func (c *collection) pointSnapshot() [][]float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.points[:len(c.points):len(c.points)]
}

// build constructs a new index from the first limit points, or from all
// current points when limit is negative, and swaps it in. Queries keep using
// the previous index until the swap.
func (c *collection) build(ctx context.Context, b index.Builder, res *resource.Controller, limit int) (int, error) {
	c.buildMu.Lock()
	defer c.buildMu.Unlock()

	if err := res.AcquireBuild(ctx); err != nil {
		return 0, err
	}
	defer res.ReleaseBuild()

	points := c.pointSnapshot()
	if limit >= 0 && limit < len(points) {
		points = points[:limit:limit]
	}

	idx, err := b.Build(c.dimension, points)
	if err != nil {
		return len(points), translateError(err)
	}

	c.index.Store(&builtIndex{Index: idx})

	return len(points), nil
}

// search runs a query against the current index.
func (c *collection) search(query []float32, k int, sources []string) ([]Result, error) {
	if len(query) != c.dimension {
		return nil, &DimensionMismatchError{Expected: c.dimension, Actual: len(query), Position: -1}
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}

	idx := c.index.Load()
	if idx == nil {
		return nil, ErrIndexNotBuilt
	}

	var opts index.SearchOptions

	c.mu.RLock()
	values := c.values
	if sources != nil {
		allowed := c.tags.Union(sources)
		opts.Filter = func(id uint32) bool { return allowed.Contains(id) }
	}
	c.mu.RUnlock()

	hits, err := idx.Search(query, k, opts)
	if err != nil {
		return nil, translateError(err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{Score: h.Score, Value: values[h.ID]}
	}

	return results, nil
}

func (c *collection) docs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.sources...)
}

func (c *collection) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.points)
}

func (c *collection) sourceCounts() map[string]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.tags.Counts()
}

func (c *collection) stats() CollectionStats {
	st := CollectionStats{
		Name:      c.name,
		Dimension: c.dimension,
		Points:    c.size(),
	}
	if idx := c.index.Load(); idx != nil {
		st.Indexed = true
		st.IndexedPoints = idx.Len()
		st.Stale = st.IndexedPoints != st.Points

		if g, ok := idx.Index.(*hnsw.HNSW); ok {
			gs := g.Stats()
			st.Graph = &gs
		}
	}
	return st
}

// state returns the persisted form of the collection.
func (c *collection) state() snapshot.Collection {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := snapshot.Collection{
		Name:      c.name,
		Dimension: c.dimension,
		Vectors:   c.points[:len(c.points):len(c.points)],
		Values:    c.values[:len(c.values):len(c.values)],
		Sources:   []snapshot.SourceRun{},
	}
	if idx := c.index.Load(); idx != nil {
		st.Indexed = true
		st.IndexedPoints = idx.Len()
	}
	if st.Vectors == nil {
		st.Vectors = [][]float32{}
		st.Values = []string{}
	}

	for _, s := range c.sources {
		if n := len(st.Sources); n > 0 && st.Sources[n-1].Source == s {
			st.Sources[n-1].Count++
			continue
		}
		st.Sources = append(st.Sources, snapshot.SourceRun{Source: s, Count: 1})
	}

	return st
}

// restore appends the points of a persisted collection.
func (c *collection) restore(st *snapshot.Collection) {
	offset := 0
	for _, run := range st.Sources {
		end := offset + run.Count
		c.append(st.Vectors[offset:end], st.Values[offset:end], run.Source)
		offset = end
	}
}
