package vecdb

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecdb/index/hnsw"
	"github.com/hupe1980/vecdb/internal/resource"
)

// Result is a single query hit.
type Result struct {
	// Score is the cosine similarity between the query and the stored vector.
	Score float32 `json:"score"`

	// Value is the metadata value stored with the vector.
	Value string `json:"value"`
}

// CollectionStats describes a collection.
type CollectionStats struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`

	// Points is the number of stored vectors.
	Points int `json:"points"`

	// Indexed reports whether an index has been built.
	Indexed bool `json:"indexed"`

	// IndexedPoints is the number of vectors the current index covers.
	IndexedPoints int `json:"indexed_points"`

	// Stale reports whether vectors were appended after the last build.
	Stale bool `json:"stale"`

	// Graph describes the layers of an HNSW index. It is nil for other
	// index types.
	Graph *hnsw.Stats `json:"graph,omitempty"`
}

// Database maps collection names to collections.
//
// All methods are safe for concurrent use. Collection management takes an
// exclusive lock on the name map; operations on a single collection only
// hold it long enough to resolve the name. Index builds run outside of any
// lock and publish the new index with an atomic swap, so queries against
// the previous index continue during a rebuild.
type Database struct {
	mu          sync.RWMutex
	collections map[string]*collection
	closed      bool

	opts options
	res  *resource.Controller
}

// New creates an empty Database.
func New(optFns ...Option) *Database {
	opts := applyOptions(optFns)

	return &Database{
		collections: make(map[string]*collection),
		opts:        opts,
		res: resource.NewController(resource.Config{
			MaxConcurrentBuilds: opts.maxConcurrentBuilds,
			IOLimitBytesPerSec:  opts.snapshotIOLimit,
		}),
	}
}

func (db *Database) get(name string) (*collection, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.closed {
		return nil, ErrClosed
	}

	c, ok := db.collections[name]
	if !ok {
		return nil, notFound(name)
	}

	return c, nil
}

// CreateCollection creates an empty collection with a fixed dimension.
func (db *Database) CreateCollection(ctx context.Context, name string, dimension int) error {
	err := db.createCollection(name, dimension)

	db.opts.metricsCollector.RecordCreate(err)
	db.opts.logger.LogCreate(ctx, name, dimension, err)

	return err
}

func (db *Database) createCollection(name string, dimension int) error {
	if name == "" {
		return ErrInvalidName
	}
	if dimension <= 0 {
		return &InvalidDimensionError{Dimension: dimension}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	if _, ok := db.collections[name]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyExists, name)
	}

	db.collections[name] = newCollection(name, dimension)

	return nil
}

// DeleteCollection removes a collection and everything stored in it.
func (db *Database) DeleteCollection(ctx context.Context, name string) error {
	err := db.deleteCollection(name)

	db.opts.metricsCollector.RecordDelete(err)
	db.opts.logger.LogDelete(ctx, name, err)

	return err
}

func (db *Database) deleteCollection(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrClosed
	}
	if _, ok := db.collections[name]; !ok {
		return notFound(name)
	}

	delete(db.collections, name)

	return nil
}

// ListCollections returns the collection names in lexical order.
// A closed Database has no collections.
func (db *Database) ListCollections(ctx context.Context) []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return slices.Sorted(maps.Keys(db.collections))
}

// Insert appends vectors and their values to a collection, tagging every
// vector with source.
//
// The whole batch is validated before anything is stored: a count mismatch
// or a vector of the wrong dimension fails the call and leaves the
// collection unchanged. Insert does not update the index; call BuildIndex
// to make the new vectors searchable.
func (db *Database) Insert(ctx context.Context, name string, vectors [][]float32, values []string, source string) error {
	start := time.Now()

	err := db.insert(name, vectors, values, source)

	db.opts.metricsCollector.RecordInsert(len(vectors), time.Since(start), err)
	db.opts.logger.LogAppend(ctx, name, len(vectors), err)

	return err
}

func (db *Database) insert(name string, vectors [][]float32, values []string, source string) error {
	c, err := db.get(name)
	if err != nil {
		return err
	}

	if err := c.validate(vectors, values); err != nil {
		return err
	}

	c.append(vectors, values, source)

	return nil
}

// BuildIndex rebuilds the index of a collection from all of its vectors
// and atomically replaces the previous index.
//
// Builds of the same collection are serialized. Builds across collections
// are bounded by WithMaxConcurrentBuilds; waiting for a slot honors ctx.
func (db *Database) BuildIndex(ctx context.Context, name string) error {
	c, err := db.get(name)
	if err != nil {
		db.opts.logger.LogBuild(ctx, name, 0, 0, err)
		return err
	}

	return db.build(ctx, c, -1)
}

func (db *Database) build(ctx context.Context, c *collection, limit int) error {
	start := time.Now()

	points, err := c.build(ctx, db.opts.builder, db.res, limit)

	duration := time.Since(start)
	db.opts.metricsCollector.RecordBuild(points, duration, err)
	db.opts.logger.LogBuild(ctx, c.name, points, duration, err)

	return err
}

// BuildAll rebuilds the index of every collection and returns the first error.
func (db *Database) BuildAll(ctx context.Context) error {
	db.mu.RLock()
	if db.closed {
		db.mu.RUnlock()
		return ErrClosed
	}
	collections := slices.Collect(maps.Values(db.collections))
	db.mu.RUnlock()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(db.res.MaxConcurrentBuilds())

	for _, c := range collections {
		g.Go(func() error {
			return db.build(ctx, c, -1)
		})
	}

	return g.Wait()
}

// GetDocs returns the source tag of every vector in insertion order.
func (db *Database) GetDocs(ctx context.Context, name string) ([]string, error) {
	c, err := db.get(name)
	if err != nil {
		return nil, err
	}

	return c.docs(), nil
}

// Dimension returns the dimension of a collection.
func (db *Database) Dimension(ctx context.Context, name string) (int, error) {
	c, err := db.get(name)
	if err != nil {
		return 0, err
	}

	return c.dimension, nil
}

// Len returns the number of vectors stored in a collection.
func (db *Database) Len(ctx context.Context, name string) (int, error) {
	c, err := db.get(name)
	if err != nil {
		return 0, err
	}

	return c.size(), nil
}

// Stats describes a collection and the state of its index.
func (db *Database) Stats(ctx context.Context, name string) (CollectionStats, error) {
	c, err := db.get(name)
	if err != nil {
		return CollectionStats{}, err
	}

	return c.stats(), nil
}

// Sources returns the distinct source tags of a collection and how many
// vectors each contributed.
func (db *Database) Sources(ctx context.Context, name string) (map[string]uint64, error) {
	c, err := db.get(name)
	if err != nil {
		return nil, err
	}

	return c.sourceCounts(), nil
}
