package vecdb

import (
	"context"
	"time"
)

// Query returns up to k stored values most similar to vector, best first.
//
// Scores are cosine similarities. Equal scores are ordered by insertion.
// Vectors appended since the last BuildIndex are not considered. A
// collection that was never indexed fails with ErrIndexNotBuilt.
func (db *Database) Query(ctx context.Context, name string, vector []float32, k int) ([]Result, error) {
	return db.query(ctx, name, vector, k, nil)
}

// QueryFiltered is like Query but only considers vectors inserted under
// one of sources. An empty sources list matches nothing.
func (db *Database) QueryFiltered(ctx context.Context, name string, vector []float32, k int, sources []string) ([]Result, error) {
	if sources == nil {
		sources = []string{}
	}
	return db.query(ctx, name, vector, k, sources)
}

func (db *Database) query(ctx context.Context, name string, vector []float32, k int, sources []string) ([]Result, error) {
	start := time.Now()

	results, err := db.search(name, vector, k, sources)

	db.opts.metricsCollector.RecordQuery(k, time.Since(start), err)
	db.opts.logger.LogQuery(ctx, name, k, len(results), err)

	return results, err
}

func (db *Database) search(name string, vector []float32, k int, sources []string) ([]Result, error) {
	c, err := db.get(name)
	if err != nil {
		return nil, err
	}

	return c.search(vector, k, sources)
}
