package vecdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecdb/blobstore"
	"github.com/hupe1980/vecdb/snapshot"
)

// Snapshot writes every collection, in insertion order, to w.
//
// Indexes are not written. Collections that had an index when the snapshot
// was taken are rebuilt by Restore; builds are deterministic, so the
// restored index answers queries exactly like the saved one.
func (db *Database) Snapshot(ctx context.Context, w io.Writer) error {
	start := time.Now()

	n, err := db.writeSnapshot(ctx, w)

	db.opts.metricsCollector.RecordSnapshot(time.Since(start), err)
	db.opts.logger.LogSnapshot(ctx, "", n, time.Since(start), err)

	return err
}

// SaveSnapshot writes a snapshot to store under name, replacing any
// previous blob of that name atomically.
func (db *Database) SaveSnapshot(ctx context.Context, store blobstore.BlobStore, name string) error {
	start := time.Now()

	n, err := db.saveSnapshot(ctx, store, name)

	db.opts.metricsCollector.RecordSnapshot(time.Since(start), err)
	db.opts.logger.LogSnapshot(ctx, name, n, time.Since(start), err)

	return err
}

func (db *Database) saveSnapshot(ctx context.Context, store blobstore.BlobStore, name string) (int, error) {
	var buf bytes.Buffer

	n, err := db.writeSnapshot(ctx, &buf)
	if err != nil {
		return 0, err
	}

	if err := store.Put(ctx, name, buf.Bytes()); err != nil {
		return 0, fmt.Errorf("vecdb: store snapshot %q: %w", name, err)
	}

	return n, nil
}

func (db *Database) state(ctx context.Context) (*snapshot.State, error) {
	db.mu.RLock()
	if db.closed {
		db.mu.RUnlock()
		return nil, ErrClosed
	}
	names := slices.Sorted(maps.Keys(db.collections))
	collections := make([]*collection, len(names))
	for i, name := range names {
		collections[i] = db.collections[name]
	}
	db.mu.RUnlock()

	st := &snapshot.State{Collections: make([]snapshot.Collection, len(collections))}

	g, ctx := errgroup.WithContext(ctx)
	for i, c := range collections {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			st.Collections[i] = c.state()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return st, nil
}

func (db *Database) writeSnapshot(ctx context.Context, w io.Writer) (int, error) {
	st, err := db.state(ctx)
	if err != nil {
		return 0, err
	}

	_, err = snapshot.Encode(db.res.Writer(ctx, w), st, func(o *snapshot.Options) {
		o.Codec = db.opts.codec
		o.Compression = db.opts.compression
	})
	if err != nil {
		return 0, err
	}

	return len(st.Collections), nil
}

// Restore reads a snapshot written by Snapshot and returns a new Database
// configured by optFns.
func Restore(ctx context.Context, r io.Reader, optFns ...Option) (*Database, error) {
	return restore(ctx, "", r, optFns)
}

// LoadSnapshot restores a Database from the blob name in store.
func LoadSnapshot(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Database, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("vecdb: open snapshot %q: %w", name, err)
	}
	defer func() { _ = blob.Close() }()

	rc, err := blob.ReadRange(ctx, 0, blob.Size())
	if err != nil {
		return nil, fmt.Errorf("vecdb: read snapshot %q: %w", name, err)
	}
	defer func() { _ = rc.Close() }()

	return restore(ctx, name, rc, optFns)
}

func restore(ctx context.Context, source string, r io.Reader, optFns []Option) (*Database, error) {
	start := time.Now()
	db := New(optFns...)

	n, err := db.load(ctx, r)

	db.opts.logger.LogRestore(ctx, source, n, time.Since(start), err)

	if err != nil {
		return nil, err
	}

	return db, nil
}

func (db *Database) load(ctx context.Context, r io.Reader) (int, error) {
	st, _, err := snapshot.Decode(db.res.Reader(ctx, r))
	if err != nil {
		return 0, err
	}

	type rebuild struct {
		c      *collection
		points int
	}
	var indexed []rebuild

	for i := range st.Collections {
		sc := &st.Collections[i]

		if err := db.createCollection(sc.Name, sc.Dimension); err != nil {
			return 0, err
		}

		c, err := db.get(sc.Name)
		if err != nil {
			return 0, err
		}
		c.restore(sc)

		if sc.Indexed {
			indexed = append(indexed, rebuild{c: c, points: sc.IndexedPoints})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(db.res.MaxConcurrentBuilds())

	for _, r := range indexed {
		g.Go(func() error {
			return db.build(gctx, r.c, r.points)
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	return len(st.Collections), nil
}
