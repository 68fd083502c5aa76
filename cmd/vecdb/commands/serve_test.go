package commands

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecdb"
	"github.com/hupe1980/vecdb/blobstore"
	"github.com/hupe1980/vecdb/internal/config"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	store, err := openStore(ctx, config.Snapshot{})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = openStore(ctx, config.Snapshot{Backend: "local", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)

	_, err = openStore(ctx, config.Snapshot{Backend: "ftp"})
	assert.Error(t, err)
}

func TestServeRestoresAndSaves(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Log.Level = "error"
	cfg.Snapshot.Backend = "local"
	cfg.Snapshot.Path = dir

	store, err := blobstore.NewLocalStore(dir)
	require.NoError(t, err)

	ctx := context.Background()

	seed := vecdb.New()
	require.NoError(t, seed.CreateCollection(ctx, "docs", 2))
	require.NoError(t, seed.Insert(ctx, "docs", [][]float32{{1, 0}, {0, 1}}, []string{"x", "y"}, "seed"))
	require.NoError(t, seed.BuildIndex(ctx, "docs"))
	require.NoError(t, seed.SaveSnapshot(ctx, store, cfg.Snapshot.Name))
	require.NoError(t, seed.Close())

	// The deadline stands in for SIGTERM.
	runCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	require.NoError(t, serve(runCtx, cfg, true))

	db, err := vecdb.LoadSnapshot(ctx, store, cfg.Snapshot.Name)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	res, err := db.Query(ctx, "docs", []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "x", res[0].Value)
}

func TestServeWithoutSnapshot(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.Metrics = false
	cfg.Log.Level = "error"
	cfg.Snapshot.Backend = "local"
	cfg.Snapshot.Path = dir

	runCtx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, serve(runCtx, cfg, true))

	// An empty database is still written on shutdown.
	store, err := blobstore.NewLocalStore(dir)
	require.NoError(t, err)

	db, err := vecdb.LoadSnapshot(context.Background(), store, cfg.Snapshot.Name)
	require.NoError(t, err)
	assert.Empty(t, db.ListCollections(context.Background()))
	require.NoError(t, db.Close())
}
