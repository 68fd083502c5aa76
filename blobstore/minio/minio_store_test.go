package minio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecdb/blobstore"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, err := New(strings.TrimPrefix(srv.URL, "http://"), "snapshots", func(o *Options) {
		o.AccessKey = "test"
		o.SecretKey = "test-secret"
		o.Region = "us-east-1"
		o.Prefix = "db"
		o.PathStyle = true
	})
	require.NoError(t, err)

	return store
}

func TestStore_OpenNotFound(t *testing.T) {
	var gotPath string
	store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := store.Open(context.Background(), "missing.snap")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
	assert.Equal(t, "/snapshots/db/missing.snap", gotPath)
}

func TestStore_Delete(t *testing.T) {
	var method string
	store := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, store.Delete(context.Background(), "old.snap"))
	assert.Equal(t, http.MethodDelete, method)
}

// TestStore_Integration requires a running MinIO instance addressed by
// VECDB_MINIO_ENDPOINT. The bucket must exist.
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("VECDB_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("VECDB_MINIO_ENDPOINT not set")
	}

	store, err := New(endpoint, "test-vecdb", func(o *Options) {
		o.AccessKey = "minioadmin"
		o.SecretKey = "minioadmin"
		o.Prefix = "test-prefix/"
	})
	require.NoError(t, err)

	ctx := context.Background()

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.txt", data))

	blob, err := store.Open(ctx, "test.txt")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	got, err := blobstore.ReadAll(ctx, store, "test.txt")
	require.NoError(t, err)
	assert.Equal(t, data, got)
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.txt")

	require.NoError(t, store.Delete(ctx, "test.txt"))
	_, err = store.Open(ctx, "test.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	wb, err := store.Create(ctx, "stream.txt")
	require.NoError(t, err)
	_, err = wb.Write([]byte("streamed data"))
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	blob3, err := store.Open(ctx, "stream.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(13), blob3.Size())
	require.NoError(t, blob3.Close())

	_ = store.Delete(ctx, "stream.txt")
}
