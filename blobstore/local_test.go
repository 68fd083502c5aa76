package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStores(t *testing.T) {
	stores := map[string]func(t *testing.T) BlobStore{
		"Memory": func(t *testing.T) BlobStore { return NewMemoryStore() },
		"Local": func(t *testing.T) BlobStore {
			s, err := NewLocalStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			// Streaming write
			data := []byte("hello world, this is a test blob for vecdb")
			w, err := store.Create(ctx, "snapshots/data-001.bin")
			require.NoError(t, err)
			n, err := w.Write(data)
			require.NoError(t, err)
			require.Equal(t, len(data), n)
			require.NoError(t, w.Sync())
			require.NoError(t, w.Close())

			// ReadAt
			blob, err := store.Open(ctx, "snapshots/data-001.bin")
			require.NoError(t, err)
			require.Equal(t, int64(len(data)), blob.Size())

			buf := make([]byte, 5)
			n, err = blob.ReadAt(ctx, buf, 6)
			require.NoError(t, err)
			require.Equal(t, 5, n)
			assert.Equal(t, "world", string(buf))

			// ReadRange
			rc, err := blob.ReadRange(ctx, 13, 4)
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())
			assert.Equal(t, "this", string(got))
			require.NoError(t, blob.Close())

			// Put replaces atomically
			require.NoError(t, store.Put(ctx, "snapshots/data-001.bin", []byte("v2")))
			all, err := ReadAll(ctx, store, "snapshots/data-001.bin")
			require.NoError(t, err)
			assert.Equal(t, "v2", string(all))

			require.NoError(t, store.Put(ctx, "other.bin", []byte("x")))

			names, err := store.List(ctx, "snapshots/")
			require.NoError(t, err)
			assert.Equal(t, []string{"snapshots/data-001.bin"}, names)

			names, err = store.List(ctx, "")
			require.NoError(t, err)
			assert.Equal(t, []string{"other.bin", "snapshots/data-001.bin"}, names)

			// Delete, twice
			require.NoError(t, store.Delete(ctx, "other.bin"))
			require.NoError(t, store.Delete(ctx, "other.bin"))

			_, err = store.Open(ctx, "other.bin")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLocalStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Put(context.Background(), "a.bin", []byte("abc")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.bin", entries[0].Name())

	_, err = os.Stat(filepath.Join(dir, "a.bin"))
	assert.NoError(t, err)
}
