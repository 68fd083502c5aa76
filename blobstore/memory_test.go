package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "a", []byte("one")))

	blob, err := store.Open(ctx, "a")
	require.NoError(t, err)

	// An open handle keeps the content it was opened with.
	require.NoError(t, store.Put(ctx, "a", []byte("two")))
	buf := make([]byte, 3)
	_, err = blob.ReadAt(ctx, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "one", string(buf))

	w, err := store.Create(ctx, "b")
	require.NoError(t, err)
	_, err = w.Write([]byte("pending"))
	require.NoError(t, err)

	_, err = store.Open(ctx, "b")
	assert.ErrorIs(t, err, ErrNotFound, "not visible before Close")

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	_, err = w.Write([]byte("late"))
	assert.ErrorIs(t, err, errBlobClosed)

	assert.Equal(t, 3, store.Writes())

	names, err := store.List(ctx, "c")
	require.NoError(t, err)
	assert.Empty(t, names)

	canceled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = store.Open(canceled, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.Put(canceled, "a", nil), context.Canceled)
}
