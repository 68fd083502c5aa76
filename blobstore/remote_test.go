package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyspace(t *testing.T) {
	ks := Keyspace("db")

	assert.Equal(t, "db/a.snap", ks.Key("a.snap"))
	assert.Equal(t, "db/snaps/", ks.Prefix("snaps/"))
	assert.Equal(t, "db/snap", ks.Prefix("snap"))
	assert.Equal(t, []string{"a", "b/c"}, ks.Names([]string{"db/b/c", "db/a", "db/"}))

	assert.Equal(t, "a.snap", Keyspace("").Key("a.snap"))
}

func TestRangeBlob(t *testing.T) {
	const content = "0123456789"

	var ranges []string
	blob := NewRangeBlob(int64(len(content)), func(_ context.Context, off, end int64) (io.ReadCloser, error) {
		ranges = append(ranges, fmt.Sprintf("%d-%d", off, end))
		return io.NopCloser(strings.NewReader(content[off : end+1])), nil
	})
	ctx := context.Background()

	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 2)
	require.NoError(t, err)
	assert.Equal(t, "2345", string(buf[:n]))

	n, err = blob.ReadAt(ctx, buf, 8)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "89", string(buf[:n]))

	_, err = blob.ReadAt(ctx, buf, 10)
	assert.ErrorIs(t, err, io.EOF)

	rc, err := blob.ReadRange(ctx, 7, 100)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "789", string(got))

	rc, err = blob.ReadRange(ctx, 3, 0)
	require.NoError(t, err)
	got, err = io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Equal(t, []string{"2-5", "8-9", "7-9"}, ranges)
}

func TestPipeWriter(t *testing.T) {
	var uploaded string
	w := NewPipeWriter(func(r io.Reader) error {
		data, err := io.ReadAll(r)
		uploaded = string(data)
		return err
	})

	_, err := w.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = w.Write([]byte("world"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.Equal(t, "hello world", uploaded)

	assert.ErrorIs(t, w.Close(), io.ErrClosedPipe)
	_, err = w.Write([]byte("x"))
	assert.ErrorIs(t, err, io.ErrClosedPipe)

	failed := errors.New("upload failed")
	w = NewPipeWriter(func(io.Reader) error { return failed })
	assert.ErrorIs(t, w.Close(), failed)
}
