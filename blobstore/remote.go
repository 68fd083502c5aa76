package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"slices"
	"strings"
	"sync/atomic"
)

// Keyspace maps blob names to object keys below a root prefix. Object store
// adapters use it so that several databases can share one bucket.
type Keyspace string

// Key returns the object key of name.
func (k Keyspace) Key(name string) string {
	return path.Join(string(k), name)
}

// Prefix returns the object key prefix for a List prefix, keeping a
// trailing slash that path.Join would drop.
func (k Keyspace) Prefix(prefix string) string {
	p := k.Key(prefix)
	if strings.HasSuffix(prefix, "/") && !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// Names converts object keys back to sorted blob names.
func (k Keyspace) Names(keys []string) []string {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(strings.TrimPrefix(key, string(k)), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// RangeFunc fetches the inclusive byte range [off, end] of a remote object.
type RangeFunc func(ctx context.Context, off, end int64) (io.ReadCloser, error)

// NewRangeBlob returns a Blob of size bytes whose reads are served by fetch.
func NewRangeBlob(size int64, fetch RangeFunc) Blob {
	return &rangeBlob{size: size, fetch: fetch}
}

type rangeBlob struct {
	size  int64
	fetch RangeFunc
}

func (b *rangeBlob) Size() int64 { return b.size }

func (b *rangeBlob) Close() error { return nil }

func (b *rangeBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("blobstore: negative offset")
	}
	if off >= b.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	end := min(off+int64(len(p)), b.size)

	rc, err := b.fetch(ctx, off, end-1)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()

	n, err := io.ReadFull(rc, p[:end-off])
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *rangeBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off < 0 || off >= b.size || length <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	return b.fetch(ctx, off, min(off+length, b.size)-1)
}

// NewPipeWriter returns a WritableBlob whose bytes are streamed to upload,
// which runs in its own goroutine. Close waits for upload to return and
// reports its error.
func NewPipeWriter(upload func(r io.Reader) error) WritableBlob {
	pr, pw := io.Pipe()

	w := &pipeWriter{pw: pw, done: make(chan error, 1)}

	go func() {
		err := upload(pr)
		_ = pr.CloseWithError(err)
		w.done <- err
	}()

	return w
}

type pipeWriter struct {
	pw     *io.PipeWriter
	done   chan error
	closed atomic.Bool
}

func (w *pipeWriter) Write(p []byte) (int, error) {
	if w.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	return w.pw.Write(p)
}

func (w *pipeWriter) Sync() error { return nil }

func (w *pipeWriter) Close() error {
	if !w.closed.CompareAndSwap(false, true) {
		return io.ErrClosedPipe
	}
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}
