// Package resource bounds the expensive work a Database can run at once.
package resource

import (
	"context"
	"io"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentBuilds is the maximum number of index builds running at once.
	// If 0, defaults to 1.
	MaxConcurrentBuilds int64

	// IOLimitBytesPerSec is the maximum snapshot throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages build slots and snapshot IO throughput.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	buildSem  *semaphore.Weighted
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentBuilds <= 0 {
		cfg.MaxConcurrentBuilds = 1
	}

	c := &Controller{
		cfg:      cfg,
		buildSem: semaphore.NewWeighted(cfg.MaxConcurrentBuilds),
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// MaxConcurrentBuilds returns the configured build parallelism.
func (c *Controller) MaxConcurrentBuilds() int {
	if c == nil {
		return 1
	}
	return int(c.cfg.MaxConcurrentBuilds)
}

// AcquireBuild reserves a build slot, blocking until one is free or ctx is canceled.
func (c *Controller) AcquireBuild(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.buildSem.Acquire(ctx, 1)
}

// ReleaseBuild releases a build slot.
func (c *Controller) ReleaseBuild() {
	if c == nil {
		return
	}
	c.buildSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}

	// WaitN rejects requests larger than the burst, so feed it in chunks.
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// Writer wraps w so every Write is throttled by the IO limit.
func (c *Controller) Writer(ctx context.Context, w io.Writer) io.Writer {
	if c == nil || c.ioLimiter == nil {
		return w
	}
	return &limitedWriter{ctx: ctx, c: c, w: w}
}

// Reader wraps r so every Read is throttled by the IO limit.
func (c *Controller) Reader(ctx context.Context, r io.Reader) io.Reader {
	if c == nil || c.ioLimiter == nil {
		return r
	}
	return &limitedReader{ctx: ctx, c: c, r: r}
}

type limitedWriter struct {
	ctx context.Context
	c   *Controller
	w   io.Writer
}

func (l *limitedWriter) Write(p []byte) (int, error) {
	if err := l.c.AcquireIO(l.ctx, len(p)); err != nil {
		return 0, err
	}
	return l.w.Write(p)
}

type limitedReader struct {
	ctx context.Context
	c   *Controller
	r   io.Reader
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	if n > 0 {
		if werr := l.c.AcquireIO(l.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
