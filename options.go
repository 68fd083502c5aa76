package vecdb

import (
	"log/slog"

	"github.com/hupe1980/vecdb/codec"
	"github.com/hupe1980/vecdb/index"
	"github.com/hupe1980/vecdb/index/hnsw"
	"github.com/hupe1980/vecdb/snapshot"
)

type options struct {
	codec               codec.Codec
	compression         snapshot.Compression
	metricsCollector    MetricsCollector
	logger              *Logger
	builder             index.Builder
	maxConcurrentBuilds int64
	snapshotIOLimit     int64
}

// Option configures a Database.
type Option func(*options)

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		compression:      snapshot.CompressionNone,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		builder:          hnsw.NewBuilder(),
	}
	for _, fn := range optFns {
		fn(&o)
	}

	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.builder == nil {
		o.builder = hnsw.NewBuilder()
	}

	return o
}

// WithCodec configures the codec used for encoding snapshots.
// Restores always use the codec recorded in the snapshot header.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithSnapshotCompression configures the compression applied to snapshots.
func WithSnapshotCompression(c snapshot.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vecdb.BasicMetricsCollector{}
//	db := vecdb.New(vecdb.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vecdb.NewJSONLogger(slog.LevelInfo)
//	db := vecdb.New(vecdb.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithIndexBuilder sets the index strategy used by BuildIndex.
// The default is an HNSW graph with hnsw.DefaultOptions.
//
//	db := vecdb.New(vecdb.WithIndexBuilder(hnsw.NewBuilder(func(o *hnsw.Options) {
//	    o.M = 32
//	    o.EFSearch = 200
//	})))
func WithIndexBuilder(b index.Builder) Option {
	return func(o *options) {
		o.builder = b
	}
}

// WithMaxConcurrentBuilds bounds the number of index builds running at once
// across all collections. Values below 1 mean 1.
func WithMaxConcurrentBuilds(n int) Option {
	return func(o *options) {
		o.maxConcurrentBuilds = int64(n)
	}
}

// WithSnapshotIOLimit throttles snapshot reads and writes to bytesPerSec.
// Zero disables throttling.
func WithSnapshotIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.snapshotIOLimit = bytesPerSec
	}
}
