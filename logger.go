package vecdb

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with vecdb-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithCollection adds a collection field to the logger.
func (l *Logger) WithCollection(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("collection", name),
	}
}

// LogCreate logs a create collection operation.
func (l *Logger) LogCreate(ctx context.Context, collection string, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "create collection failed",
			"collection", collection,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "collection created",
			"collection", collection,
			"dimension", dimension,
		)
	}
}

// LogDelete logs a delete collection operation.
func (l *Logger) LogDelete(ctx context.Context, collection string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "delete collection failed",
			"collection", collection,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "collection deleted",
			"collection", collection,
		)
	}
}

// LogAppend logs an insert batch.
func (l *Logger) LogAppend(ctx context.Context, collection string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"collection", collection,
			"count", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "insert completed",
			"collection", collection,
			"count", count,
		)
	}
}

// LogBuild logs an index build.
func (l *Logger) LogBuild(ctx context.Context, collection string, points int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"collection", collection,
			"points", points,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index built",
			"collection", collection,
			"points", points,
			"duration", duration,
		)
	}
}

// LogQuery logs a query operation.
func (l *Logger) LogQuery(ctx context.Context, collection string, k, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"collection", collection,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"collection", collection,
			"k", k,
			"results", results,
		)
	}
}

// LogSnapshot logs a snapshot operation.
// target names the destination (a blob name, or empty for a plain writer).
func (l *Logger) LogSnapshot(ctx context.Context, target string, collections int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"target", target,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"target", target,
			"count", collections,
			"duration", duration,
		)
	}
}

// LogRestore logs a restore operation.
func (l *Logger) LogRestore(ctx context.Context, source string, collections int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "restore failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "restore completed",
			"source", source,
			"count", collections,
			"duration", duration,
		)
	}
}
