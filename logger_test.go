package vecdb

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.LogCreate(ctx, "docs", 3, nil)
	assert.Contains(t, buf.String(), `"msg":"collection created"`)
	assert.Contains(t, buf.String(), `"collection":"docs"`)
	assert.Contains(t, buf.String(), `"dimension":3`)

	buf.Reset()
	logger.LogQuery(ctx, "docs", 5, 2, nil)
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	assert.Contains(t, buf.String(), `"results":2`)

	buf.Reset()
	logger.LogBuild(ctx, "docs", 10, time.Millisecond, errors.New("boom"))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"error":"boom"`)

	buf.Reset()
	logger.WithCollection("docs").Info("hello")
	assert.Contains(t, buf.String(), `"collection":"docs"`)
}

func TestDatabase_Logging(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	db := New(WithLogger(logger))
	require.NoError(t, db.CreateCollection(ctx, "docs", 2))
	require.Error(t, db.Insert(ctx, "docs", [][]float32{{1}}, []string{"x"}, "s"))

	out := buf.String()
	assert.Contains(t, out, `"msg":"collection created"`)
	assert.Contains(t, out, `"msg":"insert failed"`)
}

func TestNoopLogger(t *testing.T) {
	logger := NoopLogger()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
