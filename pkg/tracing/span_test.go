package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/text-analysis-engine/pkg/logger"
)

func TestSpanTree(t *testing.T) {
	ctx, root := Start(logger.WithRequestID(context.Background(), "req-1"), "word_cloud")
	childCtx, child := Start(ctx, "count")
	child.SetAttr("tokens", 3)
	child.End()
	root.End()

	assert.Same(t, child, FromContext(childCtx))
	require.Len(t, root.Children, 1)
	assert.Equal(t, "req-1", child.TraceID)
	assert.Equal(t, 3, child.Attrs["tokens"])
	assert.Nil(t, FromContext(context.Background()))
}

func TestRootEndLogsAtDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx, root := Start(logger.WithRequestID(context.Background(), "req-2"), "word_cloud")
	_, child := Start(ctx, "cache")
	child.End()
	assert.Empty(t, buf.String())

	root.End()
	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "msg=span"))
	assert.Contains(t, out, "span=cache")
	assert.Contains(t, out, "trace_id=req-2")
}
