package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	require.Same(t, slog.Default(), FromContext(context.Background()))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := With(WithLogger(context.Background(), logger), "dir", "pkg/conv")

	FromContext(ctx).Info("hello")
	require.Contains(t, buf.String(), "dir=pkg/conv")
	require.Contains(t, buf.String(), "msg=hello")
}

func TestDiscard(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	FromContext(Discard(ctx)).Error("dropped")

	require.Empty(t, buf.String())
	require.False(t, FromContext(Discard(ctx)).Enabled(context.Background(), slog.LevelError))
}
