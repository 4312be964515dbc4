package ctxlog

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestWith_CarriesAttributes(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), base)

	// --- Act ---
	ctx, logger := With(ctx, "asset", "hero.png")
	FromContext(ctx).Info("hello")

	// --- Assert ---
	assert.Same(t, logger, FromContext(ctx))
	assert.Contains(t, buf.String(), "asset=hero.png")
	assert.Contains(t, buf.String(), "msg=hello")
}
