package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_FiltersBelowLevelAndTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Info("dropped")
	logger.Warn("kept", "email", "ada@example.com")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "launchlist", record["service"])
	assert.Equal(t, "ada@example.com", record["email"])
}

func TestWithCorrelationID_UsesContextValue(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo)

	ctx := ContextWithCorrelationID(context.Background(), "req-123")
	logger.WithCorrelationID(ctx).Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record))
	assert.Equal(t, "req-123", record["correlation_id"])
}

func TestGetOrGenerateCorrelationID_GeneratesWhenMissing(t *testing.T) {
	first := GetOrGenerateCorrelationID(context.Background())
	second := GetOrGenerateCorrelationID(context.Background())

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestGetLoggerInstanceFromContext(t *testing.T) {
	var buf bytes.Buffer
	injected := NewLogger(&buf, slog.LevelInfo)
	fallback := NewLogger(&buf, slog.LevelInfo)

	ctx := ContextWithLogger(context.Background(), injected)
	assert.Same(t, injected, GetLoggerInstanceFromContext(ctx, fallback))

	assert.Same(t, fallback, GetLoggerInstanceFromContext(nil, fallback))

	derived := GetLoggerInstanceFromContext(context.Background(), fallback)
	assert.NotSame(t, fallback, derived)
}
