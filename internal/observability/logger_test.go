package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, "info", "json")

	slog.Info("test message", "key", "value")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
}

func TestInitLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, "info", "text")

	slog.Info("test message")

	assert.Contains(t, buf.String(), "msg=\"test message\"")
}

func TestInitLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, "warn", "text")

	slog.Info("dropped")
	slog.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"unknown", "unknown", slog.LevelInfo},
		{"empty", "", slog.LevelInfo},
		{"uppercase", "DEBUG", slog.LevelInfo}, // Case sensitive, defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, "info", "text")

	t.Run("no_values", func(t *testing.T) {
		buf.Reset()
		FromContext(context.Background()).Info("plain")
		assert.NotContains(t, buf.String(), "request_id")
	})

	t.Run("request_and_employee", func(t *testing.T) {
		buf.Reset()
		ctx := WithRequestID(context.Background(), "req-123")
		ctx = WithEmployeeID(ctx, 7)

		FromContext(ctx).Info("enriched")
		out := buf.String()
		assert.True(t, strings.Contains(out, "request_id=req-123"), out)
		assert.True(t, strings.Contains(out, "employee_id=7"), out)
	})

	t.Run("empty_values_are_ignored", func(t *testing.T) {
		buf.Reset()
		ctx := WithRequestID(context.Background(), "")
		ctx = WithEmployeeID(ctx, 0)

		FromContext(ctx).Info("bare")
		assert.NotContains(t, buf.String(), "request_id")
		assert.NotContains(t, buf.String(), "employee_id")
	})
}

func TestFromContext_Fallback(t *testing.T) {
	savedLogger := logger
	defer func() { logger = savedLogger }()

	logger = nil
	assert.NotNil(t, FromContext(context.Background()))
}
