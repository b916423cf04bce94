package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructuredLogger(t *testing.T) {
	t.Run("writes JSON records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		logger.Info("dataset loaded",
			slog.String("component", "loader"),
			slog.Int("rows", 48))

		output := buf.String()
		assert.Contains(t, output, `"level":"INFO"`)
		assert.Contains(t, output, `"msg":"dataset loaded"`)
		assert.Contains(t, output, `"component":"loader"`)
		assert.Contains(t, output, `"rows":48`)
		assert.Contains(t, output, `"time":`)
	})

	t.Run("respects log level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelWarn)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warning message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.Contains(t, output, "warning message")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoggerHelpers(t *testing.T) {
	t.Run("LogError", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogError(logger, "failed to fetch dataset", assert.AnError,
			slog.String("source", "http://example.com/customers.csv"))

		output := buf.String()
		assert.Contains(t, output, `"level":"ERROR"`)
		assert.Contains(t, output, `"msg":"failed to fetch dataset"`)
		assert.Contains(t, output, `"error":"assert.AnError general error for testing"`)
		assert.Contains(t, output, `"source":"http://example.com/customers.csv"`)
	})

	t.Run("LogError ignores nil logger and nil error", func(t *testing.T) {
		var buf bytes.Buffer
		LogError(nil, "nothing", assert.AnError)
		LogError(NewStructuredLogger(&buf, slog.LevelInfo), "nothing", nil)
		assert.Empty(t, buf.String())
	})

	t.Run("LogOperation drops zero duration", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogOperation(logger, "snapshot_imported",
			slog.String("source", "customers.csv"),
			slog.Int("rows", 150),
			slog.Duration("duration", 0))

		output := buf.String()
		assert.Contains(t, output, `"msg":"snapshot_imported"`)
		assert.Contains(t, output, `"rows":150`)
		assert.NotContains(t, output, `"duration"`)
	})

	t.Run("LogOperation keeps non-zero duration", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogOperation(logger, "dataset_loaded", slog.Duration("duration", time.Second))
		assert.Contains(t, buf.String(), `"duration":1000000000`)
	})

	t.Run("LogHTTPRequest", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogHTTPRequest(logger, "GET", "/api/tabs/profile", 200, 1.5,
			slog.String("user_agent", "test-client"))

		output := buf.String()
		assert.Contains(t, output, `"level":"INFO"`)
		assert.Contains(t, output, `"msg":"http_request"`)
		assert.Contains(t, output, `"method":"GET"`)
		assert.Contains(t, output, `"path":"/api/tabs/profile"`)
		assert.Contains(t, output, `"status":200`)
		assert.Contains(t, output, `"duration_ms":1.5`)
		assert.Contains(t, output, `"user_agent":"test-client"`)
	})

	t.Run("LogHTTPRequest logs server errors at error level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		LogHTTPRequest(logger, "GET", "/api/summary.json", 500, 3)
		assert.Contains(t, buf.String(), `"level":"ERROR"`)
	})
}

func TestContextLogger(t *testing.T) {
	t.Run("stores and retrieves logger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		ctx := WithLogger(context.Background(), logger)
		retrieved := FromContext(ctx)
		require.NotNil(t, retrieved)

		retrieved.Info("from context")
		assert.Contains(t, buf.String(), "from context")
	})

	t.Run("tags request id", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		ctx := WithRequestID(context.Background(), logger, "req-123")
		FromContext(ctx).Info("handled")
		assert.Contains(t, buf.String(), `"request_id":"req-123"`)
	})

	t.Run("falls back to default logger", func(t *testing.T) {
		logger := FromContext(context.Background())
		require.NotNil(t, logger)
		assert.Same(t, slog.Default(), logger)
	})
}
