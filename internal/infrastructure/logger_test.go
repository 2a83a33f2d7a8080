package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/config"
)

func TestInitializeLoggerWritesJSONFile(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", slog.String("key", "value"))
	logger.Debug("hidden")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLoggerRunsOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info", Output: "console"})
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestTraceHandlerInjectsTraceID(t *testing.T) {
	tests := []struct {
		name    string
		ctx     func() context.Context
		wantID  string
		present bool
	}{
		{
			name:    "explicit trace id",
			ctx:     func() context.Context { return WithTraceID(context.Background(), "abc-123") },
			wantID:  "abc-123",
			present: true,
		},
		{
			name: "chi request id",
			ctx: func() context.Context {
				return context.WithValue(context.Background(), middleware.RequestIDKey, "host/000001")
			},
			wantID:  "host/000001",
			present: true,
		},
		{
			name:    "no id",
			ctx:     context.Background,
			present: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(&buf, nil)

			logger.InfoContext(tt.ctx(), "hello")

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			if tt.present {
				assert.Equal(t, tt.wantID, entry["trace_id"])
			} else {
				assert.NotContains(t, entry, "trace_id")
			}
		})
	}
}

func TestTraceHandlerKeepsBoundAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := WithComponent(NewLoggerWithWriter(&buf, nil), "loader")

	logger.InfoContext(WithTraceID(context.Background(), "t1"), "stage")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loader", entry["component"])
	assert.Equal(t, "t1", entry["trace_id"])
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}

func TestEnsureTraceID(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, id, GetTraceID(EnsureTraceID(ctx)))
	assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, nil)

	assert.Same(t, logger, WithError(logger, nil))

	WithError(logger, os.ErrNotExist).Info("x")
	assert.Contains(t, buf.String(), `"error":"file does not exist"`)
}
