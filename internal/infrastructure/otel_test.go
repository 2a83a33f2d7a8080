package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockdash/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestInitializeOTelMetrics(t *testing.T) {
	tel, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:   "stockdash-test",
		Environment:   "test",
		EnableMetrics: true,
	}, discardLogger())
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	require.NotNil(t, tel.MeterProvider)
	require.NotNil(t, tel.MetricsHandler)
	assert.Nil(t, tel.TracerProvider)

	ctx := context.Background()
	tel.Metrics.RecordRun(ctx, "loader", 150*time.Millisecond, nil)
	tel.Metrics.RecordRun(ctx, "loader", time.Second, errors.New("x"))
	tel.Metrics.RecordRows(ctx, "merge", 9)
	tel.Metrics.RecordDropped(ctx, 2)
	tel.Metrics.RecordSkippedView(ctx, "correlation")

	rec := httptest.NewRecorder()
	tel.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "pipeline_runs_total")
	assert.Contains(t, body, `status="failure"`)
	assert.Contains(t, body, "pipeline_rows_processed_total")
	assert.Contains(t, body, "dashboard_views_skipped_total")
}

func TestInitializeOTelTwice(t *testing.T) {
	cfg := config.Default().Telemetry
	for i := 0; i < 2; i++ {
		tel, err := InitializeOTel(cfg, discardLogger())
		require.NoError(t, err)
		require.NoError(t, tel.Shutdown(context.Background()))
	}
}

func TestInitializeOTelTracing(t *testing.T) {
	tel, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:     "stockdash-test",
		EnableTracing:   true,
		TraceSampleRate: 1,
	}, discardLogger())
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	require.NotNil(t, tel.TracerProvider)
	assert.Nil(t, tel.MetricsHandler)

	ctx, span := tel.Tracer.Start(context.Background(), "analyze")
	defer span.End()

	assert.Len(t, TraceIDFromContext(ctx), 32)

	SetSpanAttributes(ctx, map[string]interface{}{"rows": 3, "sectors": []string{"Banking"}})
	RecordError(ctx, errors.New("boom"))
}

func TestNoopTelemetry(t *testing.T) {
	tel := NoopTelemetry()
	require.NotNil(t, tel.Metrics)

	ctx, span := tel.Tracer.Start(context.Background(), "noop")
	defer span.End()

	assert.Empty(t, TraceIDFromContext(ctx))
	tel.Metrics.RecordRun(ctx, "dashboard", time.Millisecond, nil)
	assert.NoError(t, tel.Shutdown(ctx))

	var nilMetrics *PipelineMetrics
	nilMetrics.RecordRows(ctx, "merge", 1)
}
