package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"stockdash/internal/dataset"
	"stockdash/internal/infrastructure"
	"stockdash/internal/shared/testutil"
)

// MockTableStore is a mock for the store.TableStore interface
type MockTableStore struct {
	mock.Mock
}

func (m *MockTableStore) ReplaceTable(ctx context.Context, table string, f *dataset.Frame) (int64, error) {
	args := m.Called(ctx, table, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTableStore) CountRows(ctx context.Context, table string) (int64, error) {
	args := m.Called(ctx, table)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTableStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockTableStore) Close() error {
	return m.Called().Error(0)
}

func newTestLogger(t *testing.T) (*slog.Logger, *testutil.BufferedSlogHandler) {
	t.Helper()
	return testutil.NewTestLogger(t)
}

// newRecordingTelemetry returns telemetry whose metrics can be collected
// from the returned reader.
func newRecordingTelemetry(t *testing.T) (*infrastructure.Telemetry, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	meter := provider.Meter(infrastructure.InstrumentationName)
	metrics, err := infrastructure.NewPipelineMetrics(meter)
	require.NoError(t, err)

	return &infrastructure.Telemetry{
		Tracer:  tracenoop.NewTracerProvider().Tracer(infrastructure.InstrumentationName),
		Meter:   meter,
		Metrics: metrics,
	}, reader
}

// counterTotal sums every data point of the named int64 counter.
func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}
