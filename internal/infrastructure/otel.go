package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"stockdash/internal/config"
)

const (
	// InstrumentationName names the tracer and meter of every component
	InstrumentationName = "stockdash"
)

// Telemetry holds the OpenTelemetry providers and the pipeline metrics
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Metrics        *PipelineMetrics

	// MetricsHandler serves the prometheus exposition of the meter. It is
	// nil when metrics are disabled.
	MetricsHandler http.Handler

	logger *slog.Logger
}

// InitializeOTel sets up tracing and metrics according to cfg. Disabled
// signals fall back to no-op providers so callers never check for nil.
func InitializeOTel(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	logger.InfoContext(ctx, "Initializing OpenTelemetry",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics))

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
		attribute.String("service.instance.id", generateInstanceID()),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t := &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:  metricnoop.NewMeterProvider().Meter(InstrumentationName),
		logger: logger,
	}

	if cfg.EnableTracing {
		if err := t.initializeTracing(cfg, res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := t.initializeMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.Metrics, err = NewPipelineMetrics(t.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	return t, nil
}

// NoopTelemetry returns telemetry that records nothing. Used by tests and
// by callers that do not initialize OpenTelemetry.
func NoopTelemetry() *Telemetry {
	meter := metricnoop.NewMeterProvider().Meter(InstrumentationName)
	metrics, _ := NewPipelineMetrics(meter)
	return &Telemetry{
		Tracer:  tracenoop.NewTracerProvider().Tracer(InstrumentationName),
		Meter:   meter,
		Metrics: metrics,
		logger:  GetLogger(),
	}
}

// initializeTracing exports spans to stderr; stdout carries CLI output.
func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(os.Stderr),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.TraceSampleRate))),
	)

	t.TracerProvider = tp
	t.Tracer = tp.Tracer(InstrumentationName, trace.WithInstrumentationVersion(config.AppVersion))
	otel.SetTracerProvider(tp)

	t.logger.Info("Tracing initialized", slog.Float64("sample_ratio", cfg.TraceSampleRate))
	return nil
}

// initializeMetrics uses a private prometheus registry so repeated
// initialization never collides on the global one.
func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	registry := promclient.NewRegistry()

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	t.MeterProvider = mp
	t.Meter = mp.Meter(InstrumentationName, metric.WithInstrumentationVersion(config.AppVersion))
	t.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	otel.SetMeterProvider(mp)

	t.logger.Info("Metrics initialized", slog.String("exporter", "prometheus"))
	return nil
}

// Shutdown flushes and stops the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("opentelemetry shutdown errors: %v", errs)
	}

	t.logger.InfoContext(ctx, "OpenTelemetry shutdown complete")
	return nil
}

// PipelineMetrics holds the application metrics
type PipelineMetrics struct {
	RunsTotal     metric.Int64Counter
	RunDuration   metric.Float64Histogram
	RowsProcessed metric.Int64Counter
	RowsDropped   metric.Int64Counter
	ViewsSkipped  metric.Int64Counter
	HTTPRequests  metric.Int64Counter
	HTTPDuration  metric.Float64Histogram
	HTTPActive    metric.Int64UpDownCounter
}

// NewPipelineMetrics creates the application metrics on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Total number of pipeline runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"pipeline_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsProcessed, err := meter.Int64Counter(
		"pipeline_rows_processed_total",
		metric.WithDescription("Rows handled per pipeline stage"),
	)
	if err != nil {
		return nil, err
	}

	rowsDropped, err := meter.Int64Counter(
		"pipeline_rows_dropped_total",
		metric.WithDescription("Rows dropped because of malformed dates or prices"),
	)
	if err != nil {
		return nil, err
	}

	viewsSkipped, err := meter.Int64Counter(
		"dashboard_views_skipped_total",
		metric.WithDescription("Dashboard views skipped with a warning"),
	)
	if err != nil {
		return nil, err
	}

	httpRequests, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActive, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RunsTotal:     runsTotal,
		RunDuration:   runDuration,
		RowsProcessed: rowsProcessed,
		RowsDropped:   rowsDropped,
		ViewsSkipped:  viewsSkipped,
		HTTPRequests:  httpRequests,
		HTTPDuration:  httpDuration,
		HTTPActive:    httpActive,
	}, nil
}

// RecordRun records one pipeline execution
func (m *PipelineMetrics) RecordRun(ctx context.Context, pipeline string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("status", status),
	)

	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRows records the number of rows leaving a stage
func (m *PipelineMetrics) RecordRows(ctx context.Context, stage string, n int) {
	if m == nil {
		return
	}
	m.RowsProcessed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("stage", stage)))
}

// RecordDropped records rows dropped during parsing
func (m *PipelineMetrics) RecordDropped(ctx context.Context, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsDropped.Add(ctx, int64(n))
}

// RecordSkippedView records a view that was skipped with a warning
func (m *PipelineMetrics) RecordSkippedView(ctx context.Context, view string) {
	if m == nil {
		return
	}
	m.ViewsSkipped.Add(ctx, 1, metric.WithAttributes(attribute.String("view", view)))
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// TraceIDFromContext extracts the span trace ID from context
func TraceIDFromContext(ctx context.Context) string {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}
	return ""
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() || err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanAttributes sets attributes on the current span
func SetSpanAttributes(ctx context.Context, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, val))
		case int:
			span.SetAttributes(attribute.Int(k, val))
		case int64:
			span.SetAttributes(attribute.Int64(k, val))
		case float64:
			span.SetAttributes(attribute.Float64(k, val))
		case bool:
			span.SetAttributes(attribute.Bool(k, val))
		case []string:
			span.SetAttributes(attribute.StringSlice(k, val))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
}
