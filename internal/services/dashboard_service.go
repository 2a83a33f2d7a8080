package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockdash/internal/analytics"
	"stockdash/internal/dataset"
	apperrors "stockdash/internal/errors"
	"stockdash/internal/infrastructure"
)

// DashboardInputs are the two tables a dashboard is built from. A nil
// frame means the input was not supplied.
type DashboardInputs struct {
	Prices  *dataset.Frame
	Sectors *dataset.Frame
}

// DashboardService runs the presenter pipeline. It keeps no state between
// calls: every call re-runs the whole pipeline.
type DashboardService struct {
	telemetry *infrastructure.Telemetry
	logger    *slog.Logger
}

// NewDashboardService creates a dashboard service
func NewDashboardService(telemetry *infrastructure.Telemetry, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopTelemetry()
	}

	return &DashboardService{
		telemetry: telemetry,
		logger:    infrastructure.WithComponent(logger, "dashboard"),
	}
}

// Build produces every dashboard view. It fails with an InputMissingError
// when an input was not supplied and with a MissingKeyError when an input
// lacks the Symbol column.
func (s *DashboardService) Build(ctx context.Context, in DashboardInputs, filter *analytics.SectorFilter) (d *analytics.Dashboard, err error) {
	start := time.Now()
	ctx = infrastructure.EnsureTraceID(ctx)

	ctx, span := s.telemetry.Tracer.Start(ctx, "dashboard.build", trace.WithAttributes(
		attribute.Bool("filter.present", filter != nil),
	))
	defer func() {
		infrastructure.RecordError(ctx, err)
		span.End()
		s.telemetry.Metrics.RecordRun(ctx, "dashboard", time.Since(start), err)
	}()

	series, report, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}

	d = analytics.Build(series, report, filter)

	s.telemetry.Metrics.RecordRows(ctx, "filtered", d.RowCount)
	for _, view := range d.SkippedViews() {
		s.telemetry.Metrics.RecordSkippedView(ctx, view)
	}
	infrastructure.SetSpanAttributes(ctx, map[string]interface{}{
		"dashboard.symbols":  len(d.Symbols),
		"dashboard.rows":     d.RowCount,
		"dashboard.warnings": len(d.Warnings),
		"filter.applied":     d.Filter.Applied,
	})

	for _, w := range d.Warnings {
		s.logger.WarnContext(ctx, "Dashboard warning",
			slog.String("view", w.View),
			slog.String("message", w.Message))
	}
	s.logger.InfoContext(ctx, "Dashboard built",
		slog.Int("symbols", len(d.Symbols)),
		slog.Int("rows", d.RowCount),
		slog.Bool("filter_applied", d.Filter.Applied),
		slog.Duration("duration", time.Since(start)))

	return d, nil
}

// Sectors returns the distinct sectors a filter can select from.
func (s *DashboardService) Sectors(ctx context.Context, in DashboardInputs) ([]string, error) {
	series, _, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	return analytics.AvailableSectors(series), nil
}

// BuildFromFiles reads both inputs from disk and builds the dashboard.
func (s *DashboardService) BuildFromFiles(ctx context.Context, pricesPath, sectorsPath string, filter *analytics.SectorFilter) (*analytics.Dashboard, error) {
	in, err := ReadInputs(pricesPath, sectorsPath)
	if err != nil {
		return nil, err
	}
	return s.Build(ctx, in, filter)
}

func (s *DashboardService) prepare(ctx context.Context, in DashboardInputs) (*analytics.Series, analytics.ParseReport, error) {
	if err := CheckInputs(in); err != nil {
		return nil, analytics.ParseReport{}, err
	}

	series, report, err := analytics.Prepare(ctx, in.Prices, in.Sectors)
	if err != nil {
		return nil, report, err
	}

	s.telemetry.Metrics.RecordRows(ctx, "parsed", report.Total-report.Dropped())
	s.telemetry.Metrics.RecordDropped(ctx, report.Dropped())
	s.logger.DebugContext(ctx, "Inputs prepared",
		slog.Int("price_rows", in.Prices.Len()),
		slog.Int("parsed_rows", len(series.Rows)),
		slog.Int("dropped_rows", report.Dropped()))

	return series, report, nil
}

// CheckInputs reports every input that was not supplied.
func CheckInputs(in DashboardInputs) error {
	var missing []string
	if in.Prices == nil {
		missing = append(missing, "prices")
	}
	if in.Sectors == nil {
		missing = append(missing, "sectors")
	}
	if len(missing) > 0 {
		return apperrors.NewInputMissingError(missing...)
	}
	return nil
}

// ReadInputs reads both inputs from disk. An empty path counts as an input
// that was not supplied.
func ReadInputs(pricesPath, sectorsPath string) (DashboardInputs, error) {
	var in DashboardInputs
	var missing []string

	if pricesPath == "" {
		missing = append(missing, "prices")
	}
	if sectorsPath == "" {
		missing = append(missing, "sectors")
	}
	if len(missing) > 0 {
		return in, apperrors.NewInputMissingError(missing...)
	}

	var err error
	if in.Prices, err = dataset.ReadCSVFile(pricesPath); err != nil {
		return in, fmt.Errorf("failed to read prices: %w", err)
	}
	if in.Sectors, err = dataset.ReadCSVFile(sectorsPath); err != nil {
		return in, fmt.Errorf("failed to read sectors: %w", err)
	}
	return in, nil
}
