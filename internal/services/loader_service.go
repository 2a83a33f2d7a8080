package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"stockdash/internal/dataset"
	"stockdash/internal/exporter"
	"stockdash/internal/infrastructure"
	"stockdash/internal/store"
	"stockdash/internal/validation"
)

// LoadRequest names the inputs and outputs of one loader run
type LoadRequest struct {
	PricesPath  string `validate:"required"`
	SectorsPath string `validate:"required"`
	ExportPath  string `validate:"required"`
	Table       string `validate:"required,max=63"`
}

// LoadResult summarizes a completed loader run
type LoadResult struct {
	PriceRows  int           `json:"price_rows"`
	SectorRows int           `json:"sector_rows"`
	MergedRows int           `json:"merged_rows"`
	Columns    []string      `json:"columns"`
	StoredRows int64         `json:"stored_rows"`
	Table      string        `json:"table"`
	ExportPath string        `json:"export_path"`
	Duration   time.Duration `json:"duration"`
}

// LoaderService reads the price and sector files, merges them and
// persists the merged table to the store and the flat export.
type LoaderService struct {
	store     store.TableStore
	csv       *exporter.CSVWriter
	files     *validation.FileValidator
	telemetry *infrastructure.Telemetry
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewLoaderService creates a loader service with injected dependencies
func NewLoaderService(st store.TableStore, csv *exporter.CSVWriter, telemetry *infrastructure.Telemetry, logger *slog.Logger) *LoaderService {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = infrastructure.NoopTelemetry()
	}

	logger = infrastructure.WithComponent(logger, "loader")

	return &LoaderService{
		store:     st,
		csv:       csv,
		files:     validation.NewFileValidator(logger),
		telemetry: telemetry,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Run executes the loader. A missing join key fails before anything is
// written.
func (s *LoaderService) Run(ctx context.Context, req LoadRequest) (result *LoadResult, err error) {
	start := time.Now()
	ctx = infrastructure.EnsureTraceID(ctx)

	ctx, span := s.telemetry.Tracer.Start(ctx, "loader.run", trace.WithAttributes(
		attribute.String("prices.path", req.PricesPath),
		attribute.String("sectors.path", req.SectorsPath),
		attribute.String("store.table", req.Table),
	))
	defer func() {
		infrastructure.RecordError(ctx, err)
		span.End()
		s.telemetry.Metrics.RecordRun(ctx, "loader", time.Since(start), err)
	}()

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid load request: %w", err)
	}
	for _, path := range []string{req.PricesPath, req.SectorsPath} {
		if err := s.files.ValidateCSVFile(path); err != nil {
			return nil, err
		}
	}
	if err := s.files.ValidateOutputFile(req.ExportPath); err != nil {
		return nil, err
	}

	prices, err := dataset.ReadCSVFile(req.PricesPath)
	if err != nil {
		return nil, err
	}
	sectors, err := dataset.ReadCSVFile(req.SectorsPath)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Inputs read",
		slog.Int("price_rows", prices.Len()),
		slog.Int("sector_rows", sectors.Len()),
		slog.Any("price_columns", prices.Columns),
		slog.Any("sector_columns", sectors.Columns))
	s.telemetry.Metrics.RecordRows(ctx, "read", prices.Len())

	merged, err := dataset.MergeSectors(prices, sectors)
	if err != nil {
		s.logger.ErrorContext(ctx, "Merge failed", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, "Inputs merged",
		slog.Int("merged_rows", merged.Len()),
		slog.Any("columns", merged.Columns))
	s.telemetry.Metrics.RecordRows(ctx, "merged", merged.Len())

	stored, err := s.store.ReplaceTable(ctx, req.Table, merged)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Table stored",
		slog.String("table", req.Table),
		slog.Int64("rows", stored))

	if err := s.csv.WriteFrame(req.ExportPath, merged); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}

	result = &LoadResult{
		PriceRows:  prices.Len(),
		SectorRows: sectors.Len(),
		MergedRows: merged.Len(),
		Columns:    merged.Columns,
		StoredRows: stored,
		Table:      req.Table,
		ExportPath: req.ExportPath,
		Duration:   time.Since(start),
	}

	s.logger.InfoContext(ctx, "Load completed",
		slog.Int("merged_rows", result.MergedRows),
		slog.String("export_path", result.ExportPath),
		slog.Duration("duration", result.Duration))

	return result, nil
}
