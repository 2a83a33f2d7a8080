// Command analyzer builds the stock dashboard from the price and sector
// files: it writes the .xlsx workbook and prints a markdown summary.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"stockdash/internal/analytics"
	"stockdash/internal/config"
	"stockdash/internal/exporter"
	"stockdash/internal/infrastructure"
	"stockdash/internal/report"
	"stockdash/internal/services"
	"stockdash/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("Analyzer failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}

type options struct {
	configFile string
	prices     string
	sectors    string
	workbook   string
	jsonOut    string
	viewsDir   string
	sectorSel  []string
	filterSet  bool
	plain      bool
	quiet      bool
	wordWrap   int
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("analyzer", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to stockdash.yaml or $STOCKDASH_CONFIG)")
	fs.StringVar(&opts.prices, "prices", "", "price CSV (defaults to paths.prices_file)")
	fs.StringVar(&opts.sectors, "sectors", "", "sector mapping CSV (defaults to paths.sectors_file)")
	fs.StringVar(&opts.workbook, "workbook", "", "dashboard workbook (defaults to paths.workbook_file)")
	fs.StringVar(&opts.jsonOut, "json", "", "also write the dashboard as JSON to this file, - for stdout")
	fs.StringVar(&opts.viewsDir, "views-dir", "", "also write one CSV per view into this directory")
	fs.Func("sector", "restrict the dashboard to a sector (repeatable)", func(v string) error {
		opts.filterSet = true
		if v = strings.TrimSpace(v); v != "" {
			opts.sectorSel = append(opts.sectorSel, v)
		}
		return nil
	})
	fs.BoolVar(&opts.plain, "plain", false, "print plain markdown even on a terminal")
	fs.BoolVar(&opts.quiet, "quiet", false, "do not print the summary")
	fs.IntVar(&opts.wordWrap, "wrap", report.DefaultWordWrap, "word wrap width of the styled summary")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// filter returns nil unless at least one -sector flag was given.
func (o *options) filter() *analytics.SectorFilter {
	if !o.filterSet {
		return nil
	}
	return analytics.NewSectorFilter(o.sectorSel...)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.prices != "" {
		cfg.Paths.PricesFile = opts.prices
	}
	if opts.sectors != "" {
		cfg.Paths.SectorsFile = opts.sectors
	}
	if opts.workbook != "" {
		cfg.Paths.WorkbookFile = opts.workbook
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	telemetry, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			infrastructure.WithError(logger, err).Warn("Telemetry shutdown failed")
		}
	}()

	paths, err := cfg.Resolve()
	if err != nil {
		return err
	}
	paths.LogPathResolution(logger)

	if err := validation.NewFileValidator(logger).ValidateOutputFile(paths.WorkbookFile); err != nil {
		return err
	}

	svc := services.NewDashboardService(telemetry, logger)
	d, err := svc.BuildFromFiles(ctx, paths.PricesFile, paths.SectorsFile, opts.filter())
	if err != nil {
		return err
	}

	if err := exporter.NewWorkbookRenderer(logger).SaveAs(paths.WorkbookFile, d); err != nil {
		return err
	}

	if opts.viewsDir != "" {
		written, err := exporter.NewViewExporter(exporter.NewCSVWriter(paths.BaseDir, logger)).ExportViews(d, opts.viewsDir)
		if err != nil {
			return err
		}
		logger.InfoContext(ctx, "View files written", slog.Any("files", written))
	}

	if opts.jsonOut != "" {
		if err := writeJSON(opts.jsonOut, stdout, d); err != nil {
			return err
		}
	}

	if opts.quiet || opts.jsonOut == "-" {
		return nil
	}

	styled := false
	if f, ok := stdout.(*os.File); ok {
		styled = !opts.plain && report.IsTerminal(f)
	}
	return report.Write(stdout, d, report.Options{Styled: styled, WordWrap: opts.wordWrap})
}

func writeJSON(path string, stdout io.Writer, d *analytics.Dashboard) error {
	w := stdout
	if path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create JSON file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to write dashboard JSON: %w", err)
	}
	return nil
}
