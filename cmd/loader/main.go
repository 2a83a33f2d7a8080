// Command loader merges the price and sector files, replaces the stock_data
// table in the configured store and writes the flat CSV export.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockdash/internal/config"
	"stockdash/internal/exporter"
	"stockdash/internal/infrastructure"
	"stockdash/internal/services"
	"stockdash/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("Loader failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}

type options struct {
	configFile string
	prices     string
	sectors    string
	export     string
	dsn        string
	table      string
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("loader", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to stockdash.yaml or $STOCKDASH_CONFIG)")
	fs.StringVar(&opts.prices, "prices", "", "price CSV (defaults to paths.prices_file)")
	fs.StringVar(&opts.sectors, "sectors", "", "sector mapping CSV (defaults to paths.sectors_file)")
	fs.StringVar(&opts.export, "export", "", "flat CSV export (defaults to paths.export_file)")
	fs.StringVar(&opts.dsn, "dsn", "", "store DSN: postgres:// URL or SQLite file (defaults to store.dsn)")
	fs.StringVar(&opts.table, "table", "", "destination table (defaults to store.table)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// apply overrides the loaded configuration with the flags that were set.
func (o *options) apply(cfg *config.Config) {
	if o.prices != "" {
		cfg.Paths.PricesFile = o.prices
	}
	if o.sectors != "" {
		cfg.Paths.SectorsFile = o.sectors
	}
	if o.export != "" {
		cfg.Paths.ExportFile = o.export
	}
	if o.dsn != "" {
		cfg.Store.DSN = o.dsn
	}
	if o.table != "" {
		cfg.Store.Table = o.table
	}
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
	opts.apply(cfg)

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
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	paths.LogPathResolution(logger)
	logger.InfoContext(ctx, "Starting loader",
		slog.String("store", store.Kind(cfg.Store.DSN)),
		slog.String("table", cfg.Store.Table))

	st, err := store.Open(ctx, cfg.Store.DSN, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := services.NewLoaderService(st, exporter.NewCSVWriter(paths.BaseDir, logger), telemetry, logger)
	result, err := svc.Run(ctx, services.LoadRequest{
		PricesPath:  paths.PricesFile,
		SectorsPath: paths.SectorsFile,
		ExportPath:  paths.ExportFile,
		Table:       cfg.Store.Table,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Loaded %d rows (%d columns) into %s; exported to %s\n",
		result.StoredRows, len(result.Columns), result.Table, result.ExportPath)
	return nil
}
