// Command dashboard serves the interactive stock dashboard over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"stockdash/internal/app"
	"stockdash/internal/config"
	"stockdash/internal/infrastructure"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("Dashboard server failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}
}

type options struct {
	configFile string
	host       string
	port       int
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.StringVar(&opts.configFile, "config", "", "YAML config file (defaults to stockdash.yaml or $STOCKDASH_CONFIG)")
	fs.StringVar(&opts.host, "host", "", "listen host (defaults to server.host)")
	fs.IntVar(&opts.port, "port", 0, "listen port (defaults to server.port)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *options) apply(cfg *config.Config) {
	if o.host != "" {
		cfg.Server.Host = o.host
	}
	if o.port != 0 {
		cfg.Server.Port = o.port
	}
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	var cfg *config.Config
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
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

	application, err := app.NewApplication(cfg, logger, telemetry, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run(ctx)
}
