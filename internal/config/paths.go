package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved absolute locations used by the binaries
type Paths struct {
	BaseDir string
	LogsDir string

	// Inputs
	PricesFile  string
	SectorsFile string

	// Outputs
	ExportFile   string
	WorkbookFile string
}

// GetPaths resolves every configured location against the base directory.
// An empty base directory means the current working directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:      base,
		LogsDir:      resolve(cfg.LogsDir, DefaultLogsDir),
		PricesFile:   resolve(cfg.PricesFile, DefaultPricesFile),
		SectorsFile:  resolve(cfg.SectorsFile, DefaultSectorsFile),
		ExportFile:   resolve(cfg.ExportFile, DefaultExportFile),
		WorkbookFile: resolve(cfg.WorkbookFile, DefaultWorkbookFile),
	}, nil
}

// EnsureDirectories creates the parent directories of every output location
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.LogsDir,
		filepath.Dir(p.ExportFile),
		filepath.Dir(p.WorkbookFile),
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// LogPathResolution logs the resolved locations
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.String("base", p.BaseDir),
		slog.Group("inputs",
			slog.String("prices", p.PricesFile),
			slog.String("sectors", p.SectorsFile),
		),
		slog.Group("outputs",
			slog.String("export", p.ExportFile),
			slog.String("workbook", p.WorkbookFile),
			slog.String("logs", p.LogsDir),
		))
}
