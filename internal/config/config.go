package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Store     StoreConfig     `yaml:"store" envconfig:"STORE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// Addr returns the listen address of the server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains the input and output locations
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	PricesFile   string `yaml:"prices_file" envconfig:"PRICES_FILE"`
	SectorsFile  string `yaml:"sectors_file" envconfig:"SECTORS_FILE"`
	ExportFile   string `yaml:"export_file" envconfig:"EXPORT_FILE"`
	WorkbookFile string `yaml:"workbook_file" envconfig:"WORKBOOK_FILE"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// StoreConfig selects the relational sink for the merged table
type StoreConfig struct {
	DSN   string `yaml:"dsn" envconfig:"DSN"`
	Table string `yaml:"table" envconfig:"TABLE"`
}

// TelemetryConfig contains OpenTelemetry configuration
type TelemetryConfig struct {
	ServiceName     string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment     string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing   bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics   bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	TraceSampleRate float64 `yaml:"trace_sample_rate" envconfig:"TRACE_SAMPLE_RATE"`
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment. Environment variables take precedence over the file.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML file. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Unset variables leave the file and default values untouched.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if cfg.Store.DSN == "" {
		cfg.Store.DSN = os.Getenv(DatabaseURLEnv)
	}
	if cfg.Store.DSN == "" {
		cfg.Store.DSN = DefaultStoreDSN
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile unmarshals a YAML file over cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Resolve returns the absolute locations described by the paths section.
func (c *Config) Resolve() (*Paths, error) {
	return GetPaths(c.Paths)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive rps and burst")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Logging.Level)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %q", c.Logging.Output)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("log file path required for output %q", c.Logging.Output)
	}

	// Only JSON logs are produced.
	c.Logging.Format = DefaultLogFormat

	if c.Store.Table == "" {
		return fmt.Errorf("store table name must not be empty")
	}

	if c.Telemetry.TraceSampleRate < 0 || c.Telemetry.TraceSampleRate > 1 {
		return fmt.Errorf("trace sample rate must be within [0,1]: %v", c.Telemetry.TraceSampleRate)
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}

	locations := []string{
		"stockdash.yaml",
		"configs/stockdash.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     DefaultHTTPTimeout,
			WriteTimeout:    DefaultHTTPTimeout,
			IdleTimeout:     120 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			MaxUploadBytes:  DefaultMaxUploadBytes,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "console",
			FilePath: "logs/stockdash.log",
		},
		Paths: PathsConfig{
			PricesFile:   DefaultPricesFile,
			SectorsFile:  DefaultSectorsFile,
			ExportFile:   DefaultExportFile,
			WorkbookFile: DefaultWorkbookFile,
			LogsDir:      DefaultLogsDir,
		},
		Store: StoreConfig{
			Table: DefaultTableName,
		},
		Telemetry: TelemetryConfig{
			ServiceName:     AppName,
			Environment:     "development",
			EnableTracing:   false,
			EnableMetrics:   true,
			TraceSampleRate: 1.0,
		},
	}
}
