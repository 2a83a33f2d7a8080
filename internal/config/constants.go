package config

import "time"

// Application constants
const (
	AppName    = "stockdash"
	AppVersion = "1.0.0"

	// EnvPrefix is the prefix of every environment variable read by Load.
	EnvPrefix = "STOCKDASH"

	// ConfigFileEnv names a YAML file to merge under the environment.
	ConfigFileEnv = "STOCKDASH_CONFIG"

	// DatabaseURLEnv is consulted when no store DSN is configured.
	DatabaseURLEnv = "DATABASE_URL"

	// Persisted artifacts
	DefaultTableName = "stock_data"
	DefaultStoreDSN  = "stock_data.db"

	// Input and output files (relative to the base directory)
	DefaultPricesFile   = "data/merged_output.csv"
	DefaultSectorsFile  = "data/sector_mapping_updated.csv"
	DefaultExportFile   = "data/converted/merged_output.csv"
	DefaultWorkbookFile = "data/reports/dashboard.xlsx"

	DefaultDataDir    = "data"
	DefaultReportsDir = "data/reports"
	DefaultExportsDir = "data/converted"
	DefaultLogsDir    = "logs"

	// Rate limiting
	DefaultRateLimit = 20 // requests per second per client
	DefaultBurstSize = 40

	// Uploads
	DefaultMaxUploadBytes = 64 << 20

	// Timeouts
	DefaultHTTPTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second

	// Log settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
