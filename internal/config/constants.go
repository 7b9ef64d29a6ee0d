package config

import (
	"time"

	"paygcli/pkg/contracts"
)

// Application constants
const (
	AppName    = "PAYG Extract"
	AppVersion = contracts.Version

	// EnvPrefix namespaces every environment variable, e.g. PAYG_SERVER_PORT
	EnvPrefix = "PAYG"
	// ConfigFileEnv points at an explicit YAML config file
	ConfigFileEnv = "PAYG_CONFIG_FILE"

	// Pipeline defaults
	DefaultSkipRows       = 7
	DefaultSnapshotTime   = "20:00:00"
	DefaultSheetName      = "Sheet1"
	DefaultMaxUploadBytes = 32 << 20
	DefaultMaxFiles       = 8
	DelimiterAuto         = "auto"
	SnapshotTimeLayout    = "15:04:05"

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	// Timeouts
	DefaultRequestTimeout = 2 * time.Minute

	// Log Settings
	DefaultLogLevel = "info"
	DefaultLogFile  = "logs/payg.log"

	// API Endpoints
	APIBasePath     = "/api"
	MetricsEndpoint = "/metrics"
)
