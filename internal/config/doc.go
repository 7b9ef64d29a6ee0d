// Package config provides configuration loading and validation for the
// extraction CLI and HTTP server.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later sources
// overriding earlier ones:
//
//	1. Default values (Default)
//	2. A YAML file: $PAYG_CONFIG_FILE, payg.yaml, config.yaml or configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables follow the pattern PAYG_<SECTION>_<FIELD>:
//
//	PAYG_SERVER_PORT=8080
//	PAYG_LOGGING_LEVEL=debug
//	PAYG_PIPELINE_SNAPSHOT_TIME=20:00:00
//	PAYG_PIPELINE_SKIP_ROWS=7
//	PAYG_PIPELINE_DELIMITER=auto
//	PAYG_TELEMETRY_TRACE_EXPORTER=stdout
//
// The binaries load a .env file from the working directory before calling
// Load, so the same variables can be kept there during development.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	clock, _ := cfg.Pipeline.SnapshotClock()
package config
