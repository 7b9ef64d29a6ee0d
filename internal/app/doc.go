// Package app provides application initialization and lifecycle management
// for the extraction server. It wires configuration, logging, telemetry,
// services and HTTP handlers together at startup.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, PAYG_CONFIG_FILE and PAYG_* variables
//	2. Initialize logging and OpenTelemetry
//	3. Create business metrics and services
//	4. Set up middleware and routes
//	5. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// the configured shutdown timeout and flushes telemetry.
//
// # Error Handling
//
// Initialization errors are returned to the caller. The package never calls
// os.Exit, so main controls the exit code.
package app
