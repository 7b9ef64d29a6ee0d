// Package services implements the run boundary between the outer surfaces
// (the paygextract CLI and the HTTP API) and the extraction pipeline.
//
// # ExtractionService
//
// One call to Extract is one run:
//
//	1. Uploads are validated (extension, lock files, size) and decoded in
//	   parallel with errgroup, keeping upload order
//	2. The pipeline normalizes, combines, filters and pivots the sources
//	3. The summary table is encoded as CSV or XLSX
//	4. Run metrics and a structured log line are recorded, on failure too
//
// Every fatal condition comes back as a single *errors.AppError whose type
// the surfaces map to an exit code or an HTTP status.
//
// # HealthService
//
// Liveness, readiness and version information for the HTTP API.
//
// # Usage
//
//	svc := services.NewExtractionService(cfg.Pipeline, metrics, logger)
//	resp, err := svc.Extract(ctx, services.ExtractRequest{
//	    Mode:    domain.ModeAPNUGW,
//	    Uploads: []services.Upload{{Name: "host1.xlsx", Data: data}},
//	})
package services
