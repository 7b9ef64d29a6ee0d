// Package http implements the HTTP handlers of the extraction API.
// Handlers stay thin: they parse and validate the request, call the
// services layer and format the response.
//
// # Endpoints
//
//	GET  /api/modes                   mode catalogue
//	GET  /api/modes/{mode}            one mode
//	POST /api/modes/{mode}/counters   counter columns found in the uploads
//	POST /api/modes/{mode}/extract    run an extraction
//	GET  /api/health[/ready|/live]    health probes
//	GET  /api/version                 build information
//
// The counters and extract endpoints take multipart/form-data with one or
// more "files" parts, kept in upload order, and the optional fields
// "counter", "snapshot_time" (HH:MM:SS) and "format" (csv, xlsx or json).
// csv and xlsx return the export as an attachment; json returns the
// summary table, warnings and row statistics.
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details:
//
//	{
//	    "type": "/errors/extraction/schema-mismatch",
//	    "title": "Schema Mismatch",
//	    "status": 422,
//	    "detail": "...",
//	    "instance": "/api/modes/apn_ugw/extract",
//	    "error_type": "SCHEMA_MISMATCH",
//	    "source": "host2.xlsx"
//	}
//
// # Testing
//
// Handlers are tested with httptest against the real extraction service
// and generated counter exports.
package http
