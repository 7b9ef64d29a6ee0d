package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics groups the instruments recorded by the HTTP layer and the
// extraction service.
type BusinessMetrics struct {
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	ExtractionRunsTotal metric.Int64Counter
	ExtractionDuration  metric.Float64Histogram
	RowsIngested        metric.Int64Counter
	RowsSelected        metric.Int64Counter
	ExtractionWarnings  metric.Int64Counter
}

// ExtractionObservation is what a finished run reports to the metrics layer.
type ExtractionObservation struct {
	Mode         string
	Outcome      string // "success" or the error type
	Sources      int
	RowsIngested int
	RowsSelected int
	Warnings     int
	Duration     time.Duration
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	runsTotal, err := meter.Int64Counter(
		"extraction_runs_total",
		metric.WithDescription("Total number of extraction runs by mode and outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"extraction_duration_seconds",
		metric.WithDescription("Extraction run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	rowsIngested, err := meter.Int64Counter(
		"extraction_rows_ingested_total",
		metric.WithDescription("Rows read from uploaded sources"),
	)
	if err != nil {
		return nil, err
	}

	rowsSelected, err := meter.Int64Counter(
		"extraction_rows_selected_total",
		metric.WithDescription("Rows that survived the snapshot filter"),
	)
	if err != nil {
		return nil, err
	}

	warnings, err := meter.Int64Counter(
		"extraction_warnings_total",
		metric.WithDescription("Non-fatal conditions reported by extraction runs"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		HTTPRequestsTotal:   httpRequestsTotal,
		HTTPRequestDuration: httpRequestDuration,
		HTTPActiveRequests:  httpActiveRequests,
		ExtractionRunsTotal: runsTotal,
		ExtractionDuration:  duration,
		RowsIngested:        rowsIngested,
		RowsSelected:        rowsSelected,
		ExtractionWarnings:  warnings,
	}, nil
}

// RecordExtraction records one finished extraction run
func RecordExtraction(ctx context.Context, metrics *BusinessMetrics, obs ExtractionObservation) {
	if metrics == nil {
		return
	}

	modeAttr := metric.WithAttributes(attribute.String("mode", obs.Mode))
	metrics.ExtractionRunsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", obs.Mode),
		attribute.String("outcome", obs.Outcome),
	))
	metrics.ExtractionDuration.Record(ctx, obs.Duration.Seconds(), modeAttr)
	metrics.RowsIngested.Add(ctx, int64(obs.RowsIngested), modeAttr)
	metrics.RowsSelected.Add(ctx, int64(obs.RowsSelected), modeAttr)
	if obs.Warnings > 0 {
		metrics.ExtractionWarnings.Add(ctx, int64(obs.Warnings), modeAttr)
	}
}
