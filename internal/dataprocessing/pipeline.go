package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"paygcli/internal/config"
	apperrors "paygcli/internal/errors"
	"paygcli/pkg/contracts/domain"
)

const tracerName = "paygcli/dataprocessing"

// Options are the per-run parameters of an extraction.
type Options struct {
	Mode         domain.Mode
	Counter      string
	SnapshotTime string
}

// Stats summarises how many rows survived each stage of a run.
type Stats struct {
	Sources        int    `json:"sources"`
	RowsIngested   int    `json:"rows_ingested"`
	RowsSelected   int    `json:"rows_selected"`
	RowsClassified int    `json:"rows_classified"`
	TimeState      string `json:"time_state"`
}

// Result is the outcome of one successful run.
type Result struct {
	Mode     domain.Mode
	Counter  string
	Filename string
	Table    *domain.SummaryTable
	Warnings []Warning
	Stats    Stats
}

// Pipeline runs normalize, combine, filter, classify or split, and pivot
// over already-decoded tables. A run holds no state beyond its own call.
type Pipeline struct {
	logger     *slog.Logger
	normalizer *Normalizer
	tracer     trace.Tracer
	defaults   config.PipelineConfig
}

// NewPipeline creates a pipeline using cfg for per-run defaults.
func NewPipeline(logger *slog.Logger, cfg config.PipelineConfig) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SnapshotTime == "" {
		cfg.SnapshotTime = config.DefaultSnapshotTime
	}
	return &Pipeline{
		logger:     logger.With(slog.String("component", "pipeline")),
		normalizer: NewNormalizer(logger),
		tracer:     otel.Tracer(tracerName),
		defaults:   cfg,
	}
}

// Run extracts one summary table from the given sources. Fatal conditions
// are returned as *errors.AppError and no table is produced.
func (p *Pipeline) Run(ctx context.Context, opts Options, tables []*RawTable) (*Result, error) {
	spec, ok := LookupMode(opts.Mode)
	if !ok {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("unknown extraction mode %q", opts.Mode))
	}
	if len(tables) == 0 {
		return nil, apperrors.NewAppValidationError("at least one source is required")
	}
	if len(tables) > 1 && !spec.MultiSource {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("mode %s accepts a single source, got %d", spec.Mode, len(tables)))
	}

	snapshot := opts.SnapshotTime
	if snapshot == "" {
		snapshot = p.defaults.SnapshotTime
	}
	clock, err := config.ParseClock(snapshot)
	if err != nil {
		return nil, apperrors.NewParsingError("snapshot time could not be parsed", err)
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("mode", string(spec.Mode)),
		attribute.Int("sources", len(tables)),
		attribute.String("snapshot_time", snapshot),
	))
	defer span.End()

	start := time.Now()
	result, err := p.run(ctx, spec, opts, clock, tables)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("rows_ingested", result.Stats.RowsIngested),
		attribute.Int("rows_selected", result.Stats.RowsSelected),
		attribute.Int("table_rows", result.Table.Len()),
	)
	p.logger.InfoContext(ctx, "extraction completed",
		slog.String("mode", string(spec.Mode)),
		slog.Int("sources", result.Stats.Sources),
		slog.Int("rows_ingested", result.Stats.RowsIngested),
		slog.Int("rows_selected", result.Stats.RowsSelected),
		slog.Int("rows_classified", result.Stats.RowsClassified),
		slog.Int("table_rows", result.Table.Len()),
		slog.Int("warnings", len(result.Warnings)),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

func (p *Pipeline) run(ctx context.Context, spec ModeSpec, opts Options, clock time.Duration, tables []*RawTable) (*Result, error) {
	result := &Result{Mode: spec.Mode, Filename: spec.Filename}

	_, normSpan := p.tracer.Start(ctx, "pipeline.normalize")
	batches := make([]*domain.Batch, 0, len(tables))
	for _, table := range tables {
		batch, warnings, err := p.normalizer.Normalize(ctx, table, spec.NormalizeOptions())
		if err != nil {
			normSpan.End()
			return nil, err
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Stats.RowsIngested += batch.Len()
		batches = append(batches, batch)
	}
	normSpan.End()
	result.Stats.Sources = len(batches)

	combined, err := Combine(batches...)
	if err != nil {
		return nil, err
	}
	result.Stats.TimeState = combined.TimeState.String()

	filtered := NewSnapshotFilter(clock).Apply(combined)
	result.Stats.RowsSelected = filtered.Len()
	p.logger.DebugContext(ctx, "snapshot filter applied",
		slog.Int("rows_in", combined.Len()),
		slog.Int("rows_out", filtered.Len()),
		slog.String("time_state", combined.TimeState.String()))

	_, pivotSpan := p.tracer.Start(ctx, "pipeline.pivot", trace.WithAttributes(
		attribute.String("layout", string(spec.Layout)),
	))
	defer pivotSpan.End()

	switch spec.Layout {
	case domain.LayoutSite:
		counter := opts.Counter
		if counter == "" {
			counter = spec.DefaultCounter
		}
		if counter == "" && len(combined.Counters) > 0 {
			counter = combined.Counters[0]
		}
		if counter == "" {
			return nil, apperrors.NewMissingColumnError("counter columns ending in "+CounterSuffix, combined.Source)
		}
		result.Counter = counter

		assignments := ClassifySites(filtered.Records)
		for _, a := range assignments {
			if a.Site != domain.SiteUnknown {
				result.Stats.RowsClassified++
			}
		}
		result.Table, err = PivotBySite(filtered, assignments, SitePivotOptions{
			Mode:        spec.Mode,
			Counter:     counter,
			Aggregation: spec.Aggregation,
		})
	case domain.LayoutCategory:
		counters := spec.FixedCounters
		if len(counters) == 0 {
			counters = combined.Counters
		}
		subsets := SplitCategories(filtered.Records)
		result.Stats.RowsClassified = len(filtered.Records)
		result.Table, err = PivotByCategory(filtered, subsets, CategoryPivotOptions{
			Mode:             spec.Mode,
			Counters:         counters,
			IncludeStartTime: spec.IncludeStartTime,
		})
	default:
		return nil, fmt.Errorf("mode %s has unknown layout %q", spec.Mode, spec.Layout)
	}
	if err != nil {
		return nil, err
	}

	if err := result.Table.Verify(); err != nil {
		return nil, fmt.Errorf("summary table failed verification: %w", err)
	}
	return result, nil
}
