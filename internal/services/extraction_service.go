package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"paygcli/internal/config"
	"paygcli/internal/dataprocessing"
	apperrors "paygcli/internal/errors"
	"paygcli/internal/exporter"
	"paygcli/internal/infrastructure"
	"paygcli/internal/validation"
	"paygcli/pkg/contracts/domain"
)

const tracerName = "paygcli/services"

// Upload is one counter export handed to the service, already read into
// memory.
type Upload struct {
	Name string
	Data []byte
}

// ExtractRequest holds the parameters of one extraction run.
type ExtractRequest struct {
	Mode         domain.Mode
	Counter      string
	SnapshotTime string
	Format       exporter.Format
	Uploads      []Upload
}

// ExtractResponse is the outcome of a successful run: the summary table,
// its encoded export and the warnings raised along the way.
type ExtractResponse struct {
	RunID  string
	Result *dataprocessing.Result
	Export *exporter.Export
}

// ExtractionService is the run boundary shared by the CLI and the HTTP API.
// It validates and decodes uploads, runs the pipeline, records metrics and
// encodes the export.
type ExtractionService struct {
	pipeline  *dataprocessing.Pipeline
	validator *validation.FileValidator
	reader    dataprocessing.ReaderOptions
	cfg       config.PipelineConfig
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewExtractionService creates the service. metrics may be nil.
func NewExtractionService(cfg config.PipelineConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "extraction_service")

	return &ExtractionService{
		pipeline:  dataprocessing.NewPipeline(logger, cfg),
		validator: validation.NewFileValidator(logger),
		reader: dataprocessing.ReaderOptions{
			SkipRows:  cfg.SkipRows,
			SheetName: cfg.SheetName,
			Delimiter: cfg.Delimiter,
		},
		cfg:     cfg,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
	}
}

// Modes returns the extraction mode catalogue.
func (s *ExtractionService) Modes() []dataprocessing.ModeSpec {
	return dataprocessing.AllModes()
}

// Mode looks up one mode by name.
func (s *ExtractionService) Mode(name string) (dataprocessing.ModeSpec, error) {
	mode, ok := domain.ParseMode(name)
	if !ok {
		return dataprocessing.ModeSpec{}, apperrors.NewNotFoundError(fmt.Sprintf("extraction mode %q", name))
	}
	spec, _ := dataprocessing.LookupMode(mode)
	return spec, nil
}

// ListCounters decodes the uploads and returns the counter columns the mode
// would use, in header order and without duplicates.
func (s *ExtractionService) ListCounters(ctx context.Context, mode domain.Mode, uploads []Upload) ([]string, error) {
	spec, ok := dataprocessing.LookupMode(mode)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("extraction mode %q", mode))
	}

	tables, err := s.decode(ctx, uploads)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	counters := []string{}
	for _, table := range tables {
		for _, c := range spec.Counters(table) {
			if !seen[c] {
				seen[c] = true
				counters = append(counters, c)
			}
		}
	}

	s.logger.DebugContext(ctx, "counters listed",
		slog.String("mode", string(mode)),
		slog.Int("sources", len(tables)),
		slog.Int("counters", len(counters)))
	return counters, nil
}

// Extract runs one extraction. Fatal conditions are returned as
// *errors.AppError; the run's metrics are recorded either way.
func (s *ExtractionService) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	runID := uuid.New().String()
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "extraction.run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("mode", string(req.Mode)),
		attribute.Int("uploads", len(req.Uploads)),
	))
	defer span.End()

	logger := s.logger.With(
		slog.String("run_id", runID),
		slog.String("mode", string(req.Mode)))

	resp, err := s.extract(ctx, runID, req)

	obs := infrastructure.ExtractionObservation{
		Mode:     string(req.Mode),
		Outcome:  "success",
		Sources:  len(req.Uploads),
		Duration: time.Since(start),
	}
	if err != nil {
		obs.Outcome = outcomeOf(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WarnContext(ctx, "extraction failed",
			slog.String("outcome", obs.Outcome),
			slog.String("error", err.Error()),
			slog.Duration("duration", obs.Duration))
	} else {
		obs.RowsIngested = resp.Result.Stats.RowsIngested
		obs.RowsSelected = resp.Result.Stats.RowsSelected
		obs.Warnings = len(resp.Result.Warnings)
		for _, w := range resp.Result.Warnings {
			infrastructure.AddSpanEvent(ctx, "extraction.warning",
				attribute.String("source", w.Source),
				attribute.String("kind", string(w.Kind)))
		}
		logger.InfoContext(ctx, "extraction finished",
			slog.String("filename", resp.Export.Filename),
			slog.Int("bytes", len(resp.Export.Data)),
			slog.Int("warnings", obs.Warnings),
			slog.Duration("duration", obs.Duration))
	}
	infrastructure.RecordExtraction(ctx, s.metrics, obs)

	return resp, err
}

func (s *ExtractionService) extract(ctx context.Context, runID string, req ExtractRequest) (*ExtractResponse, error) {
	format, err := exporter.ParseFormat(string(req.Format))
	if err != nil {
		return nil, apperrors.NewAppValidationError(err.Error())
	}
	if _, ok := dataprocessing.LookupMode(req.Mode); !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("extraction mode %q", req.Mode))
	}

	tables, err := s.decode(ctx, req.Uploads)
	if err != nil {
		return nil, err
	}

	result, err := s.pipeline.Run(ctx, dataprocessing.Options{
		Mode:         req.Mode,
		Counter:      req.Counter,
		SnapshotTime: req.SnapshotTime,
	}, tables)
	if err != nil {
		return nil, err
	}

	export, err := exporter.Encode(result.Table, result.Filename, format)
	if err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrTypeStorage, "failed to encode export", err)
	}

	return &ExtractResponse{RunID: runID, Result: result, Export: export}, nil
}

// decode validates every upload and reads them in parallel. Tables keep the
// upload order regardless of which decode finishes first.
func (s *ExtractionService) decode(ctx context.Context, uploads []Upload) ([]*dataprocessing.RawTable, error) {
	if len(uploads) == 0 {
		return nil, apperrors.NewAppValidationError("at least one counter export is required")
	}
	if s.cfg.MaxFiles > 0 && len(uploads) > s.cfg.MaxFiles {
		return nil, apperrors.NewAppValidationError(fmt.Sprintf("%d files uploaded, the limit is %d", len(uploads), s.cfg.MaxFiles))
	}
	for _, u := range uploads {
		if err := s.validator.ValidateUpload(u.Name, int64(len(u.Data)), s.cfg.MaxUploadBytes); err != nil {
			return nil, err
		}
	}

	tables := make([]*dataprocessing.RawTable, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, u := range uploads {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			table, err := dataprocessing.ReadTable(u.Name, u.Data, s.reader)
			if err != nil {
				return err
			}
			tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

// outcomeOf labels a failed run for metrics.
func outcomeOf(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return string(appErr.Type)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "CANCELED"
	}
	return "INTERNAL"
}
