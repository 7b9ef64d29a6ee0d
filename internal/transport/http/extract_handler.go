package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"paygcli/internal/dataprocessing"
	apierrors "paygcli/internal/errors"
	"paygcli/internal/exporter"
	"paygcli/internal/middleware"
	"paygcli/internal/services"
)

// FormatJSON asks the extract endpoint for a JSON preview of the summary
// table instead of a file download.
const FormatJSON = "json"

// defaultMultipartMemory is how much of a multipart body is kept in memory
// before spilling to temporary files.
const defaultMultipartMemory = 32 << 20

type modeCtxKey struct{}

// extractForm is the multipart form of the counters and extract endpoints.
type extractForm struct {
	Counter      string   `form:"counter" validate:"max=256"`
	SnapshotTime string   `form:"snapshot_time" validate:"omitempty,clock"`
	Format       string   `form:"format" validate:"omitempty,oneof=csv xlsx json"`
	Files        []string `form:"files" validate:"min=1,dive,filename"`
}

// ModeList is the response of GET /api/modes.
type ModeList struct {
	Modes []dataprocessing.ModeSpec `json:"modes"`
}

// CounterList is the response of POST /api/modes/{mode}/counters.
type CounterList struct {
	Mode     string   `json:"mode"`
	Counters []string `json:"counters"`
}

// ExtractPreview is the JSON rendition of one extraction run.
type ExtractPreview struct {
	RunID    string                   `json:"run_id"`
	Mode     string                   `json:"mode"`
	Counter  string                   `json:"counter,omitempty"`
	Filename string                   `json:"filename"`
	Header   []string                 `json:"header"`
	Rows     [][]string               `json:"rows"`
	Warnings []dataprocessing.Warning `json:"warnings"`
	Stats    dataprocessing.Stats     `json:"stats"`
}

// ExtractHandler handles extraction HTTP requests with RFC 7807 errors
type ExtractHandler struct {
	service      ExtractionServiceInterface
	validator    *middleware.ValidationMiddleware
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
	maxMemory    int64
}

// NewExtractHandler creates a new extraction handler
func NewExtractHandler(service ExtractionServiceInterface, validator *middleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ExtractHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "extract_handler")),
		maxMemory:    defaultMultipartMemory,
	}
}

// Routes returns the mode routes
func (h *ExtractHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListModes)

	r.Route("/{mode}", func(r chi.Router) {
		r.Use(h.ModeCtx)
		r.Get("/", h.GetMode)

		r.Group(func(r chi.Router) {
			r.Use(h.validator.LimitBody)
			r.Use(h.validator.ContentTypeValidator("multipart/form-data"))
			r.Post("/counters", h.ListCounters)
			r.Post("/extract", h.Extract)
		})
	})

	return r
}

// ModeCtx middleware resolves the {mode} parameter
func (h *ExtractHandler) ModeCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "mode")
		spec, err := h.service.Mode(name)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ModeNotFoundError(name))
			return
		}
		ctx := context.WithValue(r.Context(), modeCtxKey{}, spec)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func modeFromContext(ctx context.Context) dataprocessing.ModeSpec {
	spec, _ := ctx.Value(modeCtxKey{}).(dataprocessing.ModeSpec)
	return spec
}

// ListModes handles GET /api/modes
func (h *ExtractHandler) ListModes(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, ModeList{Modes: h.service.Modes()})
}

// GetMode handles GET /api/modes/{mode}
func (h *ExtractHandler) GetMode(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, modeFromContext(r.Context()))
}

// ListCounters handles POST /api/modes/{mode}/counters
func (h *ExtractHandler) ListCounters(w http.ResponseWriter, r *http.Request) {
	spec := modeFromContext(r.Context())

	_, uploads, err := h.parseForm(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	counters, err := h.service.ListCounters(r.Context(), spec.Mode, uploads)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, CounterList{Mode: string(spec.Mode), Counters: counters})
}

// Extract handles POST /api/modes/{mode}/extract. The response is the
// export file unless format=json asks for a preview.
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	spec := modeFromContext(ctx)

	form, uploads, err := h.parseForm(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format := exporter.Format(form.Format)
	if form.Format == FormatJSON {
		format = exporter.FormatCSV
	}

	resp, err := h.service.Extract(ctx, services.ExtractRequest{
		Mode:         spec.Mode,
		Counter:      form.Counter,
		SnapshotTime: form.SnapshotTime,
		Format:       format,
		Uploads:      uploads,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("X-Run-ID", resp.RunID)

	if form.Format == FormatJSON {
		header, rows := exporter.TableRecords(resp.Result.Table)
		warnings := resp.Result.Warnings
		if warnings == nil {
			warnings = []dataprocessing.Warning{}
		}
		render.JSON(w, r, ExtractPreview{
			RunID:    resp.RunID,
			Mode:     string(resp.Result.Mode),
			Counter:  resp.Result.Counter,
			Filename: resp.Export.Filename,
			Header:   header,
			Rows:     rows,
			Warnings: warnings,
			Stats:    resp.Result.Stats,
		})
		return
	}

	w.Header().Set("Content-Type", resp.Export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": resp.Export.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.Export.Data); err != nil {
		h.logger.WarnContext(ctx, "failed to write export",
			slog.String("run_id", resp.RunID),
			slog.String("error", err.Error()))
	}
}

// parseForm reads the multipart form, validates it and loads every file
// part named "files" in upload order.
func (h *ExtractHandler) parseForm(r *http.Request) (*extractForm, []services.Upload, error) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, apierrors.ErrPayloadTooLarge
		}
		return nil, nil, apierrors.InvalidRequestWithError(err)
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	form := &extractForm{
		Counter:      r.FormValue("counter"),
		SnapshotTime: r.FormValue("snapshot_time"),
		Format:       r.FormValue("format"),
		Files:        make([]string, len(headers)),
	}
	for i, fh := range headers {
		form.Files[i] = filepath.Base(fh.Filename)
	}

	if err := h.validator.ValidateStruct(form); err != nil {
		return nil, nil, err
	}

	uploads := make([]services.Upload, len(headers))
	for i, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, nil, apierrors.InvalidRequestWithError(fmt.Errorf("reading %s: %w", form.Files[i], err))
		}
		uploads[i] = services.Upload{Name: form.Files[i], Data: data}
	}

	h.logger.DebugContext(r.Context(), "multipart form parsed",
		slog.Int("files", len(uploads)),
		slog.String("format", form.Format))
	return form, uploads, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
