package http

import (
	"bytes"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"paygcli/internal/config"
	apierrors "paygcli/internal/errors"
	"paygcli/internal/middleware"
	"paygcli/internal/services"
	"paygcli/internal/shared/testutil"
)

type part struct {
	name string
	data []byte
}

func newTestRouter(t *testing.T, maxBody int64) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	cfg := config.Default().Pipeline
	cfg.MaxFiles = 3
	svc := services.NewExtractionService(cfg, nil, logger)
	errorHandler := apierrors.NewErrorHandler(logger, false)
	validator := middleware.NewValidationMiddleware(logger, errorHandler, maxBody)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Mount("/api/modes", NewExtractHandler(svc, validator, errorHandler, logger).Routes())
	return r
}

func multipartRequest(t *testing.T, path string, fields map[string]string, files ...part) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func siteExport() []byte {
	return testutil.SiteExport("Number of S-CSCF Registered Users (number)",
		[]string{"2024-01-01 20:00:00", "60", "NE-sm1-01", "5"},
		[]string{"2024-01-01 20:00:00", "60", "NE-vis1-02", "3"},
		[]string{"2024-01-01 19:00:00", "60", "NE-sm1-01", "4"},
		[]string{"2024-01-01 19:00:00", "60", "NE-vis1-02", "7"},
	).CSV()
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem), rec.Body.String())
	return problem
}

func TestExtractHandlerListModes(t *testing.T) {
	router := newTestRouter(t, 0)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/modes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list ModeList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Modes, 4)
	assert.Equal(t, "with_anchor", string(list.Modes[0].Mode))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/modes/apn_cgw", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"filename":"extracted_data_apn_based_cgw.csv"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/modes/hourly", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "MODE_NOT_FOUND", decodeProblem(t, rec)["error_code"])
}

func TestExtractHandlerDownload(t *testing.T) {
	tests := []struct {
		name            string
		format          string
		wantFilename    string
		wantContentType string
	}{
		{name: "csv by default", format: "", wantFilename: "extracted_data_without_anchor.csv", wantContentType: "text/csv; charset=utf-8"},
		{name: "xlsx", format: "xlsx", wantFilename: "extracted_data_without_anchor.xlsx", wantContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, 0)

			req := multipartRequest(t, "/api/modes/without_anchor/extract",
				map[string]string{"format": tt.format},
				part{name: "host1.csv", data: siteExport()})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantContentType, rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get("X-Run-ID"))

			disposition, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
			require.NoError(t, err)
			assert.Equal(t, "attachment", disposition)
			assert.Equal(t, tt.wantFilename, params["filename"])

			if tt.format == "xlsx" {
				f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
				require.NoError(t, err)
				defer f.Close()
				rows, err := f.GetRows(f.GetSheetName(0))
				require.NoError(t, err)
				assert.Equal(t, []string{"Start Time", "sm1", "vis1", "Total"}, rows[0])
				return
			}
			assert.Equal(t, "Start Time,sm1,vis1,Total\n2024-01-01 20:00:00,5,3,8\n", rec.Body.String())
		})
	}
}

func TestExtractHandlerPreview(t *testing.T) {
	router := newTestRouter(t, 0)

	req := multipartRequest(t, "/api/modes/with_anchor/extract",
		map[string]string{"format": "json", "snapshot_time": "19:00:00"},
		part{name: "host1.csv", data: siteExport()})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview ExtractPreview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.NotEmpty(t, preview.RunID)
	assert.Equal(t, rec.Header().Get("X-Run-ID"), preview.RunID)
	assert.Equal(t, "with_anchor", preview.Mode)
	assert.Equal(t, "extracted_data_with_anchor.csv", preview.Filename)
	assert.Equal(t, []string{"Start Time", "sm1", "vis1", "Total"}, preview.Header)
	assert.Equal(t, [][]string{{"2024-01-01 19:00:00", "4", "7", "11"}}, preview.Rows)
	assert.Empty(t, preview.Warnings)
	assert.Equal(t, 4, preview.Stats.RowsIngested)
	assert.Equal(t, 2, preview.Stats.RowsSelected)
}

func TestExtractHandlerListCounters(t *testing.T) {
	router := newTestRouter(t, 0)

	req := multipartRequest(t, "/api/modes/with_anchor/counters", nil,
		part{name: "host1.csv", data: siteExport()})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list CounterList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "with_anchor", list.Mode)
	assert.Equal(t, []string{"Number of S-CSCF Registered Users (number)"}, list.Counters)
}

func TestExtractHandlerErrors(t *testing.T) {
	mismatched := testutil.APNExport([]string{"C1", "C2"},
		[]string{"1/15/2024 20:00:00", "60", "UGW02", "ims", "1", "2"}).CSV()
	apn := testutil.APNExport([]string{"C1"},
		[]string{"1/15/2024 20:00:00", "60", "UGW01", "ims", "1"}).CSV()

	tests := []struct {
		name      string
		path      string
		fields    map[string]string
		files     []part
		maxBody   int64
		wantCode  int
		wantType  string
		wantField string
	}{
		{
			name:     "no files",
			path:     "/api/modes/with_anchor/extract",
			wantCode: http.StatusBadRequest,
			wantType: "/errors/validation",
		},
		{
			name:     "bad snapshot and format",
			path:     "/api/modes/with_anchor/extract",
			fields:   map[string]string{"snapshot_time": "8pm", "format": "pdf"},
			files:    []part{{name: "host1.csv", data: siteExport()}},
			wantCode: http.StatusBadRequest,
			wantType: "/errors/validation",
		},
		{
			name:     "unknown mode",
			path:     "/api/modes/hourly/extract",
			files:    []part{{name: "host1.csv", data: siteExport()}},
			wantCode: http.StatusNotFound,
			wantType: "/errors/not-found",
		},
		{
			name:     "unsupported extension",
			path:     "/api/modes/with_anchor/extract",
			files:    []part{{name: "host1.txt", data: siteExport()}},
			wantCode: http.StatusBadRequest,
			wantType: "/errors/validation",
		},
		{
			name:     "unreadable workbook",
			path:     "/api/modes/with_anchor/extract",
			files:    []part{{name: "host1.xlsx", data: []byte("not a workbook")}},
			wantCode: http.StatusBadRequest,
			wantType: "/errors/extraction/read-failure",
		},
		{
			name:      "schema mismatch",
			path:      "/api/modes/apn_ugw/extract",
			files:     []part{{name: "host1.csv", data: apn}, {name: "host2.csv", data: mismatched}},
			wantCode:  http.StatusUnprocessableEntity,
			wantType:  "/errors/extraction/schema-mismatch",
			wantField: "host2.csv",
		},
		{
			name:     "missing column",
			path:     "/api/modes/apn_cgw/extract",
			files:    []part{{name: "host1.csv", data: siteExport()}},
			wantCode: http.StatusUnprocessableEntity,
			wantType: "/errors/extraction/missing-column",
		},
		{
			name:     "too many files",
			path:     "/api/modes/apn_ugw/extract",
			files:    []part{{name: "a.csv", data: apn}, {name: "b.csv", data: apn}, {name: "c.csv", data: apn}, {name: "d.csv", data: apn}},
			wantCode: http.StatusBadRequest,
			wantType: "/errors/validation",
		},
		{
			name:     "body too large",
			path:     "/api/modes/with_anchor/extract",
			files:    []part{{name: "host1.csv", data: siteExport()}},
			maxBody:  64,
			wantCode: http.StatusRequestEntityTooLarge,
			wantType: "/errors/payload-too-large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.maxBody)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, multipartRequest(t, tt.path, tt.fields, tt.files...))

			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			problem := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, problem["type"])
			assert.NotEmpty(t, problem["trace_id"])
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, problem["source"])
			}
		})
	}
}

func TestExtractHandlerRequiresMultipart(t *testing.T) {
	router := newTestRouter(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/modes/with_anchor/extract", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}
