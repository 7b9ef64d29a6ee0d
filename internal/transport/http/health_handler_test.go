package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paygcli/internal/services"
	"paygcli/internal/shared/testutil"
)

func TestHealthHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	tests := []struct {
		name       string
		outputDir  string
		call       func(h *HealthHandler) http.HandlerFunc
		wantCode   int
		wantStatus string
	}{
		{name: "health", call: func(h *HealthHandler) http.HandlerFunc { return h.HealthCheck }, wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "live", call: func(h *HealthHandler) http.HandlerFunc { return h.LivenessCheck }, wantCode: http.StatusOK, wantStatus: "alive"},
		{name: "ready", call: func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck }, wantCode: http.StatusOK, wantStatus: "ready"},
		{
			name:       "not ready",
			outputDir:  filepath.Join(t.TempDir(), "missing"),
			call:       func(h *HealthHandler) http.HandlerFunc { return h.ReadinessCheck },
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(services.NewHealthService("1.2.3", tt.outputDir, logger), logger)

			rec := httptest.NewRecorder()
			tt.call(h)(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, "1.2.3", body["version"])
		})
	}
}

func TestHealthHandlerVersion(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewHealthHandler(services.NewHealthServiceWithBuildInfo("1.2.3", "", "build-7", "", logger), logger)

	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "build-7", body["build_id"])
	assert.NotContains(t, body, "build_time")
}
