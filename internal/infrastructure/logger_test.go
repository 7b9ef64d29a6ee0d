package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"paygcli/internal/config"
)

func readLastEntry(t *testing.T, path string) map[string]interface{} {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")

	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("Log output is not valid JSON: %v", err)
	}
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "logs", "extract.log")

	cfg := config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	}

	logger, err := InitializeLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if logger == nil {
		t.Fatal("Logger is nil")
	}
	if GetLogger() != logger {
		t.Error("GetLogger did not return the initialized logger")
	}

	logger.Info("extraction finished", "mode", "with_anchor")

	// Close log file to allow reading on Windows
	CloseLogFile()

	entry := readLastEntry(t, logFile)
	if entry["msg"] != "extraction finished" {
		t.Errorf("Expected msg='extraction finished', got %v", entry["msg"])
	}
	if entry["mode"] != "with_anchor" {
		t.Errorf("Expected mode='with_anchor', got %v", entry["mode"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("Expected level='INFO', got %v", entry["level"])
	}
}

func TestInitializeLoggerOnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	first, err := InitializeLogger(config.LoggingConfig{Level: "info"})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug"})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	if first != second {
		t.Error("Expected the second call to return the first logger")
	}
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")

	ctx := WithTraceID(context.Background(), "test-trace-123")
	logger.InfoContext(ctx, "request completed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	if entry["trace_id"] != "test-trace-123" {
		t.Errorf("Expected trace_id='test-trace-123', got %v", entry["trace_id"])
	}

	buf.Reset()
	WithComponent(logger, "pipeline").Info("no trace")
	if strings.Contains(buf.String(), "trace_id") {
		t.Errorf("Unexpected trace_id in %s", buf.String())
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level      string
		wantDebug  bool
		wantInfo   bool
		wantWarn   bool
		wantErrors bool
	}{
		{"debug", true, true, true, true},
		{"info", false, true, true, true},
		{"warn", false, false, true, true},
		{"error", false, false, false, true},
		{"bogus", false, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level)

			logger.Debug("d")
			logger.Info("i")
			logger.Warn("w")
			logger.Error("e")

			out := buf.String()
			for msg, want := range map[string]bool{
				`"msg":"d"`: tt.wantDebug,
				`"msg":"i"`: tt.wantInfo,
				`"msg":"w"`: tt.wantWarn,
				`"msg":"e"`: tt.wantErrors,
			} {
				if strings.Contains(out, msg) != want {
					t.Errorf("level %s: %s present=%v, want %v", tt.level, msg, !want, want)
				}
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	if traceID == "" {
		t.Fatal("Expected trace ID to be generated")
	}

	if GetTraceID(EnsureTraceID(ctx)) != traceID {
		t.Error("EnsureTraceID changed existing trace ID")
	}

	if GenerateTraceID() == GenerateTraceID() {
		t.Error("Expected unique trace IDs")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info")

	WithComponent(logger, "extraction_service").Info("test message")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log JSON: %v", err)
	}
	if entry["component"] != "extraction_service" {
		t.Errorf("Expected component='extraction_service', got %v", entry["component"])
	}

	if WithComponent(nil, "fallback") == nil {
		t.Error("Expected a logger when none is given")
	}
}
