package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"paygcli/pkg/contracts/domain"
)

// Format is a download encoding of a summary table.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Content types served for each format.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat validates a format name. The empty string means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// Export is an encoded summary table ready to be downloaded or written.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Encode renders table in the given format under the mode's default
// filename. The CSV rendition keeps that filename as is.
func Encode(table *domain.SummaryTable, filename string, format Format) (*Export, error) {
	switch format {
	case FormatCSV, "":
		data, err := EncodeTableCSV(table, false)
		if err != nil {
			return nil, err
		}
		return &Export{Filename: filename, ContentType: ContentTypeCSV, Data: data}, nil
	case FormatXLSX:
		data, err := EncodeTableXLSX(table)
		if err != nil {
			return nil, err
		}
		return &Export{Filename: XLSXFilename(filename), ContentType: ContentTypeXLSX, Data: data}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// Writer stores exports under one output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer for dir. A nil logger falls back to slog.Default.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// Write stores the export and returns the full path. An existing file with
// the same name is replaced.
func (w *Writer) Write(exp *Export) (string, error) {
	fullPath := filepath.Join(w.dir, filepath.Base(exp.Filename))

	w.logger.Info("Writing export file",
		slog.String("file_name", exp.Filename),
		slog.String("full_path", fullPath),
		slog.Int("bytes", len(exp.Data)))

	// Ensure directory exists
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// Temp file plus rename: readers never see a partial export.
	tmp, err := os.CreateTemp(w.dir, "."+filepath.Base(exp.Filename)+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := tmp.Write(exp.Data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return fullPath, nil
}
