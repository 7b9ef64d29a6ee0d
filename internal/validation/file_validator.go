package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "paygcli/internal/errors"
)

// SupportedExtensions are the counter export extensions accepted as input.
var SupportedExtensions = []string{".xlsx", ".xls", ".csv"}

// FileValidator provides common file validation functions for the CLI and
// the upload handlers
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateUpload checks the name and size of one uploaded counter export.
// A maxBytes of zero disables the size limit.
func (v *FileValidator) ValidateUpload(name string, size, maxBytes int64) error {
	base := filepath.Base(name)

	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file",
			slog.String("file", base))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is a temporary Excel lock file", base))
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !isSupported(ext) {
		v.logger.Warn("Rejecting unsupported file type",
			slog.String("file", base),
			slog.String("extension", ext))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is not a counter export (extension %q, want one of %s)",
			base, ext, strings.Join(SupportedExtensions, ", ")))
	}

	if size <= 0 {
		v.logger.Warn("Rejecting empty file",
			slog.String("file", base))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is empty", base))
	}

	if maxBytes > 0 && size > maxBytes {
		v.logger.Warn("Rejecting oversized file",
			slog.String("file", base),
			slog.Int64("size", size),
			slog.Int64("max_bytes", maxBytes))
		return apperrors.NewAppValidationError(fmt.Sprintf("file %s is %d bytes, the limit is %d", base, size, maxBytes))
	}

	return nil
}

// ValidateInputFile checks that a file on disk exists, is readable and is
// an acceptable counter export.
func (v *FileValidator) ValidateInputFile(path string, maxBytes int64) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	return v.ValidateUpload(path, info.Size(), maxBytes)
}

// ValidateInputDirectory validates that input directory exists
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// CollectInputs expands the given paths into counter export files. Files are
// kept in argument order; directories contribute their supported files in
// name order, skipping Excel lock files and subdirectories.
func (v *FileValidator) CollectInputs(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, v.ValidateFile(p)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		if err := v.ValidateInputDirectory(p); err != nil {
			return nil, err
		}
		var found []string
		for _, ext := range SupportedExtensions {
			matches, err := filepath.Glob(filepath.Join(p, "*"+ext))
			if err != nil {
				return nil, fmt.Errorf("failed to check for files: %w", err)
			}
			for _, m := range matches {
				if strings.HasPrefix(filepath.Base(m), "~$") {
					continue
				}
				if fi, err := os.Stat(m); err == nil && !fi.IsDir() {
					found = append(found, m)
				}
			}
		}
		sort.Strings(found)
		if len(found) == 0 {
			v.logger.Warn("No counter exports found in directory",
				slog.String("directory", p))
		}
		files = append(files, found...)
	}

	v.logger.Debug("Inputs collected",
		slog.Int("files", len(files)))
	return files, nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	// Try to create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	// Check if file is readable by opening it
	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

func isSupported(ext string) bool {
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
