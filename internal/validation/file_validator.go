// Package validation provides file-level checks shared by the CLI and the
// upload handler: input existence, output writability, and upload limits.
// Row-level validation lives in internal/engine.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the batch file formats the loaders accept.
var SupportedExtensions = []string{".csv", ".xlsx", ".xlsm"}

// FileValidator provides common file validation for the CLI and the server.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator.
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateInputFile checks that the batch file exists, is a regular file,
// is non-empty, and has a supported extension.
func (v *FileValidator) ValidateInputFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("input file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat input file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a batch file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("input file %s is empty", path)
	}
	if !SupportedExtension(path) {
		return fmt.Errorf("unsupported input format %q (supported: %s)",
			filepath.Ext(path), strings.Join(SupportedExtensions, ", "))
	}
	return nil
}

// ValidateOutputDirectory ensures the output directory exists (creating it
// if needed) and is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateUpload checks an uploaded file's name and size before it is
// written to disk.
func (v *FileValidator) ValidateUpload(filename string, size, maxBytes int64) error {
	if filename == "" {
		return fmt.Errorf("upload has no filename")
	}
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return fmt.Errorf("upload filename %q contains path elements", filename)
	}
	if !SupportedExtension(filename) {
		return fmt.Errorf("unsupported upload format %q", filepath.Ext(filename))
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("upload of %d bytes exceeds limit of %d bytes", size, maxBytes)
	}
	return nil
}

// SupportedExtension reports whether the filename carries a loadable
// extension.
func SupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, s := range SupportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}
