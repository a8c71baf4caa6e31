// Package exporter writes clean and flagged batches to CSV files and Excel
// workbooks for downstream review.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"watchdog/pkg/contracts/domain"
)

// CSVWriter provides CSV export for batches.
type CSVWriter struct {
	logger *slog.Logger
	// BOMPrefix adds a UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// NewCSVWriter creates a new CSV writer.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger, BOMPrefix: true}
}

// WriteBatch writes a batch to a CSV file, header first, cells in schema
// column order. The parent directory is created if needed.
func (w *CSVWriter) WriteBatch(path string, batch *domain.Batch) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if w.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(batch.Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range batch.Rows {
		record := make([]string, len(batch.Columns))
		for j, col := range batch.Columns {
			record[j] = FormatValue(row[col])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	if err := writer.Error(); err != nil {
		return err
	}

	w.logger.Info("wrote CSV file",
		slog.String("path", path),
		slog.Int("rows", batch.Len()))
	return nil
}
