package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"watchdog/pkg/contracts/domain"
)

// Sheet names used in the result workbook.
const (
	CleanSheet   = "Clean"
	FlaggedSheet = "Quarantined"
)

// WriteResultWorkbook writes the clean and flagged batches of a run as a
// two-sheet .xlsx workbook.
func WriteResultWorkbook(path string, clean, flagged *domain.Batch, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, CleanSheet, clean); err != nil {
		return err
	}
	if err := writeSheet(f, FlaggedSheet, flagged); err != nil {
		return err
	}
	// Drop excelize's default sheet.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	logger.Info("wrote result workbook",
		slog.String("path", path),
		slog.Int("clean_rows", clean.Len()),
		slog.Int("flagged_rows", flagged.Len()))
	return nil
}

func writeSheet(f *excelize.File, name string, batch *domain.Batch) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", name, err)
	}

	header := make([]interface{}, len(batch.Columns))
	for i, col := range batch.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header to %q: %w", name, err)
	}

	for i, row := range batch.Rows {
		record := make([]interface{}, len(batch.Columns))
		for j, col := range batch.Columns {
			record[j] = FormatValue(row[col])
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(name, cell, &record); err != nil {
			return fmt.Errorf("failed to write row %d to %q: %w", i, name, err)
		}
	}
	return nil
}
