package dataprocessing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"watchdog/pkg/contracts/domain"
)

// LoadExcel reads an .xlsx workbook into a batch. sheet selects a sheet by
// name or zero-based index; empty means the first sheet. The first row of the
// sheet is the header; rows shorter than the header are padded with nil.
func LoadExcel(path, sheet string) (*domain.Batch, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err = resolveSheet(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("workbook %s: %w", path, err)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		columns[i] = strings.TrimSpace(h)
	}

	batch := domain.NewBatch(columns)
	for _, record := range rows[1:] {
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = NormalizeCell(record[i])
			} else {
				row[col] = nil
			}
		}
		batch.Append(row)
	}

	slog.Info("loaded Excel batch",
		slog.String("path", path),
		slog.String("sheet", sheet),
		slog.Int("columns", len(batch.Columns)),
		slog.Int("rows", batch.Len()))
	return batch, nil
}

// resolveSheet accepts a sheet name, a zero-based index, or "" for the first
// sheet.
func resolveSheet(f *excelize.File, sheet string) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	if sheet == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == sheet {
			return sheet, nil
		}
	}
	if idx, err := strconv.Atoi(sheet); err == nil {
		if idx < 0 || idx >= len(sheets) {
			return "", fmt.Errorf("sheet index %d out of range (%d sheets)", idx, len(sheets))
		}
		return sheets[idx], nil
	}
	return "", fmt.Errorf("sheet %q not found", sheet)
}
