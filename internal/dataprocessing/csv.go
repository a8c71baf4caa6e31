// Package dataprocessing loads row batches from the supported sources: CSV
// files, Excel workbooks, and SQL queries. Loaders normalize cells (trimmed
// strings, empty cells become nil) and preserve source column and row order.
package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"watchdog/pkg/contracts/domain"
)

// LoadCSV reads a CSV file into a batch. The first record is the header.
// Short records are padded with nil; long records are truncated to the
// header width. A UTF-8 BOM on the header is stripped.
func LoadCSV(path string) (*domain.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	batch, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	slog.Info("loaded CSV batch",
		slog.String("path", path),
		slog.Int("columns", len(batch.Columns)),
		slog.Int("rows", batch.Len()))
	return batch, nil
}

// ReadCSV reads CSV data from a reader into a batch.
func ReadCSV(r io.Reader) (*domain.Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv input is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	batch := domain.NewBatch(columns)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
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
	return batch, nil
}

// NormalizeCell trims a raw cell and maps empty strings to nil.
func NormalizeCell(s string) domain.Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return trimmed
}
