package dataprocessing

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"watchdog/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned when no loader handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// LoadFile dispatches to the CSV or Excel loader by file extension. sheet is
// only meaningful for workbooks.
func LoadFile(path, sheet string) (*domain.Batch, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".xlsx", ".xlsm":
		return LoadExcel(path, sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}
