package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchdog/internal/shared/testutil"
)

func TestValidateInputFile(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	v := NewFileValidator(logger)
	dir := t.TempDir()

	valid := filepath.Join(dir, "batch.csv")
	require.NoError(t, os.WriteFile(valid, []byte("A\n1\n"), 0o644))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	unsupported := filepath.Join(dir, "batch.json")
	require.NoError(t, os.WriteFile(unsupported, []byte("{}"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "valid csv", path: valid},
		{name: "missing file", path: filepath.Join(dir, "nope.csv"), wantErr: "does not exist"},
		{name: "directory", path: dir, wantErr: "is a directory"},
		{name: "empty file", path: empty, wantErr: "is empty"},
		{name: "unsupported extension", path: unsupported, wantErr: "unsupported input format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInputFile(tt.path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateOutputDirectory(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	v := NewFileValidator(logger)

	dir := filepath.Join(t.TempDir(), "out", "nested")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// The write probe cleans up after itself.
	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err))
}

func TestValidateUpload(t *testing.T) {
	logger, _ := testutil.NewLogger(t)
	v := NewFileValidator(logger)

	tests := []struct {
		name     string
		filename string
		size     int64
		max      int64
		wantErr  string
	}{
		{name: "valid", filename: "batch.csv", size: 100, max: 1000},
		{name: "valid xlsx", filename: "batch.XLSX", size: 100, max: 1000},
		{name: "no filename", filename: "", wantErr: "no filename"},
		{name: "path traversal", filename: "../batch.csv", wantErr: "path elements"},
		{name: "separator", filename: "a/b.csv", wantErr: "path elements"},
		{name: "unsupported", filename: "batch.exe", wantErr: "unsupported upload format"},
		{name: "too large", filename: "batch.csv", size: 2000, max: 1000, wantErr: "exceeds limit"},
		{name: "no limit", filename: "batch.csv", size: 2000, max: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.filename, tt.size, tt.max)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSupportedExtension(t *testing.T) {
	assert.True(t, SupportedExtension("a.csv"))
	assert.True(t, SupportedExtension("a.XLSM"))
	assert.False(t, SupportedExtension("a.txt"))
	assert.False(t, SupportedExtension("csv"))
}
