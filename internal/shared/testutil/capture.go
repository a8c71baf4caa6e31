// Package testutil provides shared test helpers, most notably an slog
// handler that buffers records so tests can assert on emitted logs.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Record is a captured log record.
type Record struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// CaptureHandler buffers log records for assertions. It is safe for
// concurrent use.
type CaptureHandler struct {
	mu      sync.Mutex
	records []Record
}

// NewLogger returns a logger whose records are captured by the returned
// handler.
func NewLogger(tb testing.TB) (*slog.Logger, *CaptureHandler) {
	tb.Helper()
	h := &CaptureHandler{}
	return slog.New(h), h
}

// Handle implements slog.Handler.
func (h *CaptureHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, Record{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// Enabled implements slog.Handler. Tests capture every level.
func (h *CaptureHandler) Enabled(context.Context, slog.Level) bool { return true }

// WithAttrs implements slog.Handler.
func (h *CaptureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

// WithGroup implements slog.Handler.
func (h *CaptureHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of the captured records.
func (h *CaptureHandler) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// Contains reports whether any captured record at the given level contains
// the message substring.
func (h *CaptureHandler) Contains(level slog.Level, message string) bool {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error-level records.
func (h *CaptureHandler) ErrorCount() int {
	n := 0
	for _, r := range h.Records() {
		if r.Level >= slog.LevelError {
			n++
		}
	}
	return n
}
