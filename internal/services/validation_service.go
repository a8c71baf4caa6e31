// Package services orchestrates validation runs: Configure, Scan, Partition,
// Summarize, Export. It owns the run registry the HTTP API serves from.
package services

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"watchdog/internal/config"
	"watchdog/internal/engine"
	apierrors "watchdog/internal/errors"
	"watchdog/internal/exporter"
	"watchdog/internal/quarantine"
	"watchdog/internal/report"
	"watchdog/pkg/contracts/domain"
)

// Run is one completed validation run and its artifacts.
type Run struct {
	ID          string         `json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	Summary     domain.Summary `json:"summary"`
	CleanPath   string         `json:"-"`
	FlaggedPath string         `json:"-"`
}

// RunResult is the full outcome of a run, including the partitioned batches
// for callers that consume them directly (CLI, tests).
type RunResult struct {
	Run     *Run
	Clean   *domain.Batch
	Flagged *domain.Batch
}

// ValidationService executes the quarantine gate over row batches.
type ValidationService struct {
	logger  *slog.Logger
	engine  *engine.Engine
	tracer  trace.Tracer
	metrics *Metrics
	csv     *exporter.CSVWriter
	runsDir string

	mu   sync.RWMutex
	runs map[string]*Run
}

// ValidationServiceOptions configures NewValidationService. Tracer and Meter
// may be nil (tests, CLI), in which case tracing and metrics are no-ops.
type ValidationServiceOptions struct {
	Logger  *slog.Logger
	Engine  *engine.Engine
	Tracer  trace.Tracer
	Meter   metric.Meter
	RunsDir string
}

// NewValidationService creates a validation service.
func NewValidationService(opts ValidationServiceOptions) (*ValidationService, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	eng := opts.Engine
	if eng == nil {
		eng = engine.New(logger)
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("watchdog")
	}

	var metrics *Metrics
	if opts.Meter != nil {
		m, err := NewMetrics(opts.Meter)
		if err != nil {
			return nil, err
		}
		metrics = m
	}

	return &ValidationService{
		logger:  logger.With(slog.String("component", "validation_service")),
		engine:  eng,
		tracer:  tracer,
		metrics: metrics,
		csv:     exporter.NewCSVWriter(logger),
		runsDir: opts.RunsDir,
		runs:    make(map[string]*Run),
	}, nil
}

// Execute runs the gate over a batch with the given rules document. A
// completed run always yields a summary plus both output batches, even when
// every row is flagged or every row is clean. Configuration failures abort
// before any row is scanned and produce no partial output.
func (s *ValidationService) Execute(ctx context.Context, batch *domain.Batch, doc *config.RulesDocument) (*RunResult, error) {
	runID := uuid.New().String()
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "validation.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("batch.rows", batch.Len()),
		))
	defer span.End()

	logger := s.logger.With(slog.String("run_id", runID))
	logger.InfoContext(ctx, "validation run started",
		slog.Int("rows", batch.Len()),
		slog.Int("columns", len(batch.Columns)))

	set, mapping, err := doc.Build()
	if err != nil {
		logger.ErrorContext(ctx, "rules document rejected", slog.String("error", err.Error()))
		return nil, apierrors.ErrInvalidRulesDoc(err)
	}

	verdicts, err := s.engine.Validate(ctx, batch, set, mapping)
	if err != nil {
		logger.ErrorContext(ctx, "validation failed", slog.String("error", err.Error()))
		return nil, err
	}
	span.AddEvent("scan complete")

	clean, flagged, err := quarantine.Partition(batch, verdicts)
	if err != nil {
		logger.ErrorContext(ctx, "partition failed", slog.String("error", err.Error()))
		return nil, err
	}
	span.AddEvent("partition complete")

	summary := report.Summarize(runID, verdicts)

	run := &Run{
		ID:        runID,
		CreatedAt: start.UTC(),
		Summary:   summary,
	}
	if s.runsDir != "" {
		run.CleanPath = filepath.Join(s.runsDir, runID, "clean_transactions.csv")
		run.FlaggedPath = filepath.Join(s.runsDir, runID, "failed_transactions.csv")
		if err := s.csv.WriteBatch(run.CleanPath, clean); err != nil {
			return nil, err
		}
		if err := s.csv.WriteBatch(run.FlaggedPath, flagged); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.runs[runID] = run
	s.mu.Unlock()

	s.record(ctx, summary, time.Since(start))

	logger.InfoContext(ctx, "validation run completed",
		slog.Int("clean_rows", summary.CleanRows),
		slog.Int("flagged_rows", summary.FlaggedRows),
		slog.Bool("gate_passed", summary.Passed),
		slog.Duration("duration", time.Since(start)))

	return &RunResult{Run: run, Clean: clean, Flagged: flagged}, nil
}

// GetRun returns a completed run by ID.
func (s *ValidationService) GetRun(id string) (*Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok
}

// ArtifactPath returns the exported file for a run. kind is "clean" or
// "flagged".
func (s *ValidationService) ArtifactPath(id, kind string) (string, error) {
	run, ok := s.GetRun(id)
	if !ok {
		return "", apierrors.ErrRunNotFound
	}
	switch kind {
	case "clean":
		if run.CleanPath == "" {
			return "", apierrors.ErrRunNotFound
		}
		return run.CleanPath, nil
	case "flagged":
		if run.FlaggedPath == "" {
			return "", apierrors.ErrRunNotFound
		}
		return run.FlaggedPath, nil
	default:
		return "", apierrors.NewWithDetails(400, "INVALID_PARAMETER", "Unknown artifact kind", kind)
	}
}

func (s *ValidationService) record(ctx context.Context, summary domain.Summary, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RunsTotal.Add(ctx, 1)
	s.metrics.RowsValidated.Add(ctx, int64(summary.TotalRows))
	s.metrics.RowsQuarantined.Add(ctx, int64(summary.FlaggedRows))
	if !summary.Passed {
		s.metrics.GateFailures.Add(ctx, 1)
	}
	s.metrics.RunDurationMilli.Record(ctx, elapsed.Milliseconds())
}
