// Package engine runs a rule set over a batch of rows and produces per-row
// verdicts. A run is a strict linear pipeline: Configure (resolve roles,
// reset uniqueness state), then Scan. Any resolution failure terminates the
// run before a single row is read.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"watchdog/internal/rules"
	"watchdog/pkg/contracts/domain"
)

// Engine applies a rule set to batches. The zero value is not usable; use New.
type Engine struct {
	logger       *slog.Logger
	workers      int
	requireRules bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of concurrent workers for the scan of pure
// rules. Values below 2 select the sequential path. Output is identical
// either way.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithRequiredRules makes Validate fail with EmptyRuleSetError when the rule
// set has no enabled rules instead of passing every row.
func WithRequiredRules() Option {
	return func(e *Engine) { e.requireRules = true }
}

// New creates a validation engine.
func New(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger, workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate applies every enabled rule, in declared order, to every row of the
// batch and returns one verdict per row, in batch order. Rules do not
// short-circuit: a row collects every violation it incurs. Disabled rules are
// skipped entirely.
func (e *Engine) Validate(ctx context.Context, batch *domain.Batch, set rules.Set, mapping domain.FieldMapping) ([]domain.Verdict, error) {
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule set: %w", err)
	}

	bindings, err := Resolve(set, mapping, batch)
	if err != nil {
		return nil, err
	}
	if len(bindings) == 0 && e.requireRules {
		return nil, &EmptyRuleSetError{}
	}

	e.logger.InfoContext(ctx, "starting validation scan",
		slog.Int("rows", batch.Len()),
		slog.Int("enabled_rules", len(bindings)),
		slog.Int("workers", e.workers))

	state := rules.NewRunState()

	var verdicts []domain.Verdict
	if e.workers > 1 && batch.Len() > 1 {
		verdicts, err = e.scanParallel(ctx, batch, bindings, state)
	} else {
		verdicts, err = e.scanSequential(ctx, batch, bindings, state)
	}
	if err != nil {
		return nil, err
	}

	return verdicts, nil
}

func (e *Engine) scanSequential(ctx context.Context, batch *domain.Batch, bindings []Binding, state *rules.RunState) ([]domain.Verdict, error) {
	verdicts := make([]domain.Verdict, batch.Len())
	for i, row := range batch.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		verdicts[i] = evaluateRow(i, row, bindings, state)
	}
	return verdicts, nil
}

// scanParallel shards the pure rules across workers, then runs stateful
// (uniqueness) rules in a single ordered pass so that first-occurrence-wins
// is decided by original row index, not worker completion order. Violations
// are assembled per row in rule declaration order, so the result is
// indistinguishable from the sequential scan.
func (e *Engine) scanParallel(ctx context.Context, batch *domain.Batch, bindings []Binding, state *rules.RunState) ([]domain.Verdict, error) {
	type cell struct {
		failed bool
		reason string
	}
	results := make([][]cell, batch.Len())
	for i := range results {
		results[i] = make([]cell, len(bindings))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	shard := (batch.Len() + e.workers - 1) / e.workers
	for lo := 0; lo < batch.Len(); lo += shard {
		hi := lo + shard
		if hi > batch.Len() {
			hi = batch.Len()
		}
		lo, hi := lo, hi
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				row := batch.Rows[i]
				for j, b := range bindings {
					if b.Rule.Stateful() {
						continue
					}
					passed, reason := b.Rule.Evaluate(row[b.Field], nil)
					if !passed {
						results[i][j] = cell{failed: true, reason: reason}
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Ordered pass for uniqueness rules.
	for i, row := range batch.Rows {
		for j, b := range bindings {
			if !b.Rule.Stateful() {
				continue
			}
			passed, reason := b.Rule.Evaluate(row[b.Field], state)
			if !passed {
				results[i][j] = cell{failed: true, reason: reason}
			}
		}
	}

	verdicts := make([]domain.Verdict, batch.Len())
	for i := range results {
		v := domain.Verdict{RowIndex: i, Passed: true}
		for j, c := range results[i] {
			if c.failed {
				v.Violations = append(v.Violations, domain.Violation{
					Rule:   bindings[j].Rule.Name,
					Reason: c.reason,
				})
			}
		}
		v.Passed = len(v.Violations) == 0
		verdicts[i] = v
	}
	return verdicts, nil
}

func evaluateRow(index int, row domain.Row, bindings []Binding, state *rules.RunState) domain.Verdict {
	v := domain.Verdict{RowIndex: index, Passed: true}
	for _, b := range bindings {
		passed, reason := b.Rule.Evaluate(row[b.Field], state)
		if !passed {
			v.Violations = append(v.Violations, domain.Violation{
				Rule:   b.Rule.Name,
				Reason: reason,
			})
		}
	}
	v.Passed = len(v.Violations) == 0
	return v
}
