package services

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the service-level instruments, exported through the
// Prometheus endpoint.
type Metrics struct {
	RunsTotal        metric.Int64Counter
	RowsValidated    metric.Int64Counter
	RowsQuarantined  metric.Int64Counter
	GateFailures     metric.Int64Counter
	RunDurationMilli metric.Int64Histogram
}

// NewMetrics creates the validation run instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.RunsTotal, err = meter.Int64Counter("watchdog_runs_total",
		metric.WithDescription("Total validation runs executed")); err != nil {
		return nil, fmt.Errorf("failed to create runs counter: %w", err)
	}
	if m.RowsValidated, err = meter.Int64Counter("watchdog_rows_validated_total",
		metric.WithDescription("Total rows scanned by the validation engine")); err != nil {
		return nil, fmt.Errorf("failed to create rows counter: %w", err)
	}
	if m.RowsQuarantined, err = meter.Int64Counter("watchdog_rows_quarantined_total",
		metric.WithDescription("Total rows routed to quarantine")); err != nil {
		return nil, fmt.Errorf("failed to create quarantine counter: %w", err)
	}
	if m.GateFailures, err = meter.Int64Counter("watchdog_gate_failures_total",
		metric.WithDescription("Validation runs whose gate decision was FAIL")); err != nil {
		return nil, fmt.Errorf("failed to create gate counter: %w", err)
	}
	if m.RunDurationMilli, err = meter.Int64Histogram("watchdog_run_duration_ms",
		metric.WithDescription("Validation run duration in milliseconds")); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	return m, nil
}
