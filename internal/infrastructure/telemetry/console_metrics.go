package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ConsolidationMetrics tracks consolidation runs and their ledger calls.
type ConsolidationMetrics struct {
	runsTotal        *Counter
	unitsTotal       *Counter
	itemsTotal       *Counter
	runDuration      *Histogram
	externalDuration *Histogram
}

// NewConsolidationMetrics registers the consolidation instruments on meter.
func NewConsolidationMetrics(meter metric.Meter) (*ConsolidationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &ConsolidationMetrics{}
	var err error

	if m.runsTotal, err = NewCounter(meter,
		"console_consolidation_runs_total",
		"Settled consolidation runs by outcome",
		"{run}",
	); err != nil {
		return nil, err
	}
	if m.unitsTotal, err = NewCounter(meter,
		"console_consolidation_units_total",
		"Consolidation units by status and failure reason",
		"{unit}",
	); err != nil {
		return nil, err
	}
	if m.itemsTotal, err = NewCounter(meter,
		"console_consolidation_items_total",
		"Order items linked to a checkout",
		"{item}",
	); err != nil {
		return nil, err
	}
	if m.runDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "console_consolidation_run_duration_seconds",
		Description: "Wall time from confirm to settle",
		Unit:        "s",
		Boundaries:  RunDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.externalDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "console_ledger_call_duration_seconds",
		Description: "Ledger call latency by step",
		Unit:        "s",
		Boundaries:  ExternalCallBuckets,
	}); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRun records a settled run.
func (m *ConsolidationMetrics) RecordRun(ctx context.Context, tenantID, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.Inc(ctx, AttrTenantID.String(tenantID), AttrOutcome.String(outcome))
	m.runDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}

// RecordUnit records the result of one unit. reason is empty on success.
func (m *ConsolidationMetrics) RecordUnit(ctx context.Context, succeeded bool, reason string, items int) {
	if m == nil {
		return
	}
	m.unitsTotal.Inc(ctx, AttrSucceeded.Bool(succeeded), AttrReason.String(reason))
	if succeeded {
		m.itemsTotal.Add(ctx, int64(items))
	}
}

// RecordCall records the latency of one ledger call.
func (m *ConsolidationMetrics) RecordCall(ctx context.Context, step string, succeeded bool, d time.Duration) {
	if m == nil {
		return
	}
	m.externalDuration.RecordDuration(ctx, d, AttrStep.String(step), AttrSucceeded.Bool(succeeded))
}
