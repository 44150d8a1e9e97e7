package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics counts ledger postings and reconciliation problems
type LedgerMetrics struct {
	entriesPosted          metric.Int64Counter
	reconciliationWarnings metric.Int64Counter
	driftDetected          metric.Int64Counter
	reconcileRuns          metric.Int64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter. A nil meter
// uses the global provider.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(TracerName)
	}
	m := &LedgerMetrics{}
	var err error
	if m.entriesPosted, err = meter.Int64Counter("ledger.entries.posted",
		metric.WithDescription("Ledger entries written"), metric.WithUnit("{entry}")); err != nil {
		return nil, fmt.Errorf("failed to create counter ledger.entries.posted: %w", err)
	}
	if m.reconciliationWarnings, err = meter.Int64Counter("ledger.reconciliation.warnings",
		metric.WithDescription("Order status changes whose ledger update failed"), metric.WithUnit("{warning}")); err != nil {
		return nil, fmt.Errorf("failed to create counter ledger.reconciliation.warnings: %w", err)
	}
	if m.driftDetected, err = meter.Int64Counter("ledger.balance.drift",
		metric.WithDescription("Customers whose cached outstanding differs from the ledger"), metric.WithUnit("{customer}")); err != nil {
		return nil, fmt.Errorf("failed to create counter ledger.balance.drift: %w", err)
	}
	if m.reconcileRuns, err = meter.Int64Counter("ledger.reconcile.runs",
		metric.WithDescription("Reconcile job runs"), metric.WithUnit("{run}")); err != nil {
		return nil, fmt.Errorf("failed to create counter ledger.reconcile.runs: %w", err)
	}
	return m, nil
}

// NopLedgerMetrics returns metrics bound to the no-op meter, for tests
func NopLedgerMetrics() *LedgerMetrics {
	m, _ := NewLedgerMetrics(noopMeter())
	return m
}

// EntryPosted counts one entry by type and origin (manual, order, collection)
func (m *LedgerMetrics) EntryPosted(ctx context.Context, entryType, origin string) {
	m.entriesPosted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entry_type", entryType),
		attribute.String("origin", origin),
	))
}

// ReconciliationWarning counts a ledger update that failed after its order
// status change committed
func (m *LedgerMetrics) ReconciliationWarning(ctx context.Context, reason string) {
	m.reconciliationWarnings.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// Drift counts customers found out of balance
func (m *LedgerMetrics) Drift(ctx context.Context, customers int, repaired bool) {
	if customers == 0 {
		return
	}
	m.driftDetected.Add(ctx, int64(customers), metric.WithAttributes(attribute.Bool("repaired", repaired)))
}

// ReconcileRun counts one reconcile job run
func (m *LedgerMetrics) ReconcileRun(ctx context.Context) {
	m.reconcileRuns.Add(ctx, 1)
}
