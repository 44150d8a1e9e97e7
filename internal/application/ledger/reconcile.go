package ledger

import (
	"context"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/uow"
	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const reconcilePageSize = 100

// Reconciler recomputes each customer's balance from the ledger and compares
// it with the cached outstanding amount. Differences come from failed order
// postings and from cancellations of pending collections.
type Reconciler struct {
	uow       uow.UnitOfWork
	customers partner.CustomerRepository
	metrics   *telemetry.LedgerMetrics
	logger    *zap.Logger
}

// NewReconciler creates a new Reconciler
func NewReconciler(unit uow.UnitOfWork, customers partner.CustomerRepository, metrics *telemetry.LedgerMetrics, logger *zap.Logger) *Reconciler {
	if metrics == nil {
		metrics = telemetry.NopLedgerMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{uow: unit, customers: customers, metrics: metrics, logger: logger}
}

// Reconcile checks one customer under its lock. With repair the computed
// value, floored at zero, is written back to the cache.
func (r *Reconciler) Reconcile(ctx context.Context, customerID uuid.UUID, repair bool) (ReconcileResult, error) {
	var result ReconcileResult
	err := r.uow.Do(ctx, []string{uow.CustomerLock(customerID)}, func(ctx context.Context, repos uow.Repositories) error {
		customer, err := repos.Customers.FindByIDForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		entries, err := repos.Entries.FindByCustomer(ctx, customerID, shared.DateRange{})
		if err != nil {
			return err
		}
		computed := ledger.FloorZero(ledger.Fold(entries))
		result = ReconcileResult{
			CustomerID: customerID,
			Cached:     customer.OutstandingAmount,
			Computed:   computed,
			Drift:      customer.OutstandingAmount.Sub(computed),
		}
		if result.InBalance() || !repair {
			return nil
		}
		if err := repos.Customers.UpdateOutstanding(ctx, customerID, computed); err != nil {
			return err
		}
		result.Repaired = true
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	if !result.InBalance() {
		r.logger.Warn("customer outstanding drifted from ledger",
			zap.String("customer_id", customerID.String()),
			zap.String("cached", result.Cached.String()),
			zap.String("computed", result.Computed.String()),
			zap.String("drift", result.Drift.String()),
			zap.Bool("repaired", result.Repaired),
		)
	}
	return result, nil
}

// ReconcileAll walks every customer page by page. A failure on one customer
// stops the run and returns what was gathered so far.
func (r *Reconciler) ReconcileAll(ctx context.Context, repair bool) (*ReconcileReport, error) {
	r.metrics.ReconcileRun(ctx)
	report := &ReconcileReport{Drifted: []ReconcileResult{}}

	filter := partner.CustomerFilter{Filter: shared.Filter{
		Page:     1,
		PageSize: reconcilePageSize,
		OrderBy:  "created_at",
		OrderDir: "asc",
	}}
	seen := make(map[uuid.UUID]struct{})
	for {
		customers, total, err := r.customers.FindAll(ctx, filter)
		if err != nil {
			return report, err
		}
		for i := range customers {
			id := customers[i].ID
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			result, err := r.Reconcile(ctx, id, repair)
			if err != nil {
				r.finish(ctx, report, repair)
				return report, err
			}
			report.Checked++
			if !result.InBalance() {
				report.Drifted = append(report.Drifted, result)
				if result.Repaired {
					report.Repaired++
				}
			}
		}
		if len(customers) == 0 || int64(filter.Page*filter.PageSize) >= total {
			break
		}
		filter.Page++
	}

	r.finish(ctx, report, repair)
	return report, nil
}

func (r *Reconciler) finish(ctx context.Context, report *ReconcileReport, repair bool) {
	r.metrics.Drift(ctx, len(report.Drifted), repair)
	total := decimal.Zero
	for _, d := range report.Drifted {
		total = total.Add(d.Drift.Abs())
	}
	r.logger.Info("ledger reconcile finished",
		zap.Int("checked", report.Checked),
		zap.Int("drifted", len(report.Drifted)),
		zap.Int("repaired", report.Repaired),
		zap.String("total_drift", total.String()),
	)
}
