package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/dms/backend/internal/domain/uow"
	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const originOrder = "order"

// DeliveryReconciler keeps the customer ledger in step with delivered orders.
// A delivery posts one order entry for the net amount; moving the order away
// from delivered removes that entry again.
type DeliveryReconciler struct {
	uow     uow.UnitOfWork
	metrics *telemetry.LedgerMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewDeliveryReconciler creates a new handler for order status events
func NewDeliveryReconciler(unit uow.UnitOfWork, metrics *telemetry.LedgerMetrics, logger *zap.Logger) *DeliveryReconciler {
	if metrics == nil {
		metrics = telemetry.NopLedgerMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryReconciler{uow: unit, metrics: metrics, logger: logger, now: time.Now}
}

// EventTypes returns the event types this handler is interested in
func (h *DeliveryReconciler) EventTypes() []string {
	return []string{trade.EventTypeOrderStatusChanged}
}

// Handle posts or removes the order entry for an OrderStatusChangedEvent
func (h *DeliveryReconciler) Handle(ctx context.Context, event shared.DomainEvent) (err error) {
	changed, ok := event.(*trade.OrderStatusChangedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypeOrderStatusChanged),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderStatusChanged, event.EventType())
	}

	switch {
	case changed.IsDelivery():
		ctx, span := telemetry.StartSpan(ctx, "ledger.post_delivery", attribute.String("order_id", changed.OrderID.String()))
		defer func() { telemetry.EndSpan(span, err) }()
		return h.postDelivery(ctx, changed)
	case changed.IsUndelivery():
		ctx, span := telemetry.StartSpan(ctx, "ledger.reverse_delivery", attribute.String("order_id", changed.OrderID.String()))
		defer func() { telemetry.EndSpan(span, err) }()
		return h.reverseDelivery(ctx, changed)
	default:
		return nil
	}
}

func (h *DeliveryReconciler) postDelivery(ctx context.Context, ev *trade.OrderStatusChangedEvent) error {
	source := ledger.OrderSource(ev.OrderID)
	var (
		posted      *ledger.Entry
		outstanding = ev.NetAmount
	)
	err := h.uow.Do(ctx, []string{uow.CustomerLock(ev.CustomerID)}, func(ctx context.Context, repos uow.Repositories) error {
		posted = nil
		exists, err := repos.Entries.ExistsBySource(ctx, source, ledger.EntryTypeOrder)
		if err != nil {
			return fmt.Errorf("failed to check existing order entry: %w", err)
		}
		if exists {
			return nil
		}
		customer, err := repos.Customers.FindByIDForUpdate(ctx, ev.CustomerID)
		if err != nil {
			return err
		}
		entry, err := ledger.NewEntry(
			ev.CustomerID,
			h.now(),
			"Order delivered "+ev.LedgerReference(),
			ledger.EntryTypeOrder,
			ev.NetAmount,
			ev.LedgerReference(),
			source,
			uuid.Nil,
		)
		if err != nil {
			return err
		}
		if err := repos.Entries.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to save order entry: %w", err)
		}
		outstanding = customer.OutstandingAmount.Add(ev.NetAmount)
		if err := repos.Customers.UpdateOutstanding(ctx, customer.ID, outstanding); err != nil {
			return err
		}
		posted = entry
		return nil
	})
	if err != nil {
		return err
	}

	if posted == nil {
		h.logger.Info("order entry already posted, skipping",
			zap.String("order_id", ev.OrderID.String()),
			zap.String("order_number", ev.OrderNumber),
		)
		return nil
	}
	h.metrics.EntryPosted(ctx, string(ledger.EntryTypeOrder), originOrder)
	h.logger.Info("order entry posted",
		zap.String("entry_id", posted.ID.String()),
		zap.String("order_id", ev.OrderID.String()),
		zap.String("reference", posted.Reference),
		zap.String("customer_id", ev.CustomerID.String()),
		zap.String("amount", ev.NetAmount.String()),
		zap.String("outstanding", outstanding.String()),
	)
	return nil
}

func (h *DeliveryReconciler) reverseDelivery(ctx context.Context, ev *trade.OrderStatusChangedEvent) error {
	source := ledger.OrderSource(ev.OrderID)
	var removed *ledger.Entry
	err := h.uow.Do(ctx, []string{uow.CustomerLock(ev.CustomerID)}, func(ctx context.Context, repos uow.Repositories) error {
		removed = nil
		entry, err := repos.Entries.FindBySource(ctx, source, ledger.EntryTypeOrder)
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		customer, err := repos.Customers.FindByIDForUpdate(ctx, ev.CustomerID)
		if err != nil {
			return err
		}
		if err := repos.Entries.Delete(ctx, entry.ID); err != nil {
			return fmt.Errorf("failed to delete order entry: %w", err)
		}
		outstanding := ledger.FloorZero(customer.OutstandingAmount.Sub(ev.NetAmount))
		if err := repos.Customers.UpdateOutstanding(ctx, customer.ID, outstanding); err != nil {
			return err
		}
		removed = entry
		return nil
	})
	if err != nil {
		return err
	}

	if removed == nil {
		h.logger.Warn("no order entry to reverse",
			zap.String("order_id", ev.OrderID.String()),
			zap.String("order_number", ev.OrderNumber),
			zap.String("to_status", string(ev.ToStatus)),
		)
		return nil
	}
	h.logger.Info("order entry reversed",
		zap.String("entry_id", removed.ID.String()),
		zap.String("order_id", ev.OrderID.String()),
		zap.String("customer_id", ev.CustomerID.String()),
		zap.String("amount", ev.NetAmount.String()),
		zap.String("to_status", string(ev.ToStatus)),
	)
	return nil
}

var _ shared.EventHandler = (*DeliveryReconciler)(nil)
