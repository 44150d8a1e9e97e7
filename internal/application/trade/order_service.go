package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/catalog"
	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/dms/backend/internal/domain/uow"
	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderService handles order business operations
type OrderService struct {
	uow            uow.UnitOfWork
	orders         trade.OrderRepository
	customers      partner.CustomerRepository
	products       catalog.ProductRepository
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewOrderService creates a new OrderService
func NewOrderService(
	unit uow.UnitOfWork,
	orders trade.OrderRepository,
	customers partner.CustomerRepository,
	products catalog.ProductRepository,
	metrics *telemetry.LedgerMetrics,
	logger *zap.Logger,
) *OrderService {
	if metrics == nil {
		metrics = telemetry.NopLedgerMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		uow:       unit,
		orders:    orders,
		customers: customers,
		products:  products,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the publisher that receives status change events
// once they have committed
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create books a pending order with the next order number of the year
func (s *OrderService) Create(ctx context.Context, p identity.Principal, req CreateOrderRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "order.create", attribute.String("customer_id", req.CustomerID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := identity.RequireRole(p, identity.RoleAdmin, identity.RoleSalesman); err != nil {
		return nil, err
	}
	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := identity.Authorize(p, identity.Owner{CustomerID: customer.ID, SalesmanID: customer.OwnerSalesmanID()}); err != nil {
		return nil, err
	}
	if !customer.IsActive {
		return nil, shared.NewInvalidStateError("customer is inactive")
	}
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	salesmanID := req.SalesmanID
	switch {
	case p.Role == identity.RoleSalesman:
		id := p.ProfileID
		salesmanID = &id
	case salesmanID == nil && customer.SalesmanID != nil:
		id := *customer.SalesmanID
		salesmanID = &id
	}
	year := s.now().UTC().Year()

	var created *trade.Order
	err = s.uow.Do(ctx, []string{uow.OrderNumberLock(year)}, func(ctx context.Context, repos uow.Repositories) error {
		count, err := repos.Orders.CountByOrderNumberPrefix(ctx, trade.OrderNumberPrefix(year))
		if err != nil {
			return err
		}
		order, err := trade.NewOrder(trade.FormatOrderNumber(year, count+1), customer.ID, salesmanID, items, p.UserID)
		if err != nil {
			return err
		}
		if req.Notes != "" {
			order.SetNotes(req.Notes)
		}
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", created.ID.String()),
		zap.String("order_number", created.OrderNumber),
		zap.String("customer_id", created.CustomerID.String()),
		zap.String("net_amount", created.NetAmount.String()),
	)
	out := ToOrderResponse(created)
	return &out, nil
}

// GetByID returns one order the principal may see
func (s *OrderService) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := identity.Authorize(p, owner(order)); err != nil {
		return nil, err
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List returns a page of orders restricted to the principal's scope
func (s *OrderService) List(ctx context.Context, p identity.Principal, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := trade.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		CustomerID: filter.CustomerID,
		SalesmanID: filter.SalesmanID,
	}
	scope := identity.ScopeFor(p)
	if scope.CustomerID != nil {
		domainFilter.CustomerID = scope.CustomerID
	}
	if scope.SalesmanID != nil {
		domainFilter.SalesmanID = scope.SalesmanID
	}
	if filter.Status != "" {
		st, err := trade.ParseOrderStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Status = st
	}

	orders, total, err := s.orders.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out, total, nil
}

// UpdateItems replaces the lines of a pending or confirmed order
func (s *OrderService) UpdateItems(ctx context.Context, p identity.Principal, id uuid.UUID, req UpdateItemsRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "order.update_items", attribute.String("order_id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := identity.RequireRole(p, identity.RoleAdmin, identity.RoleSalesman); err != nil {
		return nil, err
	}
	current, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := identity.Authorize(p, owner(current)); err != nil {
		return nil, err
	}
	items, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	var updated *trade.Order
	err = s.uow.Do(ctx, nil, func(ctx context.Context, repos uow.Repositories) error {
		order, err := repos.Orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != order.Version {
			return shared.ErrVersionMismatch
		}
		if err := order.ReplaceItems(items); err != nil {
			return err
		}
		if err := repos.Orders.SaveWithLock(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order items replaced",
		zap.String("order_id", updated.ID.String()),
		zap.Int("items", len(updated.Items)),
		zap.String("net_amount", updated.NetAmount.String()),
	)
	out := ToOrderResponse(updated)
	return &out, nil
}

// UpdateStatus writes a new status, allocating a bill number on the way to
// confirmed or delivered. The status change commits on its own; the ledger
// follows through the published event and a failure there is reported as a
// reconciliation warning instead of an error.
func (s *OrderService) UpdateStatus(ctx context.Context, p identity.Principal, id uuid.UUID, req UpdateOrderStatusRequest) (resp *StatusChangeResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "order.update_status",
		attribute.String("order_id", id.String()),
		attribute.String("status", req.Status),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := identity.RequireRole(p, identity.RoleAdmin, identity.RoleSalesman); err != nil {
		return nil, err
	}
	to, err := trade.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}
	current, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := identity.Authorize(p, owner(current)); err != nil {
		return nil, err
	}

	year := s.now().UTC().Year()
	billLocked := current.NeedsBillNumber(to)

	var (
		updated *trade.Order
		from    trade.OrderStatus
	)
	change := func(ctx context.Context, repos uow.Repositories) error {
		order, err := repos.Orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Version != nil && *req.Version != order.Version {
			return shared.ErrVersionMismatch
		}
		from = order.Status

		if order.NeedsBillNumber(to) {
			if !billLocked {
				return errBillNumberUnlocked
			}
			count, err := repos.Orders.CountByBillNumberPrefix(ctx, trade.BillNumberPrefix(year))
			if err != nil {
				return err
			}
			if err := order.AssignBillNumber(trade.FormatBillNumber(year, count+1)); err != nil {
				return err
			}
		}
		if err := order.ChangeStatus(to); err != nil {
			return err
		}
		if err := repos.Orders.SaveWithLock(ctx, order); err != nil {
			return err
		}
		if to == trade.OrderStatusConfirmed {
			s.warnOverCreditLimit(ctx, repos, order)
		}
		updated = order
		return nil
	}

	err = s.uow.Do(ctx, billNumberLocks(billLocked, year), change)
	if errors.Is(err, errBillNumberUnlocked) {
		// the order lost its bill number after the first read
		billLocked = true
		err = s.uow.Do(ctx, billNumberLocks(billLocked, year), change)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.String("order_id", updated.ID.String()),
		zap.String("order_number", updated.OrderNumber),
		zap.String("bill_number", updated.BillNumber),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(updated.Status)),
	)

	out := &StatusChangeResponse{}
	if err := s.publish(ctx, updated); err != nil {
		s.metrics.ReconciliationWarning(ctx, "order_ledger_sync_failed")
		s.logger.Warn("ledger reconciliation warning",
			zap.String("order_id", updated.ID.String()),
			zap.String("order_number", updated.OrderNumber),
			zap.String("customer_id", updated.CustomerID.String()),
			zap.String("from_status", string(from)),
			zap.String("to_status", string(updated.Status)),
			zap.String("net_amount", updated.NetAmount.String()),
			zap.Error(err),
		)
		out.LedgerWarning = "order status saved but the customer ledger was not updated"
	}
	out.OrderResponse = ToOrderResponse(updated)
	return out, nil
}

// errBillNumberUnlocked aborts a status change that has to allocate a bill
// number without holding the year's allocation lock.
var errBillNumberUnlocked = errors.New("bill number allocation requires the bill number lock")

func billNumberLocks(needed bool, year int) []string {
	if !needed {
		return nil
	}
	return []string{uow.BillNumberLock(year)}
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) error {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return nil
	}
	return s.eventPublisher.Publish(ctx, events...)
}

// warnOverCreditLimit logs confirmations that take the customer past its
// credit limit. The limit is advisory.
func (s *OrderService) warnOverCreditLimit(ctx context.Context, repos uow.Repositories, order *trade.Order) {
	customer, err := repos.Customers.FindByID(ctx, order.CustomerID)
	if err != nil {
		return
	}
	if customer.ExceedsCreditLimit(order.NetAmount) {
		s.logger.Warn("order exceeds customer credit limit",
			zap.String("order_id", order.ID.String()),
			zap.String("customer_id", customer.ID.String()),
			zap.String("credit_limit", customer.CreditLimit.String()),
			zap.String("outstanding", customer.OutstandingAmount.String()),
			zap.String("net_amount", order.NetAmount.String()),
		)
	}
}

// resolveItems fills product name, default rate and GST percentage from the catalog
func (s *OrderService) resolveItems(ctx context.Context, reqs []OrderItemRequest) ([]trade.ItemInput, error) {
	if len(reqs) == 0 {
		return nil, shared.NewValidationError("order must have at least one item")
	}
	ids := make([]uuid.UUID, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]trade.ItemInput, 0, len(reqs))
	for _, r := range reqs {
		product, ok := byID[r.ProductID]
		if !ok {
			return nil, shared.NewNotFoundError(fmt.Sprintf("product %s", r.ProductID))
		}
		if !product.IsActive {
			return nil, shared.NewValidationError("product " + strings.TrimSpace(product.Name) + " is inactive")
		}
		rate := product.Rate
		if r.Rate != nil {
			rate = *r.Rate
		}
		items = append(items, trade.ItemInput{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    r.Quantity,
			Rate:        rate,
			GSTRate:     product.GSTRate,
			Discount:    r.Discount,
		})
	}
	return items, nil
}

func owner(o *trade.Order) identity.Owner {
	return identity.Owner{CustomerID: o.CustomerID, SalesmanID: o.OwnerSalesmanID()}
}
