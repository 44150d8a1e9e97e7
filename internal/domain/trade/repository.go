package trade

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderFilter narrows an order listing
type OrderFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	SalesmanID *uuid.UUID
	Status     OrderStatus
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	Create(ctx context.Context, order *Order) error

	// SaveWithLock persists order and its items only if the stored version
	// is order.Version-1.
	SaveWithLock(ctx context.Context, order *Order) error

	// CountByBillNumberPrefix counts orders whose bill number starts with prefix.
	CountByBillNumberPrefix(ctx context.Context, prefix string) (int64, error)
	// CountByOrderNumberPrefix counts orders whose order number starts with prefix.
	CountByOrderNumberPrefix(ctx context.Context, prefix string) (int64, error)
}
