// Package uow defines the transaction boundary used by every operation that
// moves a customer's outstanding balance.
package uow

import (
	"context"
	"fmt"

	"github.com/dms/backend/internal/domain/collection"
	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/google/uuid"
)

// Repositories are bound to one transaction. They must not be used after
// the function passed to Do returns.
type Repositories struct {
	Customers   partner.CustomerRepository
	Entries     ledger.EntryRepository
	Collections collection.Repository
	Orders      trade.OrderRepository
}

// UnitOfWork runs fn atomically. Implementations take the named advisory
// locks before opening the transaction, bound each attempt by a timeout
// and retry transient failures; fn may therefore run more than once.
type UnitOfWork interface {
	Do(ctx context.Context, locks []string, fn func(ctx context.Context, repos Repositories) error) error
}

// CustomerLock serializes balance updates for one customer
func CustomerLock(customerID uuid.UUID) string {
	return "customer:" + customerID.String()
}

// BillNumberLock serializes invoice number allocation within a year
func BillNumberLock(year int) string {
	return fmt.Sprintf("bill-number:%d", year)
}

// OrderNumberLock serializes order number allocation within a year
func OrderNumberLock(year int) string {
	return fmt.Sprintf("order-number:%d", year)
}

// CollectionNumberLock serializes collection number allocation within a year
func CollectionNumberLock(year int) string {
	return fmt.Sprintf("collection-number:%d", year)
}
