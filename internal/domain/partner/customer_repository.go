package partner

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerFilter narrows a customer listing
type CustomerFilter struct {
	shared.Filter
	SalesmanID *uuid.UUID
	Territory  string
}

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByIDForUpdate loads the customer and locks its row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Customer, error)

	FindAll(ctx context.Context, filter CustomerFilter) ([]Customer, int64, error)
	FindByMobile(ctx context.Context, mobile string) (*Customer, error)
	ExistsByMobile(ctx context.Context, mobile string) (bool, error)

	Create(ctx context.Context, customer *Customer) error
	Save(ctx context.Context, customer *Customer) error

	// UpdateOutstanding writes only the cached outstanding amount.
	UpdateOutstanding(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

// SalesmanRepository defines the interface for salesman persistence
type SalesmanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Salesman, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Salesman, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Salesman, int64, error)
	ExistsByMobile(ctx context.Context, mobile string) (bool, error)
	Create(ctx context.Context, salesman *Salesman) error
}
