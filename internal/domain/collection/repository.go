package collection

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter narrows a collection listing
type Filter struct {
	shared.Filter
	CustomerID *uuid.UUID
	SalesmanID *uuid.UUID
	Status     Status
}

// Repository defines the interface for collection persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Collection, error)
	FindAll(ctx context.Context, filter Filter) ([]Collection, int64, error)
	Create(ctx context.Context, c *Collection) error

	// SaveWithLock persists c only if the stored version is c.Version-1.
	SaveWithLock(ctx context.Context, c *Collection) error

	// CountByNumberPrefix counts collections whose number starts with prefix.
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
}
