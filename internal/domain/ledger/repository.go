package ledger

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EntryFilter narrows an entry listing
type EntryFilter struct {
	shared.Filter
	CustomerIDs []uuid.UUID
	Type        EntryType
	Range       shared.DateRange
}

// EntryRepository persists ledger entries. It never touches customer
// balances; callers apply effects themselves.
type EntryRepository interface {
	Create(ctx context.Context, entry *Entry) error
	FindByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	Update(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByCustomer returns entries ordered by entry date, then creation time.
	FindByCustomer(ctx context.Context, customerID uuid.UUID, r shared.DateRange) ([]Entry, error)
	// FindBySource returns the entry of type t generated by source, or ErrNotFound.
	FindBySource(ctx context.Context, source Source, t EntryType) (*Entry, error)
	ExistsBySource(ctx context.Context, source Source, t EntryType) (bool, error)
	FindAll(ctx context.Context, filter EntryFilter) ([]Entry, int64, error)
}
