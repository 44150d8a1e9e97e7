package collection

import (
	"context"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/collection"
	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/uow"
	"github.com/dms/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const originCollection = "collection"

// Service handles collection-related business operations. Status changes
// that carry a ledger effect post the entry, move the customer's outstanding
// and write the new status in one transaction.
type Service struct {
	uow         uow.UnitOfWork
	collections collection.Repository
	customers   partner.CustomerRepository
	metrics     *telemetry.LedgerMetrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewService creates a new collection Service
func NewService(
	unit uow.UnitOfWork,
	collections collection.Repository,
	customers partner.CustomerRepository,
	metrics *telemetry.LedgerMetrics,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = telemetry.NopLedgerMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		uow:         unit,
		collections: collections,
		customers:   customers,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Create records a pending collection with the next number of the year
func (s *Service) Create(ctx context.Context, p identity.Principal, req CreateCollectionRequest) (resp *CollectionResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "collection.create", attribute.String("customer_id", req.CustomerID.String()))
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

	salesmanID := req.SalesmanID
	switch {
	case p.Role == identity.RoleSalesman:
		id := p.ProfileID
		salesmanID = &id
	case salesmanID == nil && customer.SalesmanID != nil:
		id := *customer.SalesmanID
		salesmanID = &id
	}

	details := collection.PaymentDetails{
		Reference:    strings.TrimSpace(req.Reference),
		BankName:     strings.TrimSpace(req.BankName),
		ChequeNumber: strings.TrimSpace(req.ChequeNumber),
		ChequeDate:   req.ChequeDate,
		DepositDate:  req.DepositDate,
	}
	collectionDate := s.now()
	if req.CollectionDate != nil {
		collectionDate = *req.CollectionDate
	}
	year := s.now().UTC().Year()

	var created *collection.Collection
	err = s.uow.Do(ctx, []string{uow.CollectionNumberLock(year)}, func(ctx context.Context, repos uow.Repositories) error {
		count, err := repos.Collections.CountByNumberPrefix(ctx, collection.NumberPrefix(year))
		if err != nil {
			return err
		}
		c, err := collection.NewCollection(
			collection.FormatNumber(year, count+1),
			customer.ID,
			salesmanID,
			req.Amount,
			collection.PaymentMode(req.PaymentMode),
			details,
			collectionDate,
			p.UserID,
		)
		if err != nil {
			return err
		}
		c.Notes = strings.TrimSpace(req.Notes)
		if err := repos.Collections.Create(ctx, c); err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("collection created",
		zap.String("collection_id", created.ID.String()),
		zap.String("collection_number", created.CollectionNumber),
		zap.String("customer_id", created.CustomerID.String()),
		zap.String("amount", created.Amount.String()),
		zap.String("payment_mode", string(created.PaymentMode)),
	)
	out := ToCollectionResponse(created)
	return &out, nil
}

// GetByID returns one collection the principal may see
func (s *Service) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*CollectionResponse, error) {
	c, err := s.collections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := identity.Authorize(p, owner(c)); err != nil {
		return nil, err
	}
	resp := ToCollectionResponse(c)
	return &resp, nil
}

// List returns a page of collections restricted to the principal's scope
func (s *Service) List(ctx context.Context, p identity.Principal, filter CollectionListFilter) ([]CollectionResponse, int64, error) {
	domainFilter := collection.Filter{
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
		st, err := collection.ParseStatus(filter.Status)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Status = st
	}

	rows, total, err := s.collections.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CollectionResponse, len(rows))
	for i := range rows {
		out[i] = ToCollectionResponse(&rows[i])
	}
	return out, total, nil
}

// UpdateStatus writes a new status. Only pending→approved, cleared→bounced
// (also reached from approved) and bounced→cleared touch the ledger; every
// other change is a plain field update. Admin only.
func (s *Service) UpdateStatus(ctx context.Context, p identity.Principal, id uuid.UUID, req UpdateStatusRequest) (resp *StatusChangeResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "collection.update_status",
		attribute.String("collection_id", id.String()),
		attribute.String("status", req.Status),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}
	to, err := collection.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	current, err := s.collections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, p, current.CustomerID, id, req.Version, func(c *collection.Collection) (collection.Effect, bool, error) {
		return c.ChangeStatus(to)
	})
}

// Cancel moves a pending collection to cancelled and posts a debit reversal.
// Any other status is rejected.
func (s *Service) Cancel(ctx context.Context, p identity.Principal, id uuid.UUID) (resp *StatusChangeResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "collection.cancel", attribute.String("collection_id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := identity.RequireRole(p, identity.RoleAdmin, identity.RoleSalesman); err != nil {
		return nil, err
	}
	current, err := s.collections.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := identity.Authorize(p, owner(current)); err != nil {
		return nil, err
	}

	return s.transition(ctx, p, current.CustomerID, id, nil, func(c *collection.Collection) (collection.Effect, bool, error) {
		effect, err := c.Cancel()
		return effect, err == nil, err
	})
}

type mutation func(c *collection.Collection) (collection.Effect, bool, error)

// transition reloads the collection under the customer lock, applies mutate
// and persists the status together with its ledger effect.
func (s *Service) transition(ctx context.Context, p identity.Principal, customerID, id uuid.UUID, version *int, mutate mutation) (*StatusChangeResponse, error) {
	var (
		result    StatusChangeResponse
		from      collection.Status
		collected *collection.Collection
	)
	err := s.uow.Do(ctx, []string{uow.CustomerLock(customerID)}, func(ctx context.Context, repos uow.Repositories) error {
		result = StatusChangeResponse{}
		c, err := repos.Collections.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if version != nil && *version != c.Version {
			return shared.ErrVersionMismatch
		}
		customer, err := repos.Customers.FindByIDForUpdate(ctx, c.CustomerID)
		if err != nil {
			return err
		}

		from = c.Status
		effect, hasEffect, err := mutate(c)
		if err != nil {
			return err
		}
		if err := repos.Collections.SaveWithLock(ctx, c); err != nil {
			return err
		}

		result.Outstanding = customer.OutstandingAmount
		if hasEffect {
			entry, outstanding, err := s.post(ctx, repos, customer, c, effect, p.UserID)
			if err != nil {
				return err
			}
			entryID := entry.ID
			result.EntryID = &entryID
			result.EntryType = string(entry.Type)
			result.Outstanding = outstanding
		}
		collected = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.EntryID != nil {
		s.metrics.EntryPosted(ctx, result.EntryType, originCollection)
	}
	s.logger.Info("collection status changed",
		zap.String("collection_id", collected.ID.String()),
		zap.String("customer_id", collected.CustomerID.String()),
		zap.String("from_status", string(from)),
		zap.String("to_status", string(collected.Status)),
		zap.String("entry_type", result.EntryType),
		zap.String("outstanding", result.Outstanding.String()),
	)
	result.Collection = ToCollectionResponse(collected)
	return &result, nil
}

// post appends the effect's entry and moves the cached outstanding
func (s *Service) post(
	ctx context.Context,
	repos uow.Repositories,
	customer *partner.Customer,
	c *collection.Collection,
	effect collection.Effect,
	actor uuid.UUID,
) (*ledger.Entry, decimal.Decimal, error) {
	entry, err := ledger.NewEntry(
		c.CustomerID,
		s.now(),
		effect.Description+" "+c.CollectionNumber,
		effect.EntryType,
		c.Amount,
		c.LedgerReference(),
		ledger.CollectionSource(c.ID),
		actor,
	)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if err := repos.Entries.Create(ctx, entry); err != nil {
		return nil, decimal.Zero, err
	}

	outstanding := customer.OutstandingAmount
	switch effect.Outstanding {
	case collection.OutstandingIncrease:
		outstanding = outstanding.Add(c.Amount)
	case collection.OutstandingDecrease:
		outstanding = ledger.FloorZero(outstanding.Sub(c.Amount))
	default:
		return entry, outstanding, nil
	}
	if err := repos.Customers.UpdateOutstanding(ctx, customer.ID, outstanding); err != nil {
		return nil, decimal.Zero, err
	}
	return entry, outstanding, nil
}

func owner(c *collection.Collection) identity.Owner {
	return identity.Owner{CustomerID: c.CustomerID, SalesmanID: c.OwnerSalesmanID()}
}
