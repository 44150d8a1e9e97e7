package ledger

import (
	"context"
	"fmt"
	"time"

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

const originManual = "manual"

// Service handles manual ledger postings and ledger read models.
// Every posting moves the customer's cached outstanding in the same
// transaction as the entry write.
type Service struct {
	uow        uow.UnitOfWork
	entries    ledger.EntryRepository
	customers  partner.CustomerRepository
	reconciler *Reconciler
	metrics    *telemetry.LedgerMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new ledger Service
func NewService(
	unit uow.UnitOfWork,
	entries ledger.EntryRepository,
	customers partner.CustomerRepository,
	reconciler *Reconciler,
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
		uow:        unit,
		entries:    entries,
		customers:  customers,
		reconciler: reconciler,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateEntry appends a manual entry and applies it to the customer's
// outstanding. Debit and adjustment add, credit subtracts with a floor of
// zero, and an opening balance replaces the outstanding.
func (s *Service) CreateEntry(ctx context.Context, p identity.Principal, req CreateEntryRequest) (resp *EntryResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ledger.create_entry",
		attribute.String("customer_id", req.CustomerID.String()),
		attribute.String("entry_type", req.Type),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}
	entryType, err := ledger.ParseEntryType(req.Type)
	if err != nil {
		return nil, err
	}
	if req.EntryDate == nil {
		return nil, shared.NewValidationError("entry_date is required")
	}
	if req.Amount == nil {
		return nil, shared.NewValidationError("amount is required")
	}
	entryDate := *req.EntryDate

	var created *ledger.Entry
	var outstanding decimal.Decimal
	err = s.uow.Do(ctx, []string{uow.CustomerLock(req.CustomerID)}, func(ctx context.Context, repos uow.Repositories) error {
		customer, err := repos.Customers.FindByIDForUpdate(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		entry, err := ledger.NewEntry(customer.ID, entryDate, req.Description, entryType, *req.Amount, req.Reference, ledger.NoSource(), p.UserID)
		if err != nil {
			return err
		}
		if err := repos.Entries.Create(ctx, entry); err != nil {
			return err
		}

		outstanding = ledger.ApplyToOutstanding(customer.OutstandingAmount, entryType, entry.Amount)
		if err := repos.Customers.UpdateOutstanding(ctx, customer.ID, outstanding); err != nil {
			return err
		}
		created = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.EntryPosted(ctx, string(entryType), originManual)
	s.logger.Info("manual ledger entry created",
		zap.String("entry_id", created.ID.String()),
		zap.String("customer_id", created.CustomerID.String()),
		zap.String("entry_type", string(entryType)),
		zap.String("amount", created.Amount.String()),
		zap.String("outstanding", outstanding.String()),
	)
	out := ToEntryResponse(created)
	return &out, nil
}

// UpdateEntry rewrites a manual entry and applies the change in amount by
// the entry's original type.
func (s *Service) UpdateEntry(ctx context.Context, p identity.Principal, id uuid.UUID, req UpdateEntryRequest) (resp *EntryResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ledger.update_entry", attribute.String("entry_id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}
	current, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.IsSystemGenerated() {
		return nil, shared.NewInvalidStateError("system generated ledger entries cannot be edited")
	}

	var updated *ledger.Entry
	var delta, outstanding decimal.Decimal
	err = s.uow.Do(ctx, []string{uow.CustomerLock(current.CustomerID)}, func(ctx context.Context, repos uow.Repositories) error {
		entry, err := repos.Entries.FindByID(ctx, id)
		if err != nil {
			return err
		}
		customer, err := repos.Customers.FindByIDForUpdate(ctx, entry.CustomerID)
		if err != nil {
			return err
		}
		delta, err = entry.Revise(ledger.Revision{
			Description: req.Description,
			Amount:      req.Amount,
			Reference:   req.Reference,
		})
		if err != nil {
			return err
		}
		if err := repos.Entries.Update(ctx, entry); err != nil {
			return err
		}

		outstanding = ledger.ApplyDelta(customer.OutstandingAmount, entry.Type, delta)
		if err := repos.Customers.UpdateOutstanding(ctx, customer.ID, outstanding); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("manual ledger entry updated",
		zap.String("entry_id", updated.ID.String()),
		zap.String("customer_id", updated.CustomerID.String()),
		zap.String("delta", delta.String()),
		zap.String("outstanding", outstanding.String()),
	)
	out := ToEntryResponse(updated)
	return &out, nil
}

// DeleteEntry reverses a manual entry's effect and removes it. Entries
// generated by an order or collection are rejected and nothing changes.
func (s *Service) DeleteEntry(ctx context.Context, p identity.Principal, id uuid.UUID) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "ledger.delete_entry", attribute.String("entry_id", id.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := identity.RequireAdmin(p); err != nil {
		return err
	}
	current, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := current.EnsureRemovable(); err != nil {
		return err
	}

	var outstanding decimal.Decimal
	err = s.uow.Do(ctx, []string{uow.CustomerLock(current.CustomerID)}, func(ctx context.Context, repos uow.Repositories) error {
		entry, err := repos.Entries.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := entry.EnsureRemovable(); err != nil {
			return err
		}
		customer, err := repos.Customers.FindByIDForUpdate(ctx, entry.CustomerID)
		if err != nil {
			return err
		}
		if err := repos.Entries.Delete(ctx, entry.ID); err != nil {
			return err
		}

		outstanding = ledger.Reverse(customer.OutstandingAmount, entry.Type, entry.Amount)
		return repos.Customers.UpdateOutstanding(ctx, customer.ID, outstanding)
	})
	if err != nil {
		return err
	}

	s.logger.Info("manual ledger entry deleted",
		zap.String("entry_id", id.String()),
		zap.String("customer_id", current.CustomerID.String()),
		zap.String("entry_type", string(current.Type)),
		zap.String("outstanding", outstanding.String()),
	)
	return nil
}

// GetEntry returns one entry the principal may see
func (s *Service) GetEntry(ctx context.Context, p identity.Principal, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entries.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeCustomer(ctx, p, entry.CustomerID); err != nil {
		return nil, err
	}
	resp := ToEntryResponse(entry)
	return &resp, nil
}

// ListEntries returns a page of entries. Customers only see their own;
// salesmen must name one of their customers.
func (s *Service) ListEntries(ctx context.Context, p identity.Principal, filter EntryListFilter) ([]EntryResponse, int64, error) {
	domainFilter := ledger.EntryFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(),
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "entry_date"
	}

	scope := identity.ScopeFor(p)
	switch {
	case filter.CustomerID != nil:
		if _, err := s.authorizeCustomer(ctx, p, *filter.CustomerID); err != nil {
			return nil, 0, err
		}
		domainFilter.CustomerIDs = []uuid.UUID{*filter.CustomerID}
	case scope.CustomerID != nil:
		domainFilter.CustomerIDs = []uuid.UUID{*scope.CustomerID}
	case scope.SalesmanID != nil:
		return nil, 0, shared.NewValidationError("customer_id is required")
	}

	if filter.Type != "" {
		t, err := ledger.ParseEntryType(filter.Type)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Type = t
	}
	if filter.From != nil {
		domainFilter.Range.From = *filter.From
	}
	if filter.To != nil {
		domainFilter.Range.To = endOfDay(*filter.To)
	}

	entries, total, err := s.entries.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToEntryResponses(entries), total, nil
}

// Statement returns the customer's entries newest first with running
// balances. Entries dated before the range are folded into the opening
// balance.
func (s *Service) Statement(ctx context.Context, p identity.Principal, customerID uuid.UUID, q StatementQuery) (*StatementResponse, error) {
	customer, err := s.authorizeCustomer(ctx, p, customerID)
	if err != nil {
		return nil, err
	}

	var r shared.DateRange
	if q.To != nil {
		r.To = endOfDay(*q.To)
	}
	entries, err := s.entries.FindByCustomer(ctx, customerID, r)
	if err != nil {
		return nil, err
	}

	var before, within []ledger.Entry
	for _, e := range entries {
		if q.From != nil && e.EntryDate.Before(*q.From) {
			before = append(before, e)
		} else {
			within = append(within, e)
		}
	}
	opening := ledger.Fold(before)
	lines := ledger.Statement(within, opening)

	closing := opening
	if len(lines) > 0 {
		closing = lines[0].RunningBalance
	}
	return &StatementResponse{
		CustomerID:     customerID,
		OpeningBalance: opening,
		ClosingBalance: closing,
		Outstanding:    customer.OutstandingAmount,
		Lines:          toStatementLines(lines),
	}, nil
}

// Balance folds the customer's entries up to asOf, or all of them when asOf is nil
func (s *Service) Balance(ctx context.Context, p identity.Principal, customerID uuid.UUID, asOf *time.Time) (*BalanceResponse, error) {
	customer, err := s.authorizeCustomer(ctx, p, customerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.FindByCustomer(ctx, customerID, shared.DateRange{})
	if err != nil {
		return nil, err
	}

	var cutoff time.Time
	if asOf != nil {
		cutoff = endOfDay(*asOf)
	}
	return &BalanceResponse{
		CustomerID:  customerID,
		AsOf:        asOf,
		Balance:     ledger.BalanceAt(entries, cutoff),
		Outstanding: customer.OutstandingAmount,
	}, nil
}

// Reconcile compares cached outstanding amounts with the ledger. Admin only.
func (s *Service) Reconcile(ctx context.Context, p identity.Principal, req ReconcileRequest) (*ReconcileReport, error) {
	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}
	if s.reconciler == nil {
		return nil, fmt.Errorf("reconciler is not configured")
	}
	if req.CustomerID != nil {
		result, err := s.reconciler.Reconcile(ctx, *req.CustomerID, req.Repair)
		if err != nil {
			return nil, err
		}
		report := &ReconcileReport{Checked: 1, Drifted: []ReconcileResult{}}
		if !result.InBalance() {
			report.Drifted = append(report.Drifted, result)
			if result.Repaired {
				report.Repaired = 1
			}
		}
		return report, nil
	}
	return s.reconciler.ReconcileAll(ctx, req.Repair)
}

// authorizeCustomer loads the customer and applies the access rule to it
func (s *Service) authorizeCustomer(ctx context.Context, p identity.Principal, customerID uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := identity.Authorize(p, identity.Owner{
		CustomerID: customer.ID,
		SalesmanID: customer.OwnerSalesmanID(),
	}); err != nil {
		return nil, err
	}
	return customer, nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
