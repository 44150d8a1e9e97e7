package partner

import (
	"context"
	"strings"

	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/uow"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService handles customer-related business operations.
// The outstanding amount is never written here; it belongs to the ledger.
type CustomerService struct {
	uow       uow.UnitOfWork
	customers partner.CustomerRepository
	salesmen  partner.SalesmanRepository
	logger    *zap.Logger
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(unit uow.UnitOfWork, customers partner.CustomerRepository, salesmen partner.SalesmanRepository, logger *zap.Logger) *CustomerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerService{uow: unit, customers: customers, salesmen: salesmen, logger: logger}
}

// Create creates a new customer with zero outstanding
func (s *CustomerService) Create(ctx context.Context, p identity.Principal, req CreateCustomerRequest) (*CustomerResponse, error) {
	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}
	mobile := strings.TrimSpace(req.Mobile)
	exists, err := s.customers.ExistsByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeConflict, "Customer with this mobile already exists")
	}

	customer, err := partner.NewCustomer(req.Name, mobile, req.CreditLimit)
	if err != nil {
		return nil, err
	}
	customer.SetContact(req.Email, req.Address)
	customer.SetTerritory(req.Territory)
	customer.GSTIN = strings.ToUpper(strings.TrimSpace(req.GSTIN))
	if req.SalesmanID != nil {
		if _, err := s.salesmen.FindByID(ctx, *req.SalesmanID); err != nil {
			return nil, err
		}
		customer.AssignSalesman(*req.SalesmanID)
	}

	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	s.logger.Info("customer created",
		zap.String("customer_id", customer.ID.String()),
		zap.String("mobile", customer.Mobile),
	)
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// GetByID returns a customer the principal may see
func (s *CustomerService) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := identity.Authorize(p, identity.Owner{CustomerID: customer.ID, SalesmanID: customer.OwnerSalesmanID()}); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// List returns a page of customers. Salesmen only see their own.
func (s *CustomerService) List(ctx context.Context, p identity.Principal, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	if err := identity.RequireRole(p, identity.RoleAdmin, identity.RoleSalesman); err != nil {
		return nil, 0, err
	}
	domainFilter := partner.CustomerFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		SalesmanID: filter.SalesmanID,
		Territory:  strings.TrimSpace(filter.Territory),
	}
	if scope := identity.ScopeFor(p); scope.SalesmanID != nil {
		domainFilter.SalesmanID = scope.SalesmanID
	}

	customers, total, err := s.customers.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CustomerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out, total, nil
}

// Update changes contact details, territory, credit limit or the active flag
func (s *CustomerService) Update(ctx context.Context, p identity.Principal, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(c *partner.Customer) error {
		if req.Email != nil || req.Address != nil {
			email, address := c.Email, c.Address
			if req.Email != nil {
				email = *req.Email
			}
			if req.Address != nil {
				address = *req.Address
			}
			c.SetContact(email, address)
		}
		if req.Territory != nil {
			c.SetTerritory(*req.Territory)
		}
		if req.CreditLimit != nil {
			if err := c.SetCreditLimit(*req.CreditLimit); err != nil {
				return err
			}
		}
		if req.IsActive != nil {
			if *req.IsActive {
				c.IsActive = true
				c.Touch()
			} else {
				c.Deactivate()
			}
		}
		return nil
	})
}

// AssignSalesman links the customer to a salesman or clears the link
func (s *CustomerService) AssignSalesman(ctx context.Context, p identity.Principal, id uuid.UUID, req AssignSalesmanRequest) (*CustomerResponse, error) {
	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}
	salesmanID := uuid.Nil
	if req.SalesmanID != nil {
		salesman, err := s.salesmen.FindByID(ctx, *req.SalesmanID)
		if err != nil {
			return nil, err
		}
		if !salesman.IsActive {
			return nil, shared.NewInvalidStateError("salesman is inactive")
		}
		salesmanID = salesman.ID
	}
	resp, err := s.mutate(ctx, id, func(c *partner.Customer) error {
		c.AssignSalesman(salesmanID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer salesman assigned",
		zap.String("customer_id", id.String()),
		zap.String("salesman_id", salesmanID.String()),
	)
	return resp, nil
}

// mutate applies fn to the customer row under its lock so a concurrent
// posting cannot be overwritten by the full-row save.
func (s *CustomerService) mutate(ctx context.Context, id uuid.UUID, fn func(c *partner.Customer) error) (*CustomerResponse, error) {
	var updated *partner.Customer
	err := s.uow.Do(ctx, []string{uow.CustomerLock(id)}, func(ctx context.Context, repos uow.Repositories) error {
		customer, err := repos.Customers.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(customer); err != nil {
			return err
		}
		if err := repos.Customers.Save(ctx, customer); err != nil {
			return err
		}
		updated = customer
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(updated)
	return &resp, nil
}
