package partner

import (
	"context"
	"strings"

	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesmanService handles salesman registration and lookup
type SalesmanService struct {
	salesmen partner.SalesmanRepository
	logger   *zap.Logger
}

// NewSalesmanService creates a new SalesmanService
func NewSalesmanService(salesmen partner.SalesmanRepository, logger *zap.Logger) *SalesmanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesmanService{salesmen: salesmen, logger: logger}
}

// Create registers a salesman
func (s *SalesmanService) Create(ctx context.Context, p identity.Principal, req CreateSalesmanRequest) (*SalesmanResponse, error) {
	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}
	mobile := strings.TrimSpace(req.Mobile)
	exists, err := s.salesmen.ExistsByMobile(ctx, mobile)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeConflict, "Salesman with this mobile already exists")
	}

	salesman, err := partner.NewSalesman(req.Name, mobile, req.Territory)
	if err != nil {
		return nil, err
	}
	if req.UserID != nil {
		salesman.LinkUser(*req.UserID)
	}
	if err := s.salesmen.Create(ctx, salesman); err != nil {
		return nil, err
	}
	s.logger.Info("salesman created", zap.String("salesman_id", salesman.ID.String()))
	resp := ToSalesmanResponse(salesman)
	return &resp, nil
}

// GetByID returns a salesman; salesmen may only read their own profile
func (s *SalesmanService) GetByID(ctx context.Context, p identity.Principal, id uuid.UUID) (*SalesmanResponse, error) {
	if err := identity.Authorize(p, identity.Owner{SalesmanID: id}); err != nil {
		return nil, err
	}
	salesman, err := s.salesmen.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSalesmanResponse(salesman)
	return &resp, nil
}

// List returns a page of salesmen
func (s *SalesmanService) List(ctx context.Context, p identity.Principal, filter SalesmanListFilter) ([]SalesmanResponse, int64, error) {
	if err := identity.RequireAdmin(p); err != nil {
		return nil, 0, err
	}
	salesmen, total, err := s.salesmen.FindAll(ctx, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize())
	if err != nil {
		return nil, 0, err
	}
	out := make([]SalesmanResponse, len(salesmen))
	for i := range salesmen {
		out[i] = ToSalesmanResponse(&salesmen[i])
	}
	return out, total, nil
}
