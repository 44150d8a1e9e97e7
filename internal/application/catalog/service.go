package catalog

import (
	"context"
	"strings"

	"github.com/dms/backend/internal/domain/catalog"
	"github.com/dms/backend/internal/domain/identity"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles companies and the products they make. Everyone signed in
// may read the catalog; only admins change it.
type Service struct {
	companies catalog.CompanyRepository
	products  catalog.ProductRepository
	logger    *zap.Logger
}

// NewService creates a new catalog Service
func NewService(companies catalog.CompanyRepository, products catalog.ProductRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{companies: companies, products: products, logger: logger}
}

// CreateCompany adds a company
func (s *Service) CreateCompany(ctx context.Context, p identity.Principal, req CreateCompanyRequest) (*CompanyResponse, error) {
	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}
	company, err := catalog.NewCompany(req.Name, req.GSTIN)
	if err != nil {
		return nil, err
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}
	s.logger.Info("company created", zap.String("company_id", company.ID.String()), zap.String("name", company.Name))
	resp := ToCompanyResponse(company)
	return &resp, nil
}

// ListCompanies returns a page of companies
func (s *Service) ListCompanies(ctx context.Context, filter ListFilter) ([]CompanyResponse, int64, error) {
	companies, total, err := s.companies.FindAll(ctx, toFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	out := make([]CompanyResponse, len(companies))
	for i := range companies {
		out[i] = ToCompanyResponse(&companies[i])
	}
	return out, total, nil
}

// CreateProduct adds a product under an existing company. SKUs are unique.
func (s *Service) CreateProduct(ctx context.Context, p identity.Principal, req CreateProductRequest) (*ProductResponse, error) {
	if err := identity.RequireAdmin(p); err != nil {
		return nil, err
	}
	company, err := s.companies.FindByID(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive {
		return nil, shared.NewInvalidStateError("company is inactive")
	}
	exists, err := s.products.ExistsBySKU(ctx, strings.ToUpper(strings.TrimSpace(req.SKU)))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeConflict, "Product with this SKU already exists")
	}

	product, err := catalog.NewProduct(company.ID, req.SKU, req.Name, req.Unit, req.Rate, req.GSTRate)
	if err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.String("product_id", product.ID.String()), zap.String("sku", product.SKU))
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetProduct returns one product
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// ListProducts returns a page of products
func (s *Service) ListProducts(ctx context.Context, filter ListFilter) ([]ProductResponse, int64, error) {
	products, total, err := s.products.FindAll(ctx, toFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out, total, nil
}

func toFilter(f ListFilter) shared.Filter {
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}.Normalize()
}
