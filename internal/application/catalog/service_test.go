package catalog

import (
	"context"
	"testing"

	"github.com/dms/backend/internal/domain/catalog"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCompanyRepository is a mock implementation of CompanyRepository
type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Company, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Company), args.Get(1).(int64), args.Error(2)
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *catalog.Company) error {
	return m.Called(ctx, company).Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	args := m.Called(ctx, sku)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func TestService_CreateCompany(t *testing.T) {
	companies := new(MockCompanyRepository)
	svc := NewService(companies, new(MockProductRepository), nil)
	ctx := context.Background()

	companies.On("Create", ctx, mock.MatchedBy(func(c *catalog.Company) bool {
		return c.Name == "Acme Foods" && c.GSTIN == "27AAPFU0939F1ZV"
	})).Return(nil).Once()

	resp, err := svc.CreateCompany(ctx, testutil.Admin(), CreateCompanyRequest{Name: " Acme Foods ", GSTIN: "27aapfu0939f1zv"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Foods", resp.Name)
	assert.True(t, resp.IsActive)
	companies.AssertExpectations(t)

	_, err = svc.CreateCompany(ctx, testutil.Admin(), CreateCompanyRequest{Name: "Bad", GSTIN: "123"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateCompany(ctx, testutil.SalesmanPrincipal(uuid.New()), CreateCompanyRequest{Name: "Acme"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
	companies.AssertNumberOfCalls(t, "Create", 1)
}

func TestService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	company, err := catalog.NewCompany("Acme Foods", "")
	require.NoError(t, err)

	t.Run("creates under an active company", func(t *testing.T) {
		companies, products := new(MockCompanyRepository), new(MockProductRepository)
		svc := NewService(companies, products, nil)
		companies.On("FindByID", ctx, company.ID).Return(company, nil)
		products.On("ExistsBySKU", ctx, "RICE-5").Return(false, nil)
		products.On("Create", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.CreateProduct(ctx, testutil.Admin(), CreateProductRequest{
			CompanyID: company.ID,
			SKU:       " rice-5 ",
			Name:      "Rice 5kg",
			Rate:      decimal.NewFromInt(250),
			GSTRate:   decimal.NewFromInt(5),
		})
		require.NoError(t, err)
		assert.Equal(t, "RICE-5", resp.SKU)
		assert.Equal(t, "pcs", resp.Unit)
		testutil.AssertAmount(t, 250, resp.Rate)
		products.AssertExpectations(t)
	})

	t.Run("duplicate sku", func(t *testing.T) {
		companies, products := new(MockCompanyRepository), new(MockProductRepository)
		svc := NewService(companies, products, nil)
		companies.On("FindByID", ctx, company.ID).Return(company, nil)
		products.On("ExistsBySKU", ctx, "RICE-5").Return(true, nil)

		_, err := svc.CreateProduct(ctx, testutil.Admin(), CreateProductRequest{CompanyID: company.ID, SKU: "RICE-5", Name: "Rice"})
		assert.ErrorIs(t, err, shared.ErrConflict)
		products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown company", func(t *testing.T) {
		companies := new(MockCompanyRepository)
		svc := NewService(companies, new(MockProductRepository), nil)
		missing := uuid.New()
		companies.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		_, err := svc.CreateProduct(ctx, testutil.Admin(), CreateProductRequest{CompanyID: missing, SKU: "X", Name: "X"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("gst out of range", func(t *testing.T) {
		companies, products := new(MockCompanyRepository), new(MockProductRepository)
		svc := NewService(companies, products, nil)
		companies.On("FindByID", ctx, company.ID).Return(company, nil)
		products.On("ExistsBySKU", ctx, "X").Return(false, nil)

		_, err := svc.CreateProduct(ctx, testutil.Admin(), CreateProductRequest{
			CompanyID: company.ID, SKU: "X", Name: "X", GSTRate: decimal.NewFromInt(120),
		})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestService_ListProducts(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	svc := NewService(new(MockCompanyRepository), products, nil)

	product, err := catalog.NewProduct(uuid.New(), "SKU-1", "Tea 1kg", "box", decimal.NewFromInt(400), decimal.NewFromInt(5))
	require.NoError(t, err)
	products.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Search == "tea" && f.Page >= 1
	})).Return([]catalog.Product{*product}, int64(1), nil)

	rows, total, err := svc.ListProducts(ctx, ListFilter{Search: "tea"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "SKU-1", rows[0].SKU)
}
