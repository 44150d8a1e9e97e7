package persistence

import (
	"context"

	"github.com/dms/backend/internal/domain/catalog"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Company, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CompanyModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?) ESCAPE '\\'", likePattern(filter.Search))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var rows []models.CompanyModel
	if err := paginate(query, filter, CompanySortFields, "name").Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}
	companies := make([]catalog.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, total, nil
}

func (r *GormCompanyRepository) Create(ctx context.Context, company *catalog.Company) error {
	return translateError(r.db.WithContext(ctx).Create(models.CompanyModelFromDomain(company)).Error)
}

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs loads every product in ids; missing ids are simply absent
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, nil
}

func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE LOWER(?) ESCAPE '\\' OR sku LIKE UPPER(?) ESCAPE '\\'", pattern, pattern)
	}
	if companyID, ok := filter.Filters["company_id"]; ok {
		query = query.Where("company_id = ?", companyID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}
	var rows []models.ProductModel
	if err := paginate(query, filter, ProductSortFields, "name").Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products, total, nil
}

func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProductModel{}).
		Where("sku = ?", sku).
		Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return translateError(r.db.WithContext(ctx).Create(models.ProductModelFromDomain(product)).Error)
}

var (
	_ catalog.CompanyRepository = (*GormCompanyRepository)(nil)
	_ catalog.ProductRepository = (*GormProductRepository)(nil)
)
