package persistence

import (
	"context"

	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a customer and holds a row lock for the rest of the transaction
func (r *GormCustomerRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds customers matching the filter
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter partner.CustomerFilter) ([]partner.Customer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CustomerModel{})
	if filter.SalesmanID != nil {
		query = query.Where("salesman_id = ?", *filter.SalesmanID)
	}
	if filter.Territory != "" {
		query = query.Where("territory = ?", filter.Territory)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(name) LIKE LOWER(?) ESCAPE '\\' OR mobile LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var customerModels []models.CustomerModel
	if err := paginate(query, filter.Filter, CustomerSortFields, "name").Find(&customerModels).Error; err != nil {
		return nil, 0, translateError(err)
	}

	customers := make([]partner.Customer, len(customerModels))
	for i := range customerModels {
		customers[i] = *customerModels[i].ToDomain()
	}
	return customers, total, nil
}

// FindByMobile finds the customer registered with mobile
func (r *GormCustomerRepository) FindByMobile(ctx context.Context, mobile string) (*partner.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).First(&model, "mobile = ?", mobile).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// ExistsByMobile checks whether a customer already uses mobile
func (r *GormCustomerRepository) ExistsByMobile(ctx context.Context, mobile string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("mobile = ?", mobile).
		Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// Create inserts a new customer
func (r *GormCustomerRepository) Create(ctx context.Context, customer *partner.Customer) error {
	return translateError(r.db.WithContext(ctx).Create(models.CustomerModelFromDomain(customer)).Error)
}

// Save updates every column of an existing customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	result := r.db.WithContext(ctx).Save(models.CustomerModelFromDomain(customer))
	return translateError(result.Error)
}

// UpdateOutstanding writes only the cached outstanding amount
func (r *GormCustomerRepository) UpdateOutstanding(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.CustomerModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"outstanding_amount": amount,
			"updated_at":         nowUTC(),
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return partnerNotFound()
	}
	return nil
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
