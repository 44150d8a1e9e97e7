package persistence

import (
	"context"

	"github.com/dms/backend/internal/domain/partner"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSalesmanRepository implements SalesmanRepository using GORM
type GormSalesmanRepository struct {
	db *gorm.DB
}

// NewGormSalesmanRepository creates a new GormSalesmanRepository
func NewGormSalesmanRepository(db *gorm.DB) *GormSalesmanRepository {
	return &GormSalesmanRepository{db: db}
}

func (r *GormSalesmanRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Salesman, error) {
	var model models.SalesmanModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByUserID resolves the salesman profile of a login account
func (r *GormSalesmanRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*partner.Salesman, error) {
	var model models.SalesmanModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormSalesmanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Salesman, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SalesmanModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?) ESCAPE '\\'", likePattern(filter.Search))
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []models.SalesmanModel
	if err := paginate(query, filter, SalesmanSortFields, "name").Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}
	salesmen := make([]partner.Salesman, len(rows))
	for i := range rows {
		salesmen[i] = *rows[i].ToDomain()
	}
	return salesmen, total, nil
}

func (r *GormSalesmanRepository) ExistsByMobile(ctx context.Context, mobile string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SalesmanModel{}).
		Where("mobile = ?", mobile).
		Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

func (r *GormSalesmanRepository) Create(ctx context.Context, salesman *partner.Salesman) error {
	return translateError(r.db.WithContext(ctx).Create(models.SalesmanModelFromDomain(salesman)).Error)
}

var _ partner.SalesmanRepository = (*GormSalesmanRepository)(nil)
