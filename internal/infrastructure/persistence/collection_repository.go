package persistence

import (
	"context"

	"github.com/dms/backend/internal/domain/collection"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCollectionRepository implements collection.Repository using GORM
type GormCollectionRepository struct {
	db *gorm.DB
}

// NewGormCollectionRepository creates a new GormCollectionRepository
func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

func (r *GormCollectionRepository) FindByID(ctx context.Context, id uuid.UUID) (*collection.Collection, error) {
	var model models.CollectionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormCollectionRepository) FindAll(ctx context.Context, filter collection.Filter) ([]collection.Collection, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CollectionModel{})
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.SalesmanID != nil {
		query = query.Where("salesman_id = ?", *filter.SalesmanID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("collection_number LIKE ? ESCAPE '\\'", likePattern(filter.Search))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []models.CollectionModel
	if err := paginate(query, filter.Filter, CollectionSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}
	result := make([]collection.Collection, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, total, nil
}

func (r *GormCollectionRepository) Create(ctx context.Context, c *collection.Collection) error {
	return translateError(r.db.WithContext(ctx).Create(models.CollectionModelFromDomain(c)).Error)
}

// SaveWithLock saves with optimistic locking. The domain has already
// incremented Version, so the stored row must still hold Version-1.
func (r *GormCollectionRepository) SaveWithLock(ctx context.Context, c *collection.Collection) error {
	m := models.CollectionModelFromDomain(c)
	result := r.db.WithContext(ctx).Model(&models.CollectionModel{}).
		Where("id = ? AND version = ?", c.ID, c.Version-1).
		Updates(map[string]any{
			"status":            m.Status,
			"notes":             m.Notes,
			"payment_reference": m.PaymentReference,
			"bank_name":         m.BankName,
			"cheque_number":     m.ChequeNumber,
			"cheque_date":       m.ChequeDate,
			"deposit_date":      m.DepositDate,
			"version":           m.Version,
			"updated_at":        m.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, c.ID)
	}
	return nil
}

func (r *GormCollectionRepository) missingOrStale(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CollectionModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(err)
	}
	if count == 0 {
		return shared.NewNotFoundError("collection")
	}
	return versionConflict("collection")
}

// CountByNumberPrefix counts collections whose number starts with prefix
func (r *GormCollectionRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CollectionModel{}).
		Where("collection_number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

var _ collection.Repository = (*GormCollectionRepository)(nil)
