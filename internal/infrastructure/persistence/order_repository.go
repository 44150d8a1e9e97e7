package persistence

import (
	"context"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/domain/trade"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements trade.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC")
}

// FindByID finds an order with its items
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists orders with their items
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.OrderModel{})
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
		pattern := likePattern(filter.Search)
		query = query.Where("order_number LIKE ? ESCAPE '\\' OR bill_number LIKE ? ESCAPE '\\'", pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []models.OrderModel
	if err := paginate(query, filter.Filter, OrderSortFields, "created_at").
		Preload("Items", preloadItems).
		Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}
	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, total, nil
}

// Create inserts the order and its items
func (r *GormOrderRepository) Create(ctx context.Context, order *trade.Order) error {
	return translateError(r.db.WithContext(ctx).Create(models.OrderModelFromDomain(order)).Error)
}

// SaveWithLock saves with optimistic locking (version check) and replaces
// the stored items. Callers run it inside a transaction.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	m := models.OrderModelFromDomain(order)
	db := r.db.WithContext(ctx)

	result := db.Model(&models.OrderModel{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]any{
			"bill_number":     m.BillNumber,
			"salesman_id":     m.SalesmanID,
			"total_amount":    m.TotalAmount,
			"gst_amount":      m.GSTAmount,
			"discount_amount": m.DiscountAmount,
			"net_amount":      m.NetAmount,
			"status":          m.Status,
			"notes":           m.Notes,
			"version":         m.Version,
			"updated_at":      m.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, order.ID)
	}

	if err := db.Where("order_id = ?", order.ID).Delete(&models.OrderItemModel{}).Error; err != nil {
		return translateError(err)
	}
	if len(m.Items) > 0 {
		if err := db.Create(&m.Items).Error; err != nil {
			return translateError(err)
		}
	}
	return nil
}

func (r *GormOrderRepository) missingOrStale(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translateError(err)
	}
	if count == 0 {
		return shared.NewNotFoundError("order")
	}
	return versionConflict("order")
}

// CountByBillNumberPrefix counts orders whose bill number starts with prefix
func (r *GormOrderRepository) CountByBillNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	return r.countPrefix(ctx, "bill_number", prefix)
}

// CountByOrderNumberPrefix counts orders whose order number starts with prefix
func (r *GormOrderRepository) CountByOrderNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	return r.countPrefix(ctx, "order_number", prefix)
}

func (r *GormOrderRepository) countPrefix(ctx context.Context, column, prefix string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where(column+" LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// Ensure GormOrderRepository implements trade.OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
