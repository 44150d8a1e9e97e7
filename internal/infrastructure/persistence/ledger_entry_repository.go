package persistence

import (
	"context"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
	"github.com/dms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements ledger.EntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Create appends a new entry
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	return translateError(r.db.WithContext(ctx).Create(models.LedgerEntryModelFromDomain(entry)).Error)
}

// FindByID finds an entry by its ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain()
}

// Update rewrites the editable columns of an entry
func (r *GormLedgerEntryRepository) Update(ctx context.Context, entry *ledger.Entry) error {
	result := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"description": entry.Description,
			"amount":      entry.Amount,
			"reference":   entry.Reference,
			"updated_at":  entry.UpdatedAt,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("ledger entry")
	}
	return nil
}

// Delete removes an entry permanently
func (r *GormLedgerEntryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LedgerEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("ledger entry")
	}
	return nil
}

// FindByCustomer returns a customer's entries ordered by entry date, then creation time
func (r *GormLedgerEntryRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, dr shared.DateRange) ([]ledger.Entry, error) {
	query := applyDateRange(r.db.WithContext(ctx).Where("customer_id = ?", customerID), dr)

	var rows []models.LedgerEntryModel
	if err := query.Order("entry_date ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return toEntries(rows)
}

// FindBySource returns the entry of the given type generated by source
func (r *GormLedgerEntryRepository) FindBySource(ctx context.Context, source ledger.Source, t ledger.EntryType) (*ledger.Entry, error) {
	if source.IsNone() {
		return nil, shared.NewValidationError("source reference is required")
	}
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("reference_id = ? AND reference_model = ? AND type = ?", source.ID, string(source.Kind), t).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain()
}

// ExistsBySource checks whether source already generated an entry of type t
func (r *GormLedgerEntryRepository) ExistsBySource(ctx context.Context, source ledger.Source, t ledger.EntryType) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).
		Where("reference_id = ? AND reference_model = ? AND type = ?", source.ID, string(source.Kind), t).
		Count(&count).Error; err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}

// FindAll lists entries for the admin ledger view
func (r *GormLedgerEntryRepository) FindAll(ctx context.Context, filter ledger.EntryFilter) ([]ledger.Entry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LedgerEntryModel{})
	if len(filter.CustomerIDs) > 0 {
		query = query.Where("customer_id IN ?", filter.CustomerIDs)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(description) LIKE LOWER(?) ESCAPE '\\' OR reference LIKE ? ESCAPE '\\'", pattern, pattern)
	}
	query = applyDateRange(query, filter.Range).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err)
	}

	var rows []models.LedgerEntryModel
	if err := paginate(query, filter.Filter, LedgerEntrySortFields, "entry_date").Find(&rows).Error; err != nil {
		return nil, 0, translateError(err)
	}
	entries, err := toEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func applyDateRange(query *gorm.DB, dr shared.DateRange) *gorm.DB {
	if !dr.From.IsZero() {
		query = query.Where("entry_date >= ?", dr.From.UTC())
	}
	if !dr.To.IsZero() {
		query = query.Where("entry_date <= ?", dr.To.UTC())
	}
	return query
}

func toEntries(rows []models.LedgerEntryModel) ([]ledger.Entry, error) {
	entries := make([]ledger.Entry, 0, len(rows))
	for i := range rows {
		e, err := rows[i].ToDomain()
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

// Ensure GormLedgerEntryRepository implements ledger.EntryRepository
var _ ledger.EntryRepository = (*GormLedgerEntryRepository)(nil)
