package models

import (
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryModel is the persistence model for ledger entries.
// The source reference is stored as two nullable columns.
type LedgerEntryModel struct {
	BaseModel
	CustomerID     uuid.UUID        `gorm:"type:uuid;not null;index:idx_ledger_entries_customer_date,priority:1"`
	EntryDate      time.Time        `gorm:"not null;index:idx_ledger_entries_customer_date,priority:2"`
	Description    string           `gorm:"type:varchar(500);not null"`
	Type           ledger.EntryType `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Reference      string           `gorm:"type:varchar(100)"`
	ReferenceID    *uuid.UUID       `gorm:"type:uuid;index:idx_ledger_entries_reference,priority:1"`
	ReferenceModel *string          `gorm:"type:varchar(20);index:idx_ledger_entries_reference,priority:2"`
	CreatedBy      *uuid.UUID       `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain Entry.
func (m *LedgerEntryModel) ToDomain() (*ledger.Entry, error) {
	model := ""
	if m.ReferenceModel != nil {
		model = *m.ReferenceModel
	}
	source, err := ledger.ParseSource(model, m.ReferenceID)
	if err != nil {
		return nil, err
	}
	e := &ledger.Entry{
		BaseEntity:  m.BaseModel.ToDomain(),
		CustomerID:  m.CustomerID,
		EntryDate:   m.EntryDate,
		Description: m.Description,
		Type:        m.Type,
		Amount:      m.Amount,
		Reference:   m.Reference,
		Source:      source,
	}
	if m.CreatedBy != nil {
		e.CreatedBy = *m.CreatedBy
	}
	return e, nil
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain Entry.
func LedgerEntryModelFromDomain(e *ledger.Entry) *LedgerEntryModel {
	m := &LedgerEntryModel{
		CustomerID:  e.CustomerID,
		EntryDate:   e.EntryDate,
		Description: e.Description,
		Type:        e.Type,
		Amount:      e.Amount,
		Reference:   e.Reference,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	if !e.Source.IsNone() {
		id := e.Source.ID
		kind := string(e.Source.Kind)
		m.ReferenceID = &id
		m.ReferenceModel = &kind
	}
	if e.CreatedBy != uuid.Nil {
		createdBy := e.CreatedBy
		m.CreatedBy = &createdBy
	}
	return m
}
