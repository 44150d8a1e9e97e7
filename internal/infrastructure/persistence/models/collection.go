package models

import (
	"time"

	"github.com/dms/backend/internal/domain/collection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CollectionModel is the persistence model for the Collection domain entity.
type CollectionModel struct {
	AggregateModel
	CollectionNumber string                 `gorm:"type:varchar(30);not null;uniqueIndex:idx_collections_number"`
	CustomerID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	SalesmanID       *uuid.UUID             `gorm:"type:uuid;index"`
	Amount           decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	PaymentMode      collection.PaymentMode `gorm:"type:varchar(20);not null"`
	PaymentReference string                 `gorm:"type:varchar(100)"`
	BankName         string                 `gorm:"type:varchar(100)"`
	ChequeNumber     string                 `gorm:"type:varchar(30)"`
	ChequeDate       *time.Time
	DepositDate      *time.Time
	CollectionDate   time.Time         `gorm:"not null"`
	Status           collection.Status `gorm:"type:varchar(20);not null;index"`
	Notes            string            `gorm:"type:text"`
	CreatedBy        *uuid.UUID        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CollectionModel) TableName() string {
	return "collections"
}

// ToDomain converts the persistence model to a domain Collection entity.
func (m *CollectionModel) ToDomain() *collection.Collection {
	c := &collection.Collection{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CollectionNumber:  m.CollectionNumber,
		CustomerID:        m.CustomerID,
		SalesmanID:        m.SalesmanID,
		Amount:            m.Amount,
		PaymentMode:       m.PaymentMode,
		Details: collection.PaymentDetails{
			Reference:    m.PaymentReference,
			BankName:     m.BankName,
			ChequeNumber: m.ChequeNumber,
			ChequeDate:   m.ChequeDate,
			DepositDate:  m.DepositDate,
		},
		CollectionDate: m.CollectionDate,
		Status:         m.Status,
		Notes:          m.Notes,
	}
	if m.CreatedBy != nil {
		c.CreatedBy = *m.CreatedBy
	}
	return c
}

// FromDomain populates the persistence model from a domain Collection entity.
func (m *CollectionModel) FromDomain(c *collection.Collection) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.CollectionNumber = c.CollectionNumber
	m.CustomerID = c.CustomerID
	m.SalesmanID = c.SalesmanID
	m.Amount = c.Amount
	m.PaymentMode = c.PaymentMode
	m.PaymentReference = c.Details.Reference
	m.BankName = c.Details.BankName
	m.ChequeNumber = c.Details.ChequeNumber
	m.ChequeDate = c.Details.ChequeDate
	m.DepositDate = c.Details.DepositDate
	m.CollectionDate = c.CollectionDate
	m.Status = c.Status
	m.Notes = c.Notes
	m.CreatedBy = nil
	if c.CreatedBy != uuid.Nil {
		createdBy := c.CreatedBy
		m.CreatedBy = &createdBy
	}
}

// CollectionModelFromDomain creates a new persistence model from a domain Collection entity.
func CollectionModelFromDomain(c *collection.Collection) *CollectionModel {
	m := &CollectionModel{}
	m.FromDomain(c)
	return m
}
