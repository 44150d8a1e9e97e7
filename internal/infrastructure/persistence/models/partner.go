package models

import (
	"github.com/dms/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer domain entity.
type CustomerModel struct {
	AggregateModel
	Name              string          `gorm:"type:varchar(200);not null"`
	Mobile            string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_customers_mobile"`
	Email             string          `gorm:"type:varchar(200)"`
	Address           string          `gorm:"type:text"`
	Territory         string          `gorm:"type:varchar(100);index"`
	GSTIN             string          `gorm:"column:gstin;type:varchar(15)"`
	CreditLimit       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OutstandingAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalesmanID        *uuid.UUID      `gorm:"type:uuid;index"`
	IsActive          bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		Mobile:            m.Mobile,
		Email:             m.Email,
		Address:           m.Address,
		Territory:         m.Territory,
		GSTIN:             m.GSTIN,
		CreditLimit:       m.CreditLimit,
		OutstandingAmount: m.OutstandingAmount,
		SalesmanID:        m.SalesmanID,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *partner.Customer) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Mobile = c.Mobile
	m.Email = c.Email
	m.Address = c.Address
	m.Territory = c.Territory
	m.GSTIN = c.GSTIN
	m.CreditLimit = c.CreditLimit
	m.OutstandingAmount = c.OutstandingAmount
	m.SalesmanID = c.SalesmanID
	m.IsActive = c.IsActive
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// SalesmanModel is the persistence model for the Salesman domain entity.
type SalesmanModel struct {
	AggregateModel
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_salesmen_user_id"`
	Name      string     `gorm:"type:varchar(200);not null"`
	Mobile    string     `gorm:"type:varchar(20);not null;uniqueIndex:idx_salesmen_mobile"`
	Territory string     `gorm:"type:varchar(100)"`
	IsActive  bool       `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (SalesmanModel) TableName() string {
	return "salesmen"
}

// ToDomain converts the persistence model to a domain Salesman entity.
func (m *SalesmanModel) ToDomain() *partner.Salesman {
	return &partner.Salesman{
		BaseAggregateRoot: m.ToAggregateRoot(),
		UserID:            m.UserID,
		Name:              m.Name,
		Mobile:            m.Mobile,
		Territory:         m.Territory,
		IsActive:          m.IsActive,
	}
}

// SalesmanModelFromDomain creates a new persistence model from a domain Salesman entity.
func SalesmanModelFromDomain(s *partner.Salesman) *SalesmanModel {
	m := &SalesmanModel{
		UserID:    s.UserID,
		Name:      s.Name,
		Mobile:    s.Mobile,
		Territory: s.Territory,
		IsActive:  s.IsActive,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}
