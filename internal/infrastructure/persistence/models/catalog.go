package models

import (
	"github.com/dms/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompanyModel is the persistence model for the Company domain entity.
type CompanyModel struct {
	AggregateModel
	Name     string `gorm:"type:varchar(200);not null"`
	GSTIN    string `gorm:"column:gstin;type:varchar(15)"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company entity.
func (m *CompanyModel) ToDomain() *catalog.Company {
	return &catalog.Company{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Name:              m.Name,
		GSTIN:             m.GSTIN,
		IsActive:          m.IsActive,
	}
}

// CompanyModelFromDomain creates a new persistence model from a domain Company entity.
func CompanyModelFromDomain(c *catalog.Company) *CompanyModel {
	m := &CompanyModel{Name: c.Name, GSTIN: c.GSTIN, IsActive: c.IsActive}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU       string          `gorm:"column:sku;type:varchar(50);not null;uniqueIndex:idx_products_sku"`
	Name      string          `gorm:"type:varchar(200);not null"`
	Unit      string          `gorm:"type:varchar(20);not null"`
	Rate      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	GSTRate   decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null;default:0"`
	IsActive  bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		CompanyID:         m.CompanyID,
		SKU:               m.SKU,
		Name:              m.Name,
		Unit:              m.Unit,
		Rate:              m.Rate,
		GSTRate:           m.GSTRate,
		IsActive:          m.IsActive,
	}
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		CompanyID: p.CompanyID,
		SKU:       p.SKU,
		Name:      p.Name,
		Unit:      p.Unit,
		Rate:      p.Rate,
		GSTRate:   p.GSTRate,
		IsActive:  p.IsActive,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
