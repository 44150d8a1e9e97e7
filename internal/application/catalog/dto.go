package catalog

import (
	"time"

	"github.com/dms/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCompanyRequest represents a request to add a manufacturer
type CreateCompanyRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=200"`
	GSTIN string `json:"gstin" binding:"omitempty,len=15"`
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	GSTIN     string    `json:"gstin,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProductRequest represents a request to add a product
type CreateProductRequest struct {
	CompanyID uuid.UUID       `json:"company_id" binding:"required"`
	SKU       string          `json:"sku" binding:"required,max=50"`
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	Unit      string          `json:"unit" binding:"max=20"`
	Rate      decimal.Decimal `json:"rate"`
	GSTRate   decimal.Decimal `json:"gst_rate"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID        uuid.UUID       `json:"id"`
	CompanyID uuid.UUID       `json:"company_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Unit      string          `json:"unit"`
	Rate      decimal.Decimal `json:"rate"`
	GSTRate   decimal.Decimal `json:"gst_rate"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

// ListFilter represents paging options shared by the catalog listings
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCompanyResponse converts a domain Company to CompanyResponse
func ToCompanyResponse(c *catalog.Company) CompanyResponse {
	return CompanyResponse{ID: c.ID, Name: c.Name, GSTIN: c.GSTIN, IsActive: c.IsActive, CreatedAt: c.CreatedAt}
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		SKU:       p.SKU,
		Name:      p.Name,
		Unit:      p.Unit,
		Rate:      p.Rate,
		GSTRate:   p.GSTRate,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
	}
}
