package partner

import (
	"time"

	"github.com/dms/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Mobile      string          `json:"mobile" binding:"required,max=20"`
	Email       string          `json:"email" binding:"omitempty,email,max=200"`
	Address     string          `json:"address" binding:"max=500"`
	Territory   string          `json:"territory" binding:"max=100"`
	GSTIN       string          `json:"gstin" binding:"omitempty,len=15"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	SalesmanID  *uuid.UUID      `json:"salesman_id"`
}

// UpdateCustomerRequest represents a partial customer update
type UpdateCustomerRequest struct {
	Email       *string          `json:"email" binding:"omitempty,email,max=200"`
	Address     *string          `json:"address" binding:"omitempty,max=500"`
	Territory   *string          `json:"territory" binding:"omitempty,max=100"`
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	IsActive    *bool            `json:"is_active"`
}

// AssignSalesmanRequest links a customer to a salesman; a nil id clears it
type AssignSalesmanRequest struct {
	SalesmanID *uuid.UUID `json:"salesman_id"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Mobile            string          `json:"mobile"`
	Email             string          `json:"email,omitempty"`
	Address           string          `json:"address,omitempty"`
	Territory         string          `json:"territory,omitempty"`
	GSTIN             string          `json:"gstin,omitempty"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"`
	AvailableCredit   decimal.Decimal `json:"available_credit"`
	SalesmanID        *uuid.UUID      `json:"salesman_id,omitempty"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// CustomerListFilter represents filter options for the customer listing
type CustomerListFilter struct {
	Search     string     `form:"search"`
	SalesmanID *uuid.UUID `form:"salesman_id"`
	Territory  string     `form:"territory"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse
func ToCustomerResponse(c *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:                c.ID,
		Name:              c.Name,
		Mobile:            c.Mobile,
		Email:             c.Email,
		Address:           c.Address,
		Territory:         c.Territory,
		GSTIN:             c.GSTIN,
		CreditLimit:       c.CreditLimit,
		OutstandingAmount: c.OutstandingAmount,
		AvailableCredit:   c.AvailableCredit(),
		SalesmanID:        c.SalesmanID,
		IsActive:          c.IsActive,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		Version:           c.Version,
	}
}

// =============================================================================
// Salesman DTOs
// =============================================================================

// CreateSalesmanRequest represents a request to register a salesman
type CreateSalesmanRequest struct {
	Name      string     `json:"name" binding:"required,min=1,max=200"`
	Mobile    string     `json:"mobile" binding:"required,max=20"`
	Territory string     `json:"territory" binding:"max=100"`
	UserID    *uuid.UUID `json:"user_id"`
}

// SalesmanResponse represents a salesman in API responses
type SalesmanResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Name      string     `json:"name"`
	Mobile    string     `json:"mobile"`
	Territory string     `json:"territory,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

// SalesmanListFilter represents filter options for the salesman listing
type SalesmanListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToSalesmanResponse converts a domain Salesman to SalesmanResponse
func ToSalesmanResponse(s *partner.Salesman) SalesmanResponse {
	return SalesmanResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		Name:      s.Name,
		Mobile:    s.Mobile,
		Territory: s.Territory,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
	}
}
