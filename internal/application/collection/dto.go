package collection

import (
	"time"

	"github.com/dms/backend/internal/domain/collection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCollectionRequest represents a payment recorded by a salesman or admin
type CreateCollectionRequest struct {
	CustomerID     uuid.UUID       `json:"customer_id" binding:"required"`
	SalesmanID     *uuid.UUID      `json:"salesman_id"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentMode    string          `json:"payment_mode" binding:"required,oneof=cash cheque bank_transfer upi card"`
	Reference      string          `json:"reference" binding:"max=100"`
	BankName       string          `json:"bank_name" binding:"max=100"`
	ChequeNumber   string          `json:"cheque_number" binding:"max=50"`
	ChequeDate     *time.Time      `json:"cheque_date"`
	DepositDate    *time.Time      `json:"deposit_date"`
	CollectionDate *time.Time      `json:"collection_date"`
	Notes          string          `json:"notes" binding:"max=1000"`
}

// UpdateStatusRequest moves a collection to a new status. Version, when
// given, must match the stored version.
type UpdateStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Version *int   `json:"version"`
}

// CollectionResponse represents a collection in API responses
type CollectionResponse struct {
	ID               uuid.UUID       `json:"id"`
	CollectionNumber string          `json:"collection_number"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	SalesmanID       *uuid.UUID      `json:"salesman_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMode      string          `json:"payment_mode"`
	Reference        string          `json:"reference,omitempty"`
	BankName         string          `json:"bank_name,omitempty"`
	ChequeNumber     string          `json:"cheque_number,omitempty"`
	ChequeDate       *time.Time      `json:"cheque_date,omitempty"`
	DepositDate      *time.Time      `json:"deposit_date,omitempty"`
	CollectionDate   time.Time       `json:"collection_date"`
	Status           string          `json:"status"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// StatusChangeResponse reports the collection and what the change posted
type StatusChangeResponse struct {
	Collection  CollectionResponse `json:"collection"`
	EntryID     *uuid.UUID         `json:"entry_id,omitempty"`
	EntryType   string             `json:"entry_type,omitempty"`
	Outstanding decimal.Decimal    `json:"outstanding"`
}

// CollectionListFilter represents filter options for the collection listing
type CollectionListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	SalesmanID *uuid.UUID `form:"salesman_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=pending approved cleared bounced cancelled failed"`
	Search     string     `form:"search"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCollectionResponse converts a domain Collection to CollectionResponse
func ToCollectionResponse(c *collection.Collection) CollectionResponse {
	return CollectionResponse{
		ID:               c.ID,
		CollectionNumber: c.CollectionNumber,
		CustomerID:       c.CustomerID,
		SalesmanID:       c.SalesmanID,
		Amount:           c.Amount,
		PaymentMode:      string(c.PaymentMode),
		Reference:        c.Details.Reference,
		BankName:         c.Details.BankName,
		ChequeNumber:     c.Details.ChequeNumber,
		ChequeDate:       c.Details.ChequeDate,
		DepositDate:      c.Details.DepositDate,
		CollectionDate:   c.CollectionDate,
		Status:           string(c.Status),
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Version:          c.Version,
	}
}
