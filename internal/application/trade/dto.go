package trade

import (
	"time"

	"github.com/dms/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Order DTOs
// =============================================================================

// OrderItemRequest is one line of an order. Rate defaults to the product's
// list rate; the GST percentage always comes from the product.
type OrderItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity"`
	Rate      *decimal.Decimal `json:"rate"`
	Discount  decimal.Decimal  `json:"discount"`
}

// CreateOrderRequest represents a request to book a new order
type CreateOrderRequest struct {
	CustomerID uuid.UUID          `json:"customer_id" binding:"required"`
	SalesmanID *uuid.UUID         `json:"salesman_id"`
	Items      []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes      string             `json:"notes" binding:"max=1000"`
}

// UpdateItemsRequest replaces every line of an editable order
type UpdateItemsRequest struct {
	Items   []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Version *int               `json:"version"`
}

// UpdateOrderStatusRequest moves an order to a new status
type UpdateOrderStatusRequest struct {
	Status  string `json:"status" binding:"required"`
	Version *int   `json:"version"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	GSTRate     decimal.Decimal `json:"gst_rate"`
	GSTAmount   decimal.Decimal `json:"gst_amount"`
	Discount    decimal.Decimal `json:"discount"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	BillNumber     string              `json:"bill_number,omitempty"`
	CustomerID     uuid.UUID           `json:"customer_id"`
	SalesmanID     *uuid.UUID          `json:"salesman_id,omitempty"`
	Items          []OrderItemResponse `json:"items"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	GSTAmount      decimal.Decimal     `json:"gst_amount"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	NetAmount      decimal.Decimal     `json:"net_amount"`
	Status         string              `json:"status"`
	OrderDate      time.Time           `json:"order_date"`
	Notes          string              `json:"notes,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	Version        int                 `json:"version"`
}

// StatusChangeResponse is returned by status updates. LedgerWarning is set
// when the status committed but the ledger could not be brought in step.
type StatusChangeResponse struct {
	OrderResponse
	LedgerWarning string `json:"ledger_warning,omitempty"`
}

// OrderListFilter represents filter options for the order listing
type OrderListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	SalesmanID *uuid.UUID `form:"salesman_id"`
	Status     string     `form:"status" binding:"omitempty,oneof=pending confirmed shipped delivered cancelled"`
	Search     string     `form:"search"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Rate:        item.Rate,
			Amount:      item.Amount,
			GSTRate:     item.GSTRate,
			GSTAmount:   item.GSTAmount,
			Discount:    item.Discount,
		}
	}
	return OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		BillNumber:     o.BillNumber,
		CustomerID:     o.CustomerID,
		SalesmanID:     o.SalesmanID,
		Items:          items,
		TotalAmount:    o.TotalAmount,
		GSTAmount:      o.GSTAmount,
		DiscountAmount: o.DiscountAmount,
		NetAmount:      o.NetAmount,
		Status:         string(o.Status),
		OrderDate:      o.OrderDate,
		Notes:          o.Notes,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Version:        o.Version,
	}
}
