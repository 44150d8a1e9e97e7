package trade

import (
	"strings"

	"github.com/dms/backend/internal/domain/shared"
)

// OrderStatus is the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid returns true if s is one of the known statuses
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsEditable returns true while line items may still change
func (s OrderStatus) IsEditable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// RequiresBillNumber returns true for statuses that need an invoice
func (s OrderStatus) RequiresBillNumber() bool {
	return s == OrderStatusConfirmed || s == OrderStatusDelivered
}

// ParseOrderStatus validates s against the known statuses
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", shared.NewValidationError("invalid order status: " + s)
	}
	return st, nil
}
