package trade

import (
	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const EventTypeOrderStatusChanged = "OrderStatusChanged"

// OrderStatusChangedEvent is raised on every order status write
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	BillNumber  string          `json:"bill_number"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	FromStatus  OrderStatus     `json:"from_status"`
	ToStatus    OrderStatus     `json:"to_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, from OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		OrderNumber:     o.OrderNumber,
		BillNumber:      o.BillNumber,
		CustomerID:      o.CustomerID,
		NetAmount:       o.NetAmount,
		FromStatus:      from,
		ToStatus:        o.Status,
	}
}

// LedgerReference mirrors Order.LedgerReference for handlers that only see the event
func (e *OrderStatusChangedEvent) LedgerReference() string {
	if e.BillNumber != "" {
		return e.BillNumber
	}
	return e.OrderNumber
}

// IsDelivery is true when the order was written as delivered
func (e *OrderStatusChangedEvent) IsDelivery() bool {
	return e.ToStatus == OrderStatusDelivered
}

// IsUndelivery is true when a delivered order moved to another status
func (e *OrderStatusChangedEvent) IsUndelivery() bool {
	return e.FromStatus == OrderStatusDelivered && e.ToStatus != OrderStatusDelivered
}
