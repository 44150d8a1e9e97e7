package models

import (
	"time"

	"github.com/dms/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	OrderNumber    string            `gorm:"type:varchar(30);not null;uniqueIndex:idx_orders_number"`
	BillNumber     *string           `gorm:"type:varchar(30);uniqueIndex:idx_orders_bill_number"`
	CustomerID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	SalesmanID     *uuid.UUID        `gorm:"type:uuid;index"`
	TotalAmount    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	GSTAmount      decimal.Decimal   `gorm:"column:gst_amount;type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	NetAmount      decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Status         trade.OrderStatus `gorm:"type:varchar(20);not null;index"`
	OrderDate      time.Time         `gorm:"not null"`
	Notes          string            `gorm:"type:text"`
	CreatedBy      *uuid.UUID        `gorm:"type:uuid"`
	Items          []OrderItemModel  `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *OrderModel) ToDomain() *trade.Order {
	o := &trade.Order{
		BaseAggregateRoot: m.ToAggregateRoot(),
		OrderNumber:       m.OrderNumber,
		CustomerID:        m.CustomerID,
		SalesmanID:        m.SalesmanID,
		TotalAmount:       m.TotalAmount,
		GSTAmount:         m.GSTAmount,
		DiscountAmount:    m.DiscountAmount,
		NetAmount:         m.NetAmount,
		Status:            m.Status,
		OrderDate:         m.OrderDate,
		Notes:             m.Notes,
		Items:             make([]trade.OrderItem, len(m.Items)),
	}
	if m.BillNumber != nil {
		o.BillNumber = *m.BillNumber
	}
	if m.CreatedBy != nil {
		o.CreatedBy = *m.CreatedBy
	}
	for i := range m.Items {
		o.Items[i] = m.Items[i].ToDomain()
	}
	return o
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.BillNumber = nil
	if o.BillNumber != "" {
		bill := o.BillNumber
		m.BillNumber = &bill
	}
	m.CustomerID = o.CustomerID
	m.SalesmanID = o.SalesmanID
	m.TotalAmount = o.TotalAmount
	m.GSTAmount = o.GSTAmount
	m.DiscountAmount = o.DiscountAmount
	m.NetAmount = o.NetAmount
	m.Status = o.Status
	m.OrderDate = o.OrderDate
	m.Notes = o.Notes
	m.CreatedBy = nil
	if o.CreatedBy != uuid.Nil {
		createdBy := o.CreatedBy
		m.CreatedBy = &createdBy
	}
	m.Items = make([]OrderItemModel, len(o.Items))
	for i := range o.Items {
		m.Items[i] = OrderItemModelFromDomain(o.ID, i+1, o.Items[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order aggregate.
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderItemModel is the persistence model for an order line.
type OrderItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo      int             `gorm:"not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Rate        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	GSTRate     decimal.Decimal `gorm:"column:gst_rate;type:decimal(5,2);not null;default:0"`
	GSTAmount   decimal.Decimal `gorm:"column:gst_amount;type:decimal(18,4);not null;default:0"`
	Discount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts the persistence model to a domain OrderItem.
func (m *OrderItemModel) ToDomain() trade.OrderItem {
	return trade.OrderItem{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		Quantity:    m.Quantity,
		Rate:        m.Rate,
		Amount:      m.Amount,
		GSTRate:     m.GSTRate,
		GSTAmount:   m.GSTAmount,
		Discount:    m.Discount,
	}
}

// OrderItemModelFromDomain creates a persistence model for one order line.
func OrderItemModelFromDomain(orderID uuid.UUID, lineNo int, item trade.OrderItem) OrderItemModel {
	id := item.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return OrderItemModel{
		ID:          id,
		OrderID:     orderID,
		LineNo:      lineNo,
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

