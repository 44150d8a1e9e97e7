package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateTypeOrder = "Order"

var hundred = decimal.NewFromInt(100)

// OrderItem is one product line on an order
type OrderItem struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal // Quantity * Rate
	GSTRate     decimal.Decimal // percentage
	GSTAmount   decimal.Decimal // on Amount - Discount
	Discount    decimal.Decimal
}

// ItemInput carries the caller supplied fields of an order line
type ItemInput struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	GSTRate     decimal.Decimal
	Discount    decimal.Decimal
}

func newOrderItem(in ItemInput) (OrderItem, error) {
	if in.ProductID == uuid.Nil {
		return OrderItem{}, shared.NewValidationError("product id is required")
	}
	if !in.Quantity.IsPositive() {
		return OrderItem{}, shared.NewValidationError("quantity must be positive")
	}
	if in.Rate.IsNegative() {
		return OrderItem{}, shared.NewValidationError("rate cannot be negative")
	}
	if in.GSTRate.IsNegative() || in.GSTRate.GreaterThan(hundred) {
		return OrderItem{}, shared.NewValidationError("GST rate must be between 0 and 100")
	}
	amount := in.Quantity.Mul(in.Rate).Round(2)
	if in.Discount.IsNegative() || in.Discount.GreaterThan(amount) {
		return OrderItem{}, shared.NewValidationError("discount must be between 0 and the line amount")
	}
	taxable := amount.Sub(in.Discount)
	return OrderItem{
		ID:          uuid.New(),
		ProductID:   in.ProductID,
		ProductName: strings.TrimSpace(in.ProductName),
		Quantity:    in.Quantity,
		Rate:        in.Rate,
		Amount:      amount,
		GSTRate:     in.GSTRate,
		GSTAmount:   taxable.Mul(in.GSTRate).Div(hundred).Round(2),
		Discount:    in.Discount,
	}, nil
}

// Order is a customer order booked by a salesman or admin.
// Delivering it posts its NetAmount to the customer's ledger.
type Order struct {
	shared.BaseAggregateRoot
	OrderNumber    string
	BillNumber     string
	CustomerID     uuid.UUID
	SalesmanID     *uuid.UUID
	Items          []OrderItem
	TotalAmount    decimal.Decimal
	GSTAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	NetAmount      decimal.Decimal
	Status         OrderStatus
	OrderDate      time.Time
	Notes          string
	CreatedBy      uuid.UUID
}

// NewOrder creates a pending order with the given lines
func NewOrder(orderNumber string, customerID uuid.UUID, salesmanID *uuid.UUID, items []ItemInput, createdBy uuid.UUID) (*Order, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, shared.NewValidationError("order number is required")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer id is required")
	}

	o := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		SalesmanID:        salesmanID,
		Status:            OrderStatusPending,
		OrderDate:         time.Now().UTC(),
		CreatedBy:         createdBy,
	}
	if err := o.setItems(items); err != nil {
		return nil, err
	}
	return o, nil
}

// ReplaceItems swaps every line; only allowed while the order is editable
func (o *Order) ReplaceItems(items []ItemInput) error {
	if !o.Status.IsEditable() {
		return shared.NewInvalidStateError(fmt.Sprintf("cannot edit items of a %s order", o.Status))
	}
	if err := o.setItems(items); err != nil {
		return err
	}
	o.Touch()
	o.IncrementVersion()
	return nil
}

func (o *Order) setItems(inputs []ItemInput) error {
	if len(inputs) == 0 {
		return shared.NewValidationError("order must have at least one item")
	}
	items := make([]OrderItem, 0, len(inputs))
	for _, in := range inputs {
		item, err := newOrderItem(in)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	o.Items = items
	o.recalculateTotals()
	return nil
}

func (o *Order) recalculateTotals() {
	total, gst, discount := decimal.Zero, decimal.Zero, decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
		gst = gst.Add(item.GSTAmount)
		discount = discount.Add(item.Discount)
	}
	o.TotalAmount = total
	o.GSTAmount = gst
	o.DiscountAmount = discount
	o.NetAmount = total.Sub(discount).Add(gst)
}

// SetNotes updates the free-text notes
func (o *Order) SetNotes(notes string) {
	o.Notes = strings.TrimSpace(notes)
	o.Touch()
}

// NeedsBillNumber reports whether moving to status must allocate an invoice number
func (o *Order) NeedsBillNumber(to OrderStatus) bool {
	return to.RequiresBillNumber() && o.BillNumber == ""
}

// AssignBillNumber sets the invoice number once
func (o *Order) AssignBillNumber(number string) error {
	if o.BillNumber != "" {
		return shared.NewInvalidStateError("order already has bill number " + o.BillNumber)
	}
	if strings.TrimSpace(number) == "" {
		return shared.NewValidationError("bill number is required")
	}
	o.BillNumber = number
	o.Touch()
	return nil
}

// ChangeStatus writes a new status and records an OrderStatusChangedEvent.
// Rewriting the same status still records the event so delivery side
// effects can be retried.
func (o *Order) ChangeStatus(to OrderStatus) error {
	if !to.IsValid() {
		return shared.NewValidationError("invalid order status: " + string(to))
	}
	if to.RequiresBillNumber() && o.BillNumber == "" {
		return shared.NewInvalidStateError("bill number must be assigned before " + string(to))
	}

	from := o.Status
	o.Status = to
	o.Touch()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return nil
}

// LedgerReference is written on the order's ledger entry
func (o *Order) LedgerReference() string {
	if o.BillNumber != "" {
		return o.BillNumber
	}
	return o.OrderNumber
}

// OwnerSalesmanID returns the booking salesman or uuid.Nil
func (o *Order) OwnerSalesmanID() uuid.UUID {
	if o.SalesmanID == nil {
		return uuid.Nil
	}
	return *o.SalesmanID
}

// FormatBillNumber builds an invoice number like INV-2026-000007
func FormatBillNumber(year int, seq int64) string {
	return fmt.Sprintf("%s%06d", BillNumberPrefix(year), seq)
}

// BillNumberPrefix is the year scoped prefix shared by invoice numbers
func BillNumberPrefix(year int) string {
	return fmt.Sprintf("INV-%d-", year)
}

// FormatOrderNumber builds an order number like SO-2026-000012
func FormatOrderNumber(year int, seq int64) string {
	return fmt.Sprintf("%s%06d", OrderNumberPrefix(year), seq)
}

// OrderNumberPrefix is the year scoped prefix shared by order numbers
func OrderNumberPrefix(year int) string {
	return fmt.Sprintf("SO-%d-", year)
}
