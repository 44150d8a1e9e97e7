package partner

import (
	"regexp"
	"strings"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var mobilePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Customer is a retailer buying through the distributor.
// OutstandingAmount caches the ledger fold for this customer and is kept in
// step by every posting; it never goes below zero.
type Customer struct {
	shared.BaseAggregateRoot
	Name              string
	Mobile            string
	Email             string
	Address           string
	Territory         string
	GSTIN             string
	CreditLimit       decimal.Decimal
	OutstandingAmount decimal.Decimal
	SalesmanID        *uuid.UUID // assigned salesman, if any
	IsActive          bool
}

// NewCustomer creates a customer with zero outstanding
func NewCustomer(name, mobile string, creditLimit decimal.Decimal) (*Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("customer name is required")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("customer name cannot exceed 200 characters")
	}
	if err := validateMobile(mobile); err != nil {
		return nil, err
	}
	if creditLimit.IsNegative() {
		return nil, shared.NewValidationError("credit limit cannot be negative")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Mobile:            strings.TrimSpace(mobile),
		CreditLimit:       creditLimit,
		OutstandingAmount: decimal.Zero,
		IsActive:          true,
	}, nil
}

// SetContact updates email and address
func (c *Customer) SetContact(email, address string) {
	c.Email = strings.TrimSpace(email)
	c.Address = strings.TrimSpace(address)
	c.Touch()
}

// SetTerritory records the sales territory the customer belongs to
func (c *Customer) SetTerritory(territory string) {
	c.Territory = strings.TrimSpace(territory)
	c.Touch()
}

// AssignSalesman links the customer to a salesman; uuid.Nil clears it
func (c *Customer) AssignSalesman(salesmanID uuid.UUID) {
	if salesmanID == uuid.Nil {
		c.SalesmanID = nil
	} else {
		c.SalesmanID = &salesmanID
	}
	c.Touch()
}

// SetCreditLimit sets the customer's credit limit
func (c *Customer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewValidationError("credit limit cannot be negative")
	}
	c.CreditLimit = limit
	c.Touch()
	return nil
}

// SetOutstanding overwrites the cached outstanding amount, floored at zero
func (c *Customer) SetOutstanding(amount decimal.Decimal) {
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	c.OutstandingAmount = amount
	c.Touch()
}

// IncreaseOutstanding adds amount to the outstanding balance
func (c *Customer) IncreaseOutstanding(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("amount cannot be negative")
	}
	c.SetOutstanding(c.OutstandingAmount.Add(amount))
	return nil
}

// DecreaseOutstanding subtracts amount, flooring the result at zero
func (c *Customer) DecreaseOutstanding(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewValidationError("amount cannot be negative")
	}
	c.SetOutstanding(c.OutstandingAmount.Sub(amount))
	return nil
}

// AvailableCredit returns credit limit minus outstanding; may be negative
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.OutstandingAmount)
}

// ExceedsCreditLimit reports whether adding amount would pass the limit.
// A zero limit means no limit is configured.
func (c *Customer) ExceedsCreditLimit(amount decimal.Decimal) bool {
	if c.CreditLimit.IsZero() {
		return false
	}
	return c.OutstandingAmount.Add(amount).GreaterThan(c.CreditLimit)
}

// Deactivate stops new orders for the customer
func (c *Customer) Deactivate() {
	c.IsActive = false
	c.Touch()
}

// OwnerSalesmanID returns the assigned salesman or uuid.Nil
func (c *Customer) OwnerSalesmanID() uuid.UUID {
	if c.SalesmanID == nil {
		return uuid.Nil
	}
	return *c.SalesmanID
}

func validateMobile(mobile string) error {
	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return shared.NewValidationError("mobile number is required")
	}
	if !mobilePattern.MatchString(mobile) {
		return shared.NewValidationError("invalid mobile number format")
	}
	return nil
}
