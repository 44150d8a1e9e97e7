package collection

import (
	"fmt"
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMode is how the customer paid
type PaymentMode string

const (
	PaymentModeCash         PaymentMode = "cash"
	PaymentModeCheque       PaymentMode = "cheque"
	PaymentModeBankTransfer PaymentMode = "bank_transfer"
	PaymentModeUPI          PaymentMode = "upi"
	PaymentModeCard         PaymentMode = "card"
)

// IsValid returns true if m is a known payment mode
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeCheque, PaymentModeBankTransfer, PaymentModeUPI, PaymentModeCard:
		return true
	}
	return false
}

// PaymentDetails holds instrument specific fields
type PaymentDetails struct {
	Reference    string
	BankName     string
	ChequeNumber string
	ChequeDate   *time.Time
	DepositDate  *time.Time
}

// Collection is a payment received from a customer, pending approval
type Collection struct {
	shared.BaseAggregateRoot
	CollectionNumber string
	CustomerID       uuid.UUID
	SalesmanID       *uuid.UUID
	Amount           decimal.Decimal
	PaymentMode      PaymentMode
	Details          PaymentDetails
	CollectionDate   time.Time
	Status           Status
	Notes            string
	CreatedBy        uuid.UUID
}

// NewCollection creates a pending collection
func NewCollection(
	number string,
	customerID uuid.UUID,
	salesmanID *uuid.UUID,
	amount decimal.Decimal,
	mode PaymentMode,
	details PaymentDetails,
	collectionDate time.Time,
	createdBy uuid.UUID,
) (*Collection, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewValidationError("collection number is required")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer id is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("amount must be positive")
	}
	if !mode.IsValid() {
		return nil, shared.NewValidationError("invalid payment mode: " + string(mode))
	}
	if mode == PaymentModeCheque && strings.TrimSpace(details.ChequeNumber) == "" {
		return nil, shared.NewValidationError("cheque number is required for cheque payments")
	}
	if collectionDate.IsZero() {
		collectionDate = time.Now()
	}

	return &Collection{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CollectionNumber:  number,
		CustomerID:        customerID,
		SalesmanID:        salesmanID,
		Amount:            amount,
		PaymentMode:       mode,
		Details:           details,
		CollectionDate:    collectionDate.UTC(),
		Status:            StatusPending,
		CreatedBy:         createdBy,
	}, nil
}

// ChangeStatus writes a new status and returns the ledger effect, if the
// transition has one. Unlisted transitions, including writes to and from
// cancelled, only change the field.
func (c *Collection) ChangeStatus(to Status) (Effect, bool, error) {
	if !to.IsValid() {
		return Effect{}, false, shared.NewValidationError("invalid collection status: " + string(to))
	}
	effect, ok := EffectFor(c.Status, to)
	c.Status = to
	c.Touch()
	c.IncrementVersion()
	return effect, ok, nil
}

// Cancel moves a pending collection to cancelled and returns the reversal
// to post.
func (c *Collection) Cancel() (Effect, error) {
	if c.Status != StatusPending {
		return Effect{}, shared.NewInvalidStateError(
			fmt.Sprintf("only pending collections can be cancelled, current status: %s", c.Status))
	}
	effect := cancelEffect(c.Status)
	c.Status = StatusCancelled
	c.Touch()
	c.IncrementVersion()
	return effect, nil
}

// OwnerSalesmanID returns the salesman that recorded the collection or uuid.Nil
func (c *Collection) OwnerSalesmanID() uuid.UUID {
	if c.SalesmanID == nil {
		return uuid.Nil
	}
	return *c.SalesmanID
}

// LedgerReference is written on entries this collection generates
func (c *Collection) LedgerReference() string {
	if c.Details.ChequeNumber != "" {
		return c.CollectionNumber + "/" + c.Details.ChequeNumber
	}
	return c.CollectionNumber
}

// FormatNumber builds a collection number like COL-2026-000042
func FormatNumber(year int, seq int64) string {
	return fmt.Sprintf("%s%06d", NumberPrefix(year), seq)
}

// NumberPrefix is the year scoped prefix shared by collection numbers
func NumberPrefix(year int) string {
	return fmt.Sprintf("COL-%d-", year)
}
