package ledger

import (
	"strings"
	"time"

	"github.com/dms/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType classifies a ledger entry and decides how it moves the balance
type EntryType string

const (
	// EntryTypeDebit increases what the customer owes
	EntryTypeDebit EntryType = "debit"
	// EntryTypeCredit decreases what the customer owes
	EntryTypeCredit EntryType = "credit"
	// EntryTypeOrder is posted when an order is delivered
	EntryTypeOrder EntryType = "order"
	// EntryTypePayment is posted when a collection is approved
	EntryTypePayment EntryType = "payment"
	// EntryTypeAdjustment is added as stored; the caller decides the sign
	EntryTypeAdjustment EntryType = "adjustment"
	// EntryTypeOpeningBalance replaces the accumulated balance with its amount
	EntryTypeOpeningBalance EntryType = "opening_balance"
)

// String returns the string representation of EntryType
func (t EntryType) String() string {
	return string(t)
}

// Signed reports whether a stored amount may be negative. Only adjustments
// carry their own sign.
func (t EntryType) Signed() bool {
	return t == EntryTypeAdjustment
}

// IsValid reports whether t is a known entry type
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeDebit,
		EntryTypeCredit,
		EntryTypeOrder,
		EntryTypePayment,
		EntryTypeAdjustment,
		EntryTypeOpeningBalance:
		return true
	}
	return false
}

// Direction describes how an entry type moves the balance
type Direction int

const (
	DirectionIncrease Direction = iota + 1
	DirectionDecrease
	DirectionReset
)

// Direction returns how this entry type moves the balance
func (t EntryType) Direction() Direction {
	switch t {
	case EntryTypeCredit, EntryTypePayment:
		return DirectionDecrease
	case EntryTypeOpeningBalance:
		return DirectionReset
	default:
		return DirectionIncrease
	}
}

// ParseEntryType validates s against the known entry types
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", shared.NewValidationError("invalid ledger entry type: " + s)
	}
	return t, nil
}

// Entry is a single signed financial event attributed to a customer.
// Entries with a Source were generated by an order or collection and can
// only be removed by the process that created them.
type Entry struct {
	shared.BaseEntity
	CustomerID  uuid.UUID
	EntryDate   time.Time
	Description string
	Type        EntryType
	Amount      decimal.Decimal // never negative
	Reference   string
	Source      Source
	CreatedBy   uuid.UUID // uuid.Nil for system postings
}

// NewEntry creates a new ledger entry after validating its fields
func NewEntry(
	customerID uuid.UUID,
	entryDate time.Time,
	description string,
	entryType EntryType,
	amount decimal.Decimal,
	reference string,
	source Source,
	createdBy uuid.UUID,
) (*Entry, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer id is required")
	}
	if entryDate.IsZero() {
		return nil, shared.NewValidationError("entry date is required")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewValidationError("description is required")
	}
	if !entryType.IsValid() {
		return nil, shared.NewValidationError("invalid ledger entry type: " + string(entryType))
	}
	if amount.IsNegative() && !entryType.Signed() {
		return nil, shared.NewValidationError("amount cannot be negative")
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}

	return &Entry{
		BaseEntity:  shared.NewBaseEntity(),
		CustomerID:  customerID,
		EntryDate:   entryDate.UTC(),
		Description: description,
		Type:        entryType,
		Amount:      amount,
		Reference:   strings.TrimSpace(reference),
		Source:      source,
		CreatedBy:   createdBy,
	}, nil
}

// IsSystemGenerated returns true when an order or collection created the entry
func (e *Entry) IsSystemGenerated() bool {
	return !e.Source.IsNone()
}

// Revision carries the optional fields of a manual entry edit
type Revision struct {
	Description *string
	Amount      *decimal.Decimal
	Reference   *string
}

// Revise rewrites a manual entry and returns new amount minus old amount.
func (e *Entry) Revise(r Revision) (decimal.Decimal, error) {
	if e.IsSystemGenerated() {
		return decimal.Zero, shared.NewInvalidStateError("system generated ledger entries cannot be edited")
	}

	if r.Amount != nil && r.Amount.IsNegative() && !e.Type.Signed() {
		return decimal.Zero, shared.NewValidationError("amount cannot be negative")
	}
	var description string
	if r.Description != nil {
		description = strings.TrimSpace(*r.Description)
		if description == "" {
			return decimal.Zero, shared.NewValidationError("description cannot be empty")
		}
	}

	delta := decimal.Zero
	if r.Amount != nil {
		delta = r.Amount.Sub(e.Amount)
		e.Amount = *r.Amount
	}
	if r.Description != nil {
		e.Description = description
	}
	if r.Reference != nil {
		e.Reference = strings.TrimSpace(*r.Reference)
	}
	e.Touch()
	return delta, nil
}

// EnsureRemovable rejects deletion of system generated entries
func (e *Entry) EnsureRemovable() error {
	if e.IsSystemGenerated() {
		return shared.NewInvalidStateError("ledger entry was generated by " + string(e.Source.Kind) + " and cannot be deleted")
	}
	return nil
}
