package collection

import (
	"strings"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/dms/backend/internal/domain/shared"
)

// Status is the approval state of a collection
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCleared   Status = "cleared"
	StatusBounced   Status = "bounced"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if s is one of the known statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusCleared, StatusBounced, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// ParseStatus validates s against the known statuses
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", shared.NewValidationError("invalid collection status: " + s)
	}
	return st, nil
}

// OutstandingChange says how an effect moves the customer's outstanding
type OutstandingChange int

const (
	OutstandingUnchanged OutstandingChange = iota
	OutstandingIncrease
	OutstandingDecrease
)

// Effect is the ledger posting and balance movement a status change causes
type Effect struct {
	EntryType   ledger.EntryType
	Description string
	Outstanding OutstandingChange
}

type transition struct {
	from, to Status
}

// effects lists the only status changes that touch the ledger. Every other
// status write is a plain field update.
var effects = map[transition]Effect{
	{StatusPending, StatusApproved}: {
		EntryType:   ledger.EntryTypePayment,
		Description: "Payment received",
		Outstanding: OutstandingDecrease,
	},
	{StatusCleared, StatusBounced}: {
		EntryType:   ledger.EntryTypeDebit,
		Description: "Payment bounced",
		Outstanding: OutstandingIncrease,
	},
	{StatusBounced, StatusCleared}: {
		EntryType:   ledger.EntryTypeCredit,
		Description: "Bounced payment cleared",
		Outstanding: OutstandingDecrease,
	},
}

// EffectFor returns the effect of moving from one status to another.
// An approved collection that bounces is handled as cleared then bounced.
func EffectFor(from, to Status) (Effect, bool) {
	if from == StatusApproved && to == StatusBounced {
		from = StatusCleared
	}
	e, ok := effects[transition{from, to}]
	return e, ok
}

// cancelEffect is posted when a pending collection is cancelled. The
// outstanding only moves if the collection had cleared.
func cancelEffect(prior Status) Effect {
	e := Effect{
		EntryType:   ledger.EntryTypeDebit,
		Description: "Collection cancelled",
		Outstanding: OutstandingUnchanged,
	}
	if prior == StatusCleared {
		e.Outstanding = OutstandingIncrease
	}
	return e
}
