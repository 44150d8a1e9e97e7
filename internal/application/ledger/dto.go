package ledger

import (
	"time"

	"github.com/dms/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Entry DTOs
// =============================================================================

// CreateEntryRequest represents a manual ledger posting entered by an admin
type CreateEntryRequest struct {
	CustomerID  uuid.UUID        `json:"customer_id" binding:"required"`
	EntryDate   *time.Time       `json:"entry_date" binding:"required"`
	Description string           `json:"description" binding:"required,min=1,max=500"`
	Type        string           `json:"type" binding:"required,oneof=debit credit order payment adjustment opening_balance"`
	Amount      *decimal.Decimal `json:"amount" binding:"required"`
	Reference   string           `json:"reference" binding:"max=100"`
}

// UpdateEntryRequest carries the editable fields of a manual entry
type UpdateEntryRequest struct {
	Description *string          `json:"description" binding:"omitempty,min=1,max=500"`
	Amount      *decimal.Decimal `json:"amount"`
	Reference   *string          `json:"reference" binding:"omitempty,max=100"`
}

// EntryResponse represents a ledger entry in API responses
type EntryResponse struct {
	ID             uuid.UUID       `json:"id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	EntryDate      time.Time       `json:"entry_date"`
	Description    string          `json:"description"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Reference      string          `json:"reference"`
	ReferenceID    *uuid.UUID      `json:"reference_id,omitempty"`
	ReferenceModel string          `json:"reference_model,omitempty"`
	CreatedBy      *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// EntryListFilter represents filter options for the entry listing
type EntryListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	Type       string     `form:"type" binding:"omitempty,oneof=debit credit order payment adjustment opening_balance"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size" binding:"omitempty,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Statement DTOs
// =============================================================================

// StatementQuery bounds a statement by entry date; both ends are optional
type StatementQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// StatementLineResponse is one entry with the balance after it
type StatementLineResponse struct {
	EntryResponse
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// StatementResponse lists a customer's entries newest first
type StatementResponse struct {
	CustomerID     uuid.UUID               `json:"customer_id"`
	OpeningBalance decimal.Decimal         `json:"opening_balance"`
	ClosingBalance decimal.Decimal         `json:"closing_balance"`
	Outstanding    decimal.Decimal         `json:"outstanding"`
	Lines          []StatementLineResponse `json:"lines"`
}

// BalanceResponse compares the ledger fold with the cached outstanding
type BalanceResponse struct {
	CustomerID  uuid.UUID       `json:"customer_id"`
	AsOf        *time.Time      `json:"as_of,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// =============================================================================
// Reconcile DTOs
// =============================================================================

// ReconcileRequest selects one customer or, when CustomerID is nil, all of them
type ReconcileRequest struct {
	CustomerID *uuid.UUID `json:"customer_id"`
	Repair     bool       `json:"repair"`
}

// ReconcileResult is the comparison for one customer
type ReconcileResult struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Cached     decimal.Decimal `json:"cached"`
	Computed   decimal.Decimal `json:"computed"`
	Drift      decimal.Decimal `json:"drift"`
	Repaired   bool            `json:"repaired"`
}

// InBalance reports whether the cache matches the ledger
func (r ReconcileResult) InBalance() bool {
	return r.Drift.IsZero()
}

// ReconcileReport summarizes a reconcile run
type ReconcileReport struct {
	Checked  int               `json:"checked"`
	Drifted  []ReconcileResult `json:"drifted"`
	Repaired int               `json:"repaired"`
}

// ToEntryResponse converts a domain entry to EntryResponse
func ToEntryResponse(e *ledger.Entry) EntryResponse {
	resp := EntryResponse{
		ID:          e.ID,
		CustomerID:  e.CustomerID,
		EntryDate:   e.EntryDate,
		Description: e.Description,
		Type:        string(e.Type),
		Amount:      e.Amount,
		Reference:   e.Reference,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if !e.Source.IsNone() {
		id := e.Source.ID
		resp.ReferenceID = &id
		resp.ReferenceModel = string(e.Source.Kind)
	}
	if e.CreatedBy != uuid.Nil {
		by := e.CreatedBy
		resp.CreatedBy = &by
	}
	return resp
}

// ToEntryResponses converts a slice of entries
func ToEntryResponses(entries []ledger.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToEntryResponse(&entries[i])
	}
	return out
}

func toStatementLines(lines []ledger.StatementLine) []StatementLineResponse {
	out := make([]StatementLineResponse, len(lines))
	for i := range lines {
		out[i] = StatementLineResponse{
			EntryResponse:  ToEntryResponse(&lines[i].Entry),
			Debit:          lines[i].Debit,
			Credit:         lines[i].Credit,
			RunningBalance: lines[i].RunningBalance,
		}
	}
	return out
}
