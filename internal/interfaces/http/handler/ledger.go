package handler

import (
	"time"

	ledgerapp "github.com/dms/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LedgerHandler handles ledger entry, statement and reconcile endpoints
type LedgerHandler struct {
	BaseHandler
	ledgerService *ledgerapp.Service
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *ledgerapp.Service, log *zap.Logger) *LedgerHandler {
	return &LedgerHandler{BaseHandler: newBase(log), ledgerService: ledgerService}
}

type balanceQuery struct {
	AsOf *time.Time `form:"as_of" time_format:"2006-01-02"`
}

// CreateEntry posts a manual entry.
// POST /ledger/entries
func (h *LedgerHandler) CreateEntry(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req ledgerapp.CreateEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.ledgerService.CreateEntry(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// UpdateEntry edits a manual entry.
// PUT /ledger/entries/:id
func (h *LedgerHandler) UpdateEntry(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req ledgerapp.UpdateEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.ledgerService.UpdateEntry(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// DeleteEntry removes a manual entry.
// DELETE /ledger/entries/:id
func (h *LedgerHandler) DeleteEntry(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.ledgerService.DeleteEntry(c.Request.Context(), p, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetEntry GET /ledger/entries/:id
func (h *LedgerHandler) GetEntry(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.ledgerService.GetEntry(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// ListEntries GET /ledger/entries
func (h *LedgerHandler) ListEntries(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter ledgerapp.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	entries, total, err := h.ledgerService.ListEntries(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, entries, total, page, size)
}

// Statement returns the customer's entries newest first with running balances.
// GET /customers/:id/statement
func (h *LedgerHandler) Statement(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	customerID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var q ledgerapp.StatementQuery
	if !h.bindQuery(c, &q) {
		return
	}
	statement, err := h.ledgerService.Statement(c.Request.Context(), p, customerID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, statement)
}

// Balance GET /customers/:id/balance
func (h *LedgerHandler) Balance(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	customerID, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var q balanceQuery
	if !h.bindQuery(c, &q) {
		return
	}
	balance, err := h.ledgerService.Balance(c.Request.Context(), p, customerID, q.AsOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// Reconcile compares cached outstanding with the ledger, optionally repairing.
// POST /ledger/reconcile
func (h *LedgerHandler) Reconcile(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req ledgerapp.ReconcileRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	report, err := h.ledgerService.Reconcile(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

type importQuery struct {
	DryRun bool `form:"dry_run"`
}

// ImportOpeningBalances posts opening balances from a CSV upload. The file
// comes as multipart field "file" or as a text/csv body. A file with row
// errors is answered with the report and nothing is posted.
// POST /ledger/opening-balances/import
func (h *LedgerHandler) ImportOpeningBalances(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var q importQuery
	if !h.bindQuery(c, &q) {
		return
	}

	src := c.Request.Body
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			h.BadRequest(c, "Cannot read uploaded file")
			return
		}
		defer f.Close()
		src = f
	}

	report, err := h.ledgerService.ImportOpeningBalances(c.Request.Context(), p, src, ledgerapp.ImportOptions{DryRun: q.DryRun})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
