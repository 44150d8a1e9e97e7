package handler

import (
	collectionapp "github.com/dms/backend/internal/application/collection"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CollectionHandler handles payment collection endpoints
type CollectionHandler struct {
	BaseHandler
	collectionService *collectionapp.Service
}

// NewCollectionHandler creates a new CollectionHandler
func NewCollectionHandler(collectionService *collectionapp.Service, log *zap.Logger) *CollectionHandler {
	return &CollectionHandler{BaseHandler: newBase(log), collectionService: collectionService}
}

// Create POST /collections
func (h *CollectionHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req collectionapp.CreateCollectionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	col, err := h.collectionService.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, col)
}

// GetByID GET /collections/:id
func (h *CollectionHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	col, err := h.collectionService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, col)
}

// List GET /collections
func (h *CollectionHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter collectionapp.CollectionListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	cols, total, err := h.collectionService.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, cols, total, page, size)
}

// UpdateStatus moves a collection through its lifecycle and posts the
// matching ledger entry.
// PUT /collections/:id/status
func (h *CollectionHandler) UpdateStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req collectionapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.collectionService.UpdateStatus(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel withdraws a pending collection.
// DELETE /collections/:id
func (h *CollectionHandler) Cancel(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.collectionService.Cancel(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
