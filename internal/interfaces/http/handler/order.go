package handler

import (
	tradeapp "github.com/dms/backend/internal/application/trade"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderHandler handles sales order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{BaseHandler: newBase(log), orderService: orderService}
}

// Create POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req tradeapp.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID GET /orders/:id
func (h *OrderHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter tradeapp.OrderListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	orders, total, err := h.orderService.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, orders, total, page, size)
}

// UpdateItems PUT /orders/:id/items
func (h *OrderHandler) UpdateItems(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateItemsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orderService.UpdateItems(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus changes the order status. A ledger failure after the status
// is saved comes back as ledger_warning on a successful response.
// PUT /orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.orderService.UpdateStatus(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
