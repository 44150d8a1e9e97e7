package handler

import (
	partnerapp "github.com/dms/backend/internal/application/partner"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{BaseHandler: newBase(log), customerService: customerService}
}

// Create POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

// GetByID GET /customers/:id
func (h *CustomerHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// List GET /customers
func (h *CustomerHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter partnerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	customers, total, err := h.customerService.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, customers, total, page, size)
}

// Update PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.Update(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// AssignSalesman PUT /customers/:id/salesman
func (h *CustomerHandler) AssignSalesman(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req partnerapp.AssignSalesmanRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customerService.AssignSalesman(c.Request.Context(), p, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// SalesmanHandler handles salesman endpoints
type SalesmanHandler struct {
	BaseHandler
	salesmanService *partnerapp.SalesmanService
}

// NewSalesmanHandler creates a new SalesmanHandler
func NewSalesmanHandler(salesmanService *partnerapp.SalesmanService, log *zap.Logger) *SalesmanHandler {
	return &SalesmanHandler{BaseHandler: newBase(log), salesmanService: salesmanService}
}

// Create POST /salesmen
func (h *SalesmanHandler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req partnerapp.CreateSalesmanRequest
	if !h.bindJSON(c, &req) {
		return
	}
	salesman, err := h.salesmanService.Create(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, salesman)
}

// GetByID GET /salesmen/:id
func (h *SalesmanHandler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	salesman, err := h.salesmanService.GetByID(c.Request.Context(), p, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, salesman)
}

// List GET /salesmen
func (h *SalesmanHandler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var filter partnerapp.SalesmanListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	salesmen, total, err := h.salesmanService.List(c.Request.Context(), p, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, salesmen, total, page, size)
}
