package handler

import (
	catalogapp "github.com/dms/backend/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler handles company and product endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.Service
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *catalogapp.Service, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{BaseHandler: newBase(log), catalogService: catalogService}
}

// CreateCompany POST /companies
func (h *CatalogHandler) CreateCompany(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req catalogapp.CreateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}
	company, err := h.catalogService.CreateCompany(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, company)
}

// ListCompanies GET /companies
func (h *CatalogHandler) ListCompanies(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	companies, total, err := h.catalogService.ListCompanies(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, companies, total, page, size)
}

// CreateProduct POST /products
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}
	product, err := h.catalogService.CreateProduct(c.Request.Context(), p, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// GetProduct GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListProducts GET /products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	products, total, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, products, total, page, size)
}
