package handlers

import (
	"github.com/gin-gonic/gin"

	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/tenantcfg"
	"tiendapos/internal/infrastructure/http/v1/dto"
)

// ProductHandler exposes the stock ledger endpoints.
type ProductHandler struct {
	*BaseHandler
	service  *catalog.Service
	settings tenantcfg.Provider
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *catalog.Service, settings tenantcfg.Provider) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service, settings: settings}
}

// RegisterRoutes registers the product endpoints.
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *ProductHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.service.Create(c.Request.Context(), actor, req.ToSpec())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, product.ID.String())
}

func (h *ProductHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	product, err := h.service.GetByID(c.Request.Context(), actor, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	product, err := h.service.Update(c.Request.Context(), actor, productID, req.ToPatch())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	productID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, productID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *ProductHandler) List(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var query dto.ListProductsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter := catalog.Filter{
		Search:   query.Search,
		Category: query.Category,
	}

	// Low-stock filtering uses the tenant-configured threshold.
	if query.LowStock {
		settings, err := h.settings.Get(c.Request.Context(), actor.TenantID)
		if err != nil {
			h.Error(c, err)
			return
		}
		threshold := settings.LowStockThreshold
		filter.LowStockThreshold = &threshold
	}

	products, err := h.service.Query(c.Request.Context(), actor, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, products)
}
