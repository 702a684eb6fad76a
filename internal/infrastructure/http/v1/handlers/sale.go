package handlers

import (
	"github.com/gin-gonic/gin"

	"tiendapos/internal/domain/sales"
	"tiendapos/internal/infrastructure/http/v1/dto"
)

// SaleHandler exposes the sale processing endpoints.
type SaleHandler struct {
	*BaseHandler
	service *sales.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sales.Service) *SaleHandler {
	return &SaleHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers the sale endpoints.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Complete)
	rg.GET("", h.ListForDay)
	rg.GET("/:id", h.Get)
	rg.DELETE("/:id", h.Reverse)
}

// Complete processes a cart into a sale record.
func (h *SaleHandler) Complete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.CompleteSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cart, err := req.ToCart()
	if err != nil {
		h.Error(c, err)
		return
	}

	record, err := h.service.Complete(c.Request.Context(), actor, cart, req.SaleDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, record)
}

func (h *SaleHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	record, err := h.service.GetByID(c.Request.Context(), actor, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, record)
}

// Reverse deletes a sale record and restores its stock.
func (h *SaleHandler) Reverse(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Reverse(c.Request.Context(), actor, saleID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// ListForDay returns sales booked under a calendar date (default today).
func (h *SaleHandler) ListForDay(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	records, err := h.service.ListForDay(c.Request.Context(), actor, c.Query("date"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, records)
}
