package handlers

import (
	"github.com/gin-gonic/gin"

	"tiendapos/internal/domain/tenantcfg"
	"tiendapos/internal/infrastructure/http/v1/dto"
)

// SettingsHandler exposes the tenant settings endpoints.
type SettingsHandler struct {
	*BaseHandler
	service *tenantcfg.Service
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(base *BaseHandler, service *tenantcfg.Service) *SettingsHandler {
	return &SettingsHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers the settings endpoints.
func (h *SettingsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Get)
	rg.PUT("", h.Update)
}

func (h *SettingsHandler) Get(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	settings, err := h.service.Get(c.Request.Context(), actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, settings)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req dto.SettingsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Update(c.Request.Context(), actor, req.ToSettings()); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
