package handlers

import (
	"github.com/gin-gonic/gin"

	"tiendapos/internal/domain/permissions"
)

// PermissionHandler exposes the permission matrix endpoints.
type PermissionHandler struct {
	*BaseHandler
	service *permissions.Service
}

// NewPermissionHandler creates a new permission handler.
func NewPermissionHandler(base *BaseHandler, service *permissions.Service) *PermissionHandler {
	return &PermissionHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers the permission endpoints.
func (h *PermissionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/effective", h.Effective)
	rg.GET("/matrix", h.Matrix)
	rg.PUT("/matrix", h.UpdateMatrix)
}

// Effective returns the caller's resolved permission set.
func (h *PermissionHandler) Effective(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	set, err := h.service.EffectiveSet(c.Request.Context(), actor)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, set)
}

// Matrix returns the tenant's stored role/capability matrix.
func (h *PermissionHandler) Matrix(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	matrix, err := h.service.Matrix(c.Request.Context(), actor, actor.TenantID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, matrix)
}

// UpdateMatrix replaces the tenant's stored matrix.
func (h *PermissionHandler) UpdateMatrix(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var matrix permissions.Matrix
	if !h.BindJSON(c, &matrix) {
		return
	}

	if err := h.service.UpdateMatrix(c.Request.Context(), actor, actor.TenantID, matrix); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
