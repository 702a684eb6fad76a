package handlers

import (
	"github.com/gin-gonic/gin"

	"tiendapos/internal/domain/reports"
	"tiendapos/internal/infrastructure/http/v1/dto"
)

// ReportHandler exposes the report aggregation endpoints.
type ReportHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportHandler creates a new report handler.
func NewReportHandler(base *BaseHandler, service *reports.Service) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

// RegisterRoutes registers the report endpoints.
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:kind", h.Run)
}

// Run materializes the requested report kind.
func (h *ReportHandler) Run(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var query dto.ReportQuery
	if !h.BindQuery(c, &query) {
		return
	}

	result, err := h.service.Run(c.Request.Context(), actor, reports.Kind(c.Param("kind")), reports.Params{
		Date:      query.Date,
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, result)
}
