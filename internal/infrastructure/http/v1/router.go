// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/reports"
	"tiendapos/internal/domain/sales"
	"tiendapos/internal/domain/tenantcfg"
	"tiendapos/internal/infrastructure/http/v1/handlers"
	"tiendapos/internal/infrastructure/http/v1/middleware"
	"tiendapos/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	// Pool is the database connection (nil for in-memory setups).
	Pool *pgxpool.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	Permissions *permissions.Service
	Catalog     *catalog.Service
	Sales       *sales.Service
	Reports     *reports.Service
	Settings    *tenantcfg.Service

	// SettingsProvider backs the catalog low-stock filter.
	SettingsProvider tenantcfg.Provider
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	{
		handlers.NewProductHandler(base, cfg.Catalog, cfg.SettingsProvider).
			RegisterRoutes(api.Group("/products"))
		handlers.NewSaleHandler(base, cfg.Sales).
			RegisterRoutes(api.Group("/sales"))
		handlers.NewReportHandler(base, cfg.Reports).
			RegisterRoutes(api.Group("/reports"))
		handlers.NewPermissionHandler(base, cfg.Permissions).
			RegisterRoutes(api.Group("/permissions"))
		handlers.NewSettingsHandler(base, cfg.Settings).
			RegisterRoutes(api.Group("/settings"))
	}

	return router
}
