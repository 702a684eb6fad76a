// Package main is the entry point for the tiendapos API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"

	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/reports"
	"tiendapos/internal/domain/sales"
	"tiendapos/internal/domain/tenantcfg"
	"tiendapos/internal/infrastructure/auth"
	v1 "tiendapos/internal/infrastructure/http/v1"
	"tiendapos/internal/infrastructure/storage/postgres"
	"tiendapos/pkg/logger"
)

// Config is populated from the environment.
type Config struct {
	Port     string `envconfig:"APP_PORT" default:"8080"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Env == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting tiendapos server")

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatalw("failed to apply schema", "error", err)
		}
	}

	// --- Repositories and services ---
	txManager := postgres.NewTxManager(pool)

	productRepo := postgres.NewProductRepo(txManager)
	saleRepo := postgres.NewSaleRepo(txManager)
	permissionRepo := postgres.NewPermissionRepo(txManager)
	settingsRepo := postgres.NewSettingsRepo(txManager)

	permissionService := permissions.NewService(permissionRepo)
	catalogService := catalog.NewService(productRepo, permissionService, settingsRepo, txManager)
	salesService := sales.NewService(productRepo, saleRepo, permissionService, settingsRepo, txManager)
	reportService := reports.NewService(saleRepo, productRepo, permissionService, txManager)
	settingsService := tenantcfg.NewService(settingsRepo, permissionService)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// --- Router and HTTP server ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:             pool.Pool,
		Logger:           log,
		JWTValidator:     jwtManager,
		Permissions:      permissionService,
		Catalog:          catalogService,
		Sales:            salesService,
		Reports:          reportService,
		Settings:         settingsService,
		SettingsProvider: settingsRepo,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
