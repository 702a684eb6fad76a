// Package main seeds a demo tenant: permission matrix, settings, and a small
// catalog. Prints a signed token for the demo superuser so the API can be
// exercised right away.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"tiendapos/internal/core/id"
	"tiendapos/internal/core/tx"
	"tiendapos/internal/domain/catalog"
	"tiendapos/internal/domain/permissions"
	"tiendapos/internal/domain/tenantcfg"
	"tiendapos/internal/infrastructure/auth"
	"tiendapos/internal/infrastructure/storage/postgres"
	"tiendapos/pkg/logger"
)

// Config is populated from the environment.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`

	TenantID string `envconfig:"SEED_TENANT_ID"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	ctx := logger.WithLogger(context.Background(), log)

	tenantID := id.New()
	if cfg.TenantID != "" {
		tenantID, err = id.Parse(cfg.TenantID)
		if err != nil {
			log.Fatalw("invalid SEED_TENANT_ID", "error", err)
		}
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	txManager := postgres.NewTxManager(pool)
	permissionRepo := postgres.NewPermissionRepo(txManager)
	settingsRepo := postgres.NewSettingsRepo(txManager)
	productRepo := postgres.NewProductRepo(txManager)

	permissionService := permissions.NewService(permissionRepo)

	superuser := permissions.Actor{
		ID:       id.New(),
		TenantID: tenantID,
		Role:     permissions.RoleSuperuser,
	}

	matrix := permissions.Matrix{
		permissions.RoleAdmin: {
			permissions.CapManageWarehouse:       true,
			permissions.CapManageSales:           true,
			permissions.CapViewReports:           true,
			permissions.CapAccessSettings:        true,
			permissions.CapDeleteSales:           true,
			permissions.CapManageUsers:           true,
			permissions.CapManageCategories:      true,
			permissions.CapManageDataTools:       true,
			permissions.CapChangeGeneralSettings: true,
		},
		permissions.RoleManager: {
			permissions.CapManageWarehouse:  true,
			permissions.CapManageSales:      true,
			permissions.CapViewReports:      true,
			permissions.CapDeleteSales:      true,
			permissions.CapManageCategories: true,
		},
		permissions.RoleSeller: {
			permissions.CapManageSales: true,
		},
	}
	if err := permissionService.UpdateMatrix(ctx, superuser, tenantID, matrix); err != nil {
		log.Fatalw("failed to seed permission matrix", "error", err)
	}

	if err := settingsRepo.Save(ctx, tenantID, tenantcfg.Settings{
		ExchangeRate:      decimal.RequireFromString("36.50"),
		LowStockThreshold: tenantcfg.DefaultLowStockThreshold,
	}); err != nil {
		log.Fatalw("failed to seed tenant settings", "error", err)
	}

	if err := seedCatalog(ctx, txManager, productRepo, tenantID); err != nil {
		log.Fatalw("failed to seed catalog", "error", err)
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, 24*time.Hour).
		IssueToken(superuser.ID.String(), tenantID.String(), string(permissions.RoleSuperuser))
	if err != nil {
		log.Fatalw("failed to issue demo token", "error", err)
	}

	log.Infow("seed complete", "tenant_id", tenantID)
	fmt.Printf("tenant:  %s\n", tenantID)
	fmt.Printf("token:   %s\n", token)
}

func seedCatalog(ctx context.Context, txManager tx.Manager, repo catalog.Repository, tenantID id.ID) error {
	specs := []catalog.ProductSpec{
		{
			Code: "HAR-001", Description: "Harina de trigo 1kg",
			Quantity: decimal.NewFromInt(40), UnitType: "unidad", Category: "Alimentos",
			PriceRef: decimal.RequireFromString("2.50"), PriceSecondary: decimal.RequireFromString("91.25"),
			PurchasePriceRef: decimal.RequireFromString("1.80"), PurchasePriceSecondary: decimal.RequireFromString("65.70"),
		},
		{
			Code: "ARR-001", Description: "Arroz blanco 1kg",
			Quantity: decimal.NewFromInt(60), UnitType: "unidad", Category: "Alimentos",
			PriceRef: decimal.RequireFromString("1.90"), PriceSecondary: decimal.RequireFromString("69.35"),
			PurchasePriceRef: decimal.RequireFromString("1.30"), PurchasePriceSecondary: decimal.RequireFromString("47.45"),
		},
		{
			Code: "JAB-001", Description: "Jabón de baño",
			Quantity: decimal.NewFromInt(3), UnitType: "unidad", Category: "Higiene",
			PriceRef: decimal.RequireFromString("1.20"), PriceSecondary: decimal.RequireFromString("43.80"),
			PurchasePriceRef: decimal.RequireFromString("0.75"), PurchasePriceSecondary: decimal.RequireFromString("27.38"),
		},
	}

	return txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, spec := range specs {
			product := catalog.NewProduct(tenantID, spec)
			if err := product.Validate(ctx); err != nil {
				return err
			}
			if err := repo.Create(ctx, product); err != nil {
				return err
			}
		}
		return nil
	})
}
