// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockledger/internal/domain/auth"
	"stockledger/internal/domain/catalogs/category"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/stock"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks).
	Pool *pgxpool.Pool

	// Logger for request logging.
	Logger *logger.Logger

	// TokenValidator for protected endpoints.
	TokenValidator middleware.TokenValidator

	AuthService      *auth.Service
	LedgerService    *ledger.Service
	StockService     *stock.Service
	WarehouseService *warehouse.Service
	CategoryService  *category.Service

	// CORSOrigins lists allowed origins; empty allows none.
	CORSOrigins []string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	baseHandler := handlers.NewBaseHandler()

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Public auth endpoints
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
		v1.POST("/auth/login", authHandler.Login)

		// Protected endpoints
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.TokenValidator))

		protected.POST("/auth/password", authHandler.ChangePassword)

		warehouseHandler := handlers.NewWarehouseHandler(baseHandler, cfg.WarehouseService)
		warehouseHandler.RegisterRoutes(protected.Group("/warehouses"))

		categoryHandler := handlers.NewCategoryHandler(baseHandler, cfg.CategoryService)
		categoryHandler.RegisterRoutes(protected.Group("/categories"))

		itemHandler := handlers.NewItemHandler(baseHandler, cfg.StockService)
		itemHandler.RegisterRoutes(protected.Group("/items"))

		entryHandler := handlers.NewEntryHandler(baseHandler, cfg.LedgerService)
		entryHandler.RegisterRoutes(protected.Group("/entries"))
	}

	return router
}
