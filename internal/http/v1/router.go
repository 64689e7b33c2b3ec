// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"crudgrid/internal/auth"
	"crudgrid/internal/http/v1/handlers"
	"crudgrid/internal/http/v1/middleware"
	"crudgrid/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool.
	Pool *pgxpool.Pool

	// Logger for request logging.
	Logger *logger.Logger

	// JWTService validates and issues access tokens.
	JWTService *auth.JWTService
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	baseHandler := handlers.NewBaseHandler()
	gridHandler, err := handlers.NewGridHandler(baseHandler, cfg.Pool)
	if err != nil {
		return nil, err
	}
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.Pool, cfg.JWTService)

	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)

		// Grid endpoints work for anonymous users too; authenticated
		// users additionally get persisted display settings.
		grids := api.Group("/grids")
		grids.Use(middleware.OptionalAuth(cfg.JWTService))
		{
			grids.GET("/users", gridHandler.List)
			grids.GET("/users/columns", gridHandler.Columns)
			grids.POST("/users/search", gridHandler.Search)
			grids.POST("/users/reset", gridHandler.Reset)
		}

		// Settings endpoints require an authenticated user.
		settings := api.Group("/grids")
		settings.Use(middleware.Auth(cfg.JWTService))
		{
			settings.PUT("/users/settings", gridHandler.SaveSettings)
			settings.DELETE("/settings", gridHandler.DeleteSettings)
		}
	}

	return router, nil
}
