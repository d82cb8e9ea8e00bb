// Package v1 provides HTTP API version 1.
package v1

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mfgplan/internal/infrastructure/http/v1/handlers"
	"mfgplan/internal/infrastructure/http/v1/middleware"
	"mfgplan/internal/infrastructure/storage/postgres"
	"mfgplan/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Pool is reported by /health/info; may be nil
	Pool *postgres.Pool

	// TxManager is injected into every API request context; may be nil in tests
	TxManager *postgres.TxManager

	// HealthChecks are probed by /health/ready
	HealthChecks map[string]handlers.Pinger

	Plans   handlers.PlanCalculator
	Batches handlers.BatchCalculator

	// InfiniteCoverageDays replaces unbounded coverage in JSON responses
	InfiniteCoverageDays float64

	// AllowedOrigins for CORS; "*" allows any origin
	AllowedOrigins []string

	Version string
	Debug   bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(corsMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.HealthChecks, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	v1 := router.Group("/api/v1")
	if cfg.TxManager != nil {
		v1.Use(middleware.Database(cfg.TxManager))
	}
	registerManufactureRoutes(v1, cfg)

	return router
}

// registerManufactureRoutes registers production planning endpoints.
func registerManufactureRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()
	handler := handlers.NewManufactureHandler(baseHandler, cfg.Plans, cfg.Batches, cfg.InfiniteCoverageDays)

	manufacture := rg.Group("/manufacture")
	{
		manufacture.POST("/batch-planning/calculate", handler.CalculateBatchPlan)
		manufacture.POST("/batch/calculate-by-size", handler.CalculateBySize)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID, middleware.HeaderTraceID},
		ExposeHeaders: []string{middleware.HeaderRequestID, middleware.HeaderTraceID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
