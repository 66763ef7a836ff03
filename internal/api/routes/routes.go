package routes

import (
	"fmt"

	"staff-absence-backend/internal/api/handlers"
	"staff-absence-backend/internal/api/middleware"
	"staff-absence-backend/internal/auth"
	"staff-absence-backend/internal/config"
	"staff-absence-backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Dependencies are the collaborators the HTTP surface is built from
type Dependencies struct {
	Config         *config.Config
	Workflow       service.WorkflowServiceInterface
	Events         handlers.EventSubmitter
	Auth           *auth.AuthService
	HealthChecks   map[string]handlers.HealthCheck
	RateLimitStore limiter.Store
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config

	// Create router
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg))

	store := deps.RateLimitStore
	if store == nil {
		store = middleware.NewMemoryStore()
	}
	rateLimit, err := middleware.RateLimit(cfg.WebhookRateLimit, store)
	if err != nil {
		return nil, fmt.Errorf("failed to configure webhook rate limit: %w", err)
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(Version, deps.HealthChecks)
	webhookHandler := handlers.NewWebhookHandler(cfg.LineStaffChannelSecret, deps.Events)
	dashboardHandler := handlers.NewDashboardHandler(deps.Workflow)
	authHandler := auth.NewAuthHandler(deps.Auth)
	authMiddleware := auth.NewAuthMiddleware(deps.Auth)

	// Health check routes
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/health/live", healthHandler.Live)

	// Metrics and documentation
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Staff channel webhook
	router.POST("/webhook/line", rateLimit, webhookHandler.LineWebhook)

	// Auth routes
	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/validate", authHandler.Validate)
	}

	// API v1 routes, authenticated when an admin login is configured
	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	{
		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/stats", dashboardHandler.GetStats)
			dashboard.GET("/absence-reports", dashboardHandler.ListAbsenceReports)
			dashboard.GET("/substitute-requests", dashboardHandler.ListSubstituteRequests)
		}

		test := v1.Group("/test")
		{
			test.POST("/absence-report", dashboardHandler.TestAbsenceReport)
		}
	}

	return router, nil
}
