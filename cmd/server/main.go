package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staff-absence-backend/internal/api/middleware"
	"staff-absence-backend/internal/api/routes"
	"staff-absence-backend/internal/app"
	"staff-absence-backend/internal/auth"
	"staff-absence-backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	_ "staff-absence-backend/docs" // This is needed for swag
	_ "time/tzdata"
)

//	@title			Staff Absence Backend API
//	@version		1.0
//	@description	Backend for the salon absence workflow: LINE webhook intake, substitute recruitment and the admin dashboard.
//	@termsOfService	http://swagger.io/terms/

//	@contact.name	API Support
//	@contact.url	http://www.example.com/support
//	@contact.email	support@example.com

//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT

//	@host		localhost:7008
//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 30 * time.Second

func main() {
	// Load environment variables from .env file in development
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Set up logging
	setupLogging(cfg.LogLevel)

	workflow, err := config.LoadWorkflow(cfg.WorkflowConfigPath)
	if err != nil {
		logrus.Fatal("Failed to load workflow configuration:", err)
	}

	authConfig, err := auth.LoadAuthConfig(cfg)
	if err != nil {
		logrus.Fatal("Failed to load auth configuration:", err)
	}
	authService, err := auth.NewAuthService(authConfig)
	if err != nil {
		logrus.Fatal("Failed to initialize auth service:", err)
	}
	if !authService.Enabled() {
		logrus.Warn("ADMIN_PASSWORD_HASH is not set, dashboard endpoints are unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, workflow, app.Options{})
	if err != nil {
		logrus.Fatal("Failed to initialize workflow:", err)
	}
	// workers outlive the signal; a.Close drains them after the server stops
	a.Start(context.Background())

	var rateLimitStore limiter.Store
	if a.Redis != nil {
		rateLimitStore, err = middleware.NewRedisStore(a.Redis)
		if err != nil {
			logrus.Fatal("Failed to initialize rate limit store:", err)
		}
	}

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router, err := routes.SetupRoutes(routes.Dependencies{
		Config:         cfg,
		Workflow:       a.Workflow,
		Events:         a.Processor,
		Auth:           authService,
		HealthChecks:   a.HealthChecks(),
		RateLimitStore: rateLimitStore,
	})
	if err != nil {
		logrus.Fatal("Failed to set up routes:", err)
	}

	// Start server
	port := cfg.Port
	if port == "" {
		port = "7008"
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
	}

	// queued events and notifications are drained before exit
	a.Close()
	logrus.Info("Server stopped")
}

func setupLogging(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	switch level {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "info":
		logrus.SetLevel(logrus.InfoLevel)
	case "warn":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}
}
