package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	shipmentapp "github.com/shipments/backend/internal/application/shipment"
	webhookapp "github.com/shipments/backend/internal/application/webhook"
	"github.com/shipments/backend/internal/infrastructure/config"
	"github.com/shipments/backend/internal/infrastructure/logger"
	"github.com/shipments/backend/internal/infrastructure/notification"
	"github.com/shipments/backend/internal/infrastructure/persistence"
	"github.com/shipments/backend/internal/infrastructure/printing"
	"github.com/shipments/backend/internal/infrastructure/salla"
	"github.com/shipments/backend/internal/interfaces/http/handler"
	"github.com/shipments/backend/internal/interfaces/http/middleware"
	"github.com/shipments/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting shipments backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	shipmentRepo := persistence.NewGormShipmentRepository(db.DB)
	tokenRepo := persistence.NewGormMerchantTokenRepository(db.DB)

	// Salla platform adapters: token refresh and shipment status sync
	tokenStore := salla.NewTokenStore(tokenRepo, &cfg.Salla, log)
	sallaClient := salla.NewClient(&cfg.Salla, tokenStore, log)

	// Staff email notifications
	emailNotifier, err := notification.NewEmailNotifier(&cfg.Mail, log)
	if err != nil {
		log.Fatal("Failed to initialize email notifier", zap.Error(err))
	}

	// PDF label rendering and storage
	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Label.RenderTimeout,
		RemoteURL:      cfg.Label.ChromeRemoteURL,
		NoSandbox:      cfg.Label.NoSandbox,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	labelStorage, err := printing.NewFileSystemStorage(&printing.FileSystemStorageConfig{
		BasePath: cfg.Label.StoragePath,
		BaseURL:  cfg.App.BaseURL,
		Logger:   log,
	})
	if err != nil {
		log.Fatal("Failed to initialize label storage", zap.Error(err))
	}

	labelGenerator, err := printing.NewLabelGenerator(
		shipmentRepo, renderer, labelStorage, cfg.Salla.ShippingCost, log)
	if err != nil {
		log.Fatal("Failed to initialize label generator", zap.Error(err))
	}

	// Initialize application services
	webhookService := webhookapp.NewService(
		shipmentRepo, tokenRepo, labelGenerator, emailNotifier, sallaClient, log)
	shipmentService := shipmentapp.NewService(shipmentRepo, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// The platform retries deliveries on unexpected statuses; keep 405
	// responses in the same shape the webhook endpoint uses.
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	// Health check endpoint (outside API versioning)
	engine.GET("/healthz", healthHandler(db, log))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewWebhookHandler(webhookService, log))
	r.Register(handler.NewShipmentHandler(shipmentService))
	r.Register(handler.NewLabelHandler(labelGenerator, log))
	r.Setup()

	// Create HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}

// healthHandler reports process and database health
func healthHandler(db *persistence.Database, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			log.Error("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
