package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"social-search-platform/internal/config"
	"social-search-platform/internal/logger"
	"social-search-platform/internal/telemetry"
	"social-search-platform/middleware"
	"social-search-platform/routes"
	"social-search-platform/services"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// Connect to Redis
	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer rdb.Close()

	// Tracing and metrics
	shutdownTracer, err := telemetry.InitTracer("social-search-platform")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer shutdownTracer()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
	}

	// Services
	usageService := services.NewUsageService(db)
	subscriptionService := services.NewSubscriptionService(db, rdb, time.Duration(cfg.SubscriptionCacheTTL)*time.Second)
	historyService := services.NewHistoryService(db)
	resultStore := services.NewResultStore(db)
	scraperService := services.NewScraperService(cfg, metrics)
	exportService := services.NewExportService()
	mediaService := services.NewMediaService()

	// Asynq client for bulk search enqueueing
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer asynqClient.Close()

	// Retention cleanup
	retention := services.NewRetentionScheduler(cfg, usageService, historyService, resultStore)
	if err := retention.Start(); err != nil {
		logger.Error("Failed to start retention scheduler", "error", err)
	}
	defer retention.Stop()

	// Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestSizeLimit(1 << 20))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	if metrics != nil {
		router.Use(middleware.MetricsMiddleware(metrics))
	}
	router.Use(middleware.RateLimitMiddleware(rdb, cfg))

	// CORS configuration
	router.Use(middleware.CORSMiddlewareWithOrigins(cfg.CORSOrigins))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg, rdb)
	roleMiddleware := middleware.NewRoleMiddleware()
	quotaMiddleware := middleware.NewQuotaMiddleware(usageService, subscriptionService, metrics)

	// Routes
	routes.SetupAuthRoutes(router, cfg, mongoClient, rdb)
	routes.SetupSearchRoutes(router, cfg, authMiddleware, quotaMiddleware, routes.SearchDeps{
		Scraper:     scraperService,
		Store:       resultStore,
		History:     historyService,
		Usage:       usageService,
		AsynqClient: asynqClient,
		Metrics:     metrics,
	})
	routes.SetupUsageRoutes(router, authMiddleware, roleMiddleware, subscriptionService, usageService)
	routes.SetupHistoryRoutes(router, authMiddleware, historyService)
	routes.SetupExportRoutes(router, authMiddleware, resultStore, exportService)
	routes.SetupMediaRoutes(router, authMiddleware, mediaService)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
