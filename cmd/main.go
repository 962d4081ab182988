package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"payment-gateway/internal/config"
	"payment-gateway/internal/events"
	"payment-gateway/internal/handlers"
	"payment-gateway/internal/middleware"
	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
	"payment-gateway/internal/repository"
	"payment-gateway/internal/services"
	"payment-gateway/internal/workers"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)
	log := logrus.WithField("component", "main")

	// Connect to database
	db, err := connectDatabase(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	// Auto-migrate models
	if err := db.AutoMigrate(
		&models.Merchant{},
		&models.Order{},
		&models.Payment{},
		&models.Refund{},
		&models.WebhookLog{},
		&models.IdempotencyKey{},
	); err != nil {
		log.WithError(err).Warn("Auto-migration failed")
	}

	// Seed sandbox merchant (idempotent)
	if err := repository.SeedTestMerchant(db); err != nil {
		log.WithError(err).Warn("Failed to seed test merchant")
	}

	// Queue transport
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	jobs := queue.NewRedisClient(rdb)
	defer jobs.Close()

	// Repositories
	merchantRepo := repository.NewMerchantRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)

	// Services
	orderService := services.NewOrderService(orderRepo)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo, jobs)
	refundService := services.NewRefundService(refundRepo, paymentRepo, jobs)
	webhookService := services.NewWebhookService(webhookRepo, merchantRepo, jobs)

	// NATS platform events (optional)
	publisher, err := events.NewPublisher(cfg.NATSURL)
	if err != nil {
		log.WithError(err).Warn("Failed to connect to NATS, platform events disabled")
	}
	defer publisher.Close()

	// Background workers
	sim := workers.NewRandomSimulator(cfg)
	paymentWorker := workers.NewPaymentWorker(paymentRepo, webhookService, sim, publisher)
	refundWorker := workers.NewRefundWorker(refundRepo, webhookService, sim, publisher)
	webhookWorker := workers.NewWebhookWorker(webhookRepo, merchantRepo, jobs, cfg.WebhookTimeout, cfg.WebhookRetryTestMode)

	pools := []*queue.WorkerPool{
		queue.NewWorkerPool(jobs, queue.LanePayments, cfg.WorkerConcurrency, paymentWorker.Handle),
		queue.NewWorkerPool(jobs, queue.LaneRefunds, cfg.WorkerConcurrency, refundWorker.Handle),
		queue.NewWorkerPool(jobs, queue.LaneWebhooks, cfg.WorkerConcurrency, webhookWorker.Handle),
	}
	for _, pool := range pools {
		pool.Start(context.Background())
	}

	// Handlers
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService, jobs)
	refundHandler := handlers.NewRefundHandler(refundService)
	webhookHandler := handlers.NewWebhookHandler(webhookService)
	healthHandler := handlers.NewHealthHandler(db, merchantRepo)

	router := setupRouter(cfg, merchantRepo, orderHandler, paymentHandler, refundHandler, webhookHandler, healthHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port":        cfg.Port,
			"environment": cfg.Environment,
		}).Info("Payment gateway starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Graceful shutdown: stop accepting requests, then drain the worker pools
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	for _, pool := range pools {
		pool.Stop()
	}
	log.Info("Shutdown complete")
}

// connectDatabase establishes a connection to the database
func connectDatabase(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// setupRouter configures the HTTP router
func setupRouter(cfg *config.Config, merchantRepo repository.MerchantRepositoryInterface, orderHandler *handlers.OrderHandler, paymentHandler *handlers.PaymentHandler, refundHandler *handlers.RefundHandler, webhookHandler *handlers.WebhookHandler, healthHandler *handlers.HealthHandler) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog())

	rateLimits := middleware.NewGatewayRateLimits()

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.ValidateRequest())

	corsConfig := cors.DefaultConfig()
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders,
		"x-api-key", "x-api-secret", "Idempotency-Key")
	router.Use(cors.New(corsConfig))

	// Health and sandbox helpers
	router.GET("/health", healthHandler.Health)

	auth := middleware.MerchantAuth(merchantRepo)

	v1 := router.Group("/api/v1")
	{
		// Public routes: hosted checkout and sandbox helpers
		v1.GET("/test/merchant", healthHandler.TestMerchant)
		v1.GET("/test/jobs/status", paymentHandler.QueueStatus)
		v1.GET("/orders/:order_id/public", orderHandler.GetPublic)
		v1.POST("/payments/public",
			middleware.RateLimit(rateLimits.CreatePayment),
			paymentHandler.CreatePublic)
		v1.GET("/payments/:payment_id/public", paymentHandler.GetPublic)

		// Merchant API
		authed := v1.Group("")
		authed.Use(auth)
		authed.Use(middleware.RateLimit(rateLimits.General))
		{
			authed.POST("/orders", orderHandler.Create)
			authed.GET("/orders/:order_id", orderHandler.Get)

			// Specific payment routes before the :payment_id wildcard
			authed.GET("/payments/list", paymentHandler.List)
			authed.GET("/payments/stats", paymentHandler.Stats)

			authed.POST("/payments",
				middleware.RateLimit(rateLimits.CreatePayment),
				paymentHandler.Create)
			authed.GET("/payments/:payment_id", paymentHandler.Get)
			authed.POST("/payments/:payment_id/capture", paymentHandler.Capture)

			authed.POST("/payments/:payment_id/refunds",
				middleware.RateLimit(rateLimits.CreateRefund),
				refundHandler.Create)
			authed.GET("/refunds/:refund_id", refundHandler.Get)

			authed.GET("/webhooks", webhookHandler.List)
			authed.POST("/webhooks/test", webhookHandler.Test)
			authed.GET("/webhooks/config", webhookHandler.GetConfig)
			authed.PUT("/webhooks/config", webhookHandler.UpdateConfig)
			authed.POST("/webhooks/config/regenerate-secret", webhookHandler.RegenerateSecret)
			authed.POST("/webhooks/:webhook_id/retry", webhookHandler.Retry)
		}
	}

	return router
}
