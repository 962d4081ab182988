package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"payment-gateway/internal/middleware"
	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
	"payment-gateway/internal/repository"
	"payment-gateway/internal/services"
)

type testEnv struct {
	db       *gorm.DB
	jobs     *queue.MemoryClient
	router   *gin.Engine
	merchant *models.Merchant
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Merchant{},
		&models.Order{},
		&models.Payment{},
		&models.Refund{},
		&models.WebhookLog{},
		&models.IdempotencyKey{},
	))

	merchant := &models.Merchant{
		ID:            uuid.New(),
		Name:          "Test Shop",
		Email:         "shop@example.com",
		APIKey:        "key_test",
		APISecret:     "secret_test",
		WebhookSecret: "whsec_test",
		IsActive:      true,
	}
	require.NoError(t, db.Create(merchant).Error)

	jobs := queue.NewMemoryClient()
	t.Cleanup(func() { jobs.Close() })

	merchantRepo := repository.NewMerchantRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	refundRepo := repository.NewRefundRepository(db)
	webhookRepo := repository.NewWebhookRepository(db)

	orderHandler := NewOrderHandler(services.NewOrderService(orderRepo))
	paymentHandler := NewPaymentHandler(services.NewPaymentService(paymentRepo, orderRepo, jobs), jobs)
	refundHandler := NewRefundHandler(services.NewRefundService(refundRepo, paymentRepo, jobs))
	webhookHandler := NewWebhookHandler(services.NewWebhookService(webhookRepo, merchantRepo, jobs))

	router := gin.New()
	auth := middleware.MerchantAuth(merchantRepo)

	v1 := router.Group("/api/v1")
	v1.GET("/orders/:order_id/public", orderHandler.GetPublic)
	v1.POST("/payments/public", paymentHandler.CreatePublic)
	v1.GET("/payments/:payment_id/public", paymentHandler.GetPublic)
	v1.GET("/test/jobs/status", paymentHandler.QueueStatus)

	authed := v1.Group("", auth)
	authed.POST("/orders", orderHandler.Create)
	authed.GET("/orders/:order_id", orderHandler.Get)
	authed.GET("/payments/list", paymentHandler.List)
	authed.GET("/payments/stats", paymentHandler.Stats)
	authed.POST("/payments", paymentHandler.Create)
	authed.GET("/payments/:payment_id", paymentHandler.Get)
	authed.POST("/payments/:payment_id/capture", paymentHandler.Capture)
	authed.POST("/payments/:payment_id/refunds", refundHandler.Create)
	authed.GET("/refunds/:refund_id", refundHandler.Get)
	authed.GET("/webhooks", webhookHandler.List)
	authed.POST("/webhooks/test", webhookHandler.Test)
	authed.GET("/webhooks/config", webhookHandler.GetConfig)
	authed.PUT("/webhooks/config", webhookHandler.UpdateConfig)
	authed.POST("/webhooks/:webhook_id/retry", webhookHandler.Retry)

	return &testEnv{db: db, jobs: jobs, router: router, merchant: merchant}
}

// do performs an authenticated request with an optional JSON body
func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("x-api-key", e.merchant.APIKey)
	req.Header.Set("x-api-secret", e.merchant.APISecret)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doPublic performs a request without credentials
func (e *testEnv) doPublic(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}
