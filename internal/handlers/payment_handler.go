package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payment-gateway/internal/middleware"
	"payment-gateway/internal/models"
	"payment-gateway/internal/queue"
	"payment-gateway/internal/services"
)

// PaymentHandler handles payment HTTP requests
type PaymentHandler struct {
	service *services.PaymentService
	jobs    queue.Client
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *services.PaymentService, jobs queue.Client) *PaymentHandler {
	return &PaymentHandler{service: service, jobs: jobs}
}

// Create handles POST /api/v1/payments. An Idempotency-Key header makes the
// request replayable: a retransmission within the validity window gets the
// stored response body back without creating a second payment.
func (h *PaymentHandler) Create(c *gin.Context) {
	merchantID := middleware.MerchantID(c)
	idempotencyKey := c.GetHeader("Idempotency-Key")

	stored, err := h.service.Replay(c.Request.Context(), merchantID, idempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}
	if stored != nil {
		c.JSON(http.StatusCreated, stored)
		return
	}

	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.Create(c.Request.Context(), merchantID, idempotencyKey, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Get handles GET /api/v1/payments/:payment_id
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.service.Get(c.Request.Context(), middleware.MerchantID(c), c.Param("payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// CreatePublic handles POST /api/v1/payments/public from the hosted
// checkout page
func (h *PaymentHandler) CreatePublic(c *gin.Context) {
	var req models.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.CreatePublic(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetPublic handles GET /api/v1/payments/:payment_id/public, the checkout
// page's status poll
func (h *PaymentHandler) GetPublic(c *gin.Context) {
	payment, err := h.service.GetPublic(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// Capture handles POST /api/v1/payments/:payment_id/capture
func (h *PaymentHandler) Capture(c *gin.Context) {
	var req models.CapturePaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body")
			return
		}
	}

	payment, err := h.service.Capture(c.Request.Context(), middleware.MerchantID(c), c.Param("payment_id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// List handles GET /api/v1/payments/list for the dashboard
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.service.List(c.Request.Context(), middleware.MerchantID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

// Stats handles GET /api/v1/payments/stats for the dashboard
func (h *PaymentHandler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), middleware.MerchantID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	successRate := 0
	if stats.TotalPayments > 0 {
		successRate = int(float64(stats.SuccessPayments)/float64(stats.TotalPayments)*100 + 0.5)
	}

	c.JSON(http.StatusOK, models.DashboardStats{
		TotalTransactions: stats.TotalPayments,
		TotalAmount:       stats.SuccessVolume,
		SuccessRate:       successRate,
	})
}

// QueueStatus handles GET /api/v1/test/jobs/status. A queue transport error
// reports the lane as stopped rather than failing the request.
func (h *PaymentHandler) QueueStatus(c *gin.Context) {
	stats, err := h.jobs.Stats(c.Request.Context(), queue.LanePayments)
	if err != nil {
		c.JSON(http.StatusOK, models.QueueStats{WorkerStatus: "stopped"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
