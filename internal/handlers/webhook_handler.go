package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/middleware"
	"payment-gateway/internal/models"
	"payment-gateway/internal/services"
)

// WebhookHandler handles webhook log and configuration HTTP requests
type WebhookHandler struct {
	service *services.WebhookService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(service *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// List handles GET /api/v1/webhooks
func (h *WebhookHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	page, err := h.service.List(c.Request.Context(), middleware.MerchantID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// Retry handles POST /api/v1/webhooks/:webhook_id/retry
func (h *WebhookHandler) Retry(c *gin.Context) {
	logID, err := uuid.Parse(c.Param("webhook_id"))
	if err != nil {
		respondError(c, apperr.NotFoundErr("Webhook not found"))
		return
	}

	if err := h.service.Retry(c.Request.Context(), middleware.MerchantID(c), logID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "retry_scheduled"})
}

// Test handles POST /api/v1/webhooks/test, recording an already-delivered
// test event
func (h *WebhookHandler) Test(c *gin.Context) {
	var req struct {
		Event string `json:"event"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid request body")
			return
		}
	}

	log, err := h.service.TestFire(c.Request.Context(), middleware.MerchantID(c), req.Event)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":            log.ID,
		"event":         log.Event,
		"status":        log.Status,
		"attempts":      log.Attempts,
		"response_code": log.ResponseCode,
		"created_at":    log.CreatedAt,
		"message":       "Test webhook created successfully",
	})
}

// GetConfig handles GET /api/v1/webhooks/config
func (h *WebhookHandler) GetConfig(c *gin.Context) {
	cfg, err := h.service.GetConfig(c.Request.Context(), middleware.MerchantID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// UpdateConfig handles PUT /api/v1/webhooks/config
func (h *WebhookHandler) UpdateConfig(c *gin.Context) {
	var req models.WebhookConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "url is required")
		return
	}

	cfg, err := h.service.UpdateConfig(c.Request.Context(), middleware.MerchantID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// RegenerateSecret handles POST /api/v1/webhooks/config/regenerate-secret
func (h *WebhookHandler) RegenerateSecret(c *gin.Context) {
	cfg, err := h.service.RegenerateSecret(c.Request.Context(), middleware.MerchantID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cfg)
}
