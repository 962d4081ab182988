package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payment-gateway/internal/middleware"
	"payment-gateway/internal/models"
	"payment-gateway/internal/services"
)

// RefundHandler handles refund HTTP requests
type RefundHandler struct {
	service *services.RefundService
}

// NewRefundHandler creates a new refund handler
func NewRefundHandler(service *services.RefundService) *RefundHandler {
	return &RefundHandler{service: service}
}

// Create handles POST /api/v1/payments/:payment_id/refunds
func (h *RefundHandler) Create(c *gin.Context) {
	var req models.CreateRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	refund, err := h.service.Create(c.Request.Context(), middleware.MerchantID(c), c.Param("payment_id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, refund)
}

// Get handles GET /api/v1/refunds/:refund_id
func (h *RefundHandler) Get(c *gin.Context) {
	refund, err := h.service.Get(c.Request.Context(), middleware.MerchantID(c), c.Param("refund_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, refund)
}
