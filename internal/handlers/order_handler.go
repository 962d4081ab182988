package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"payment-gateway/internal/middleware"
	"payment-gateway/internal/models"
	"payment-gateway/internal/services"
)

// OrderHandler handles order HTTP requests
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	order, err := h.service.Create(c.Request.Context(), middleware.MerchantID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// Get handles GET /api/v1/orders/:order_id
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), middleware.MerchantID(c), c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetPublic handles GET /api/v1/orders/:order_id/public for the hosted
// checkout page. Only the fields the page needs are exposed; receipt and
// notes stay merchant-private.
func (h *OrderHandler) GetPublic(c *gin.Context) {
	order, err := h.service.GetPublic(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
		"status":   order.Status,
	})
}
