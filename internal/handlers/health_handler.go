package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/repository"
)

// HealthHandler reports service and database health
type HealthHandler struct {
	db        *gorm.DB
	merchants repository.MerchantRepositoryInterface
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *gorm.DB, merchants repository.MerchantRepositoryInterface) *HealthHandler {
	return &HealthHandler{db: db, merchants: merchants}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// TestMerchant handles GET /api/v1/test/merchant, exposing the seeded
// sandbox merchant for integration testing.
func (h *HealthHandler) TestMerchant(c *gin.Context) {
	merchant, err := h.merchants.GetByEmail(c.Request.Context(), "test@example.com")
	if err != nil {
		respondError(c, err)
		return
	}
	if merchant == nil {
		respondError(c, apperr.NotFoundErr("Test merchant not found"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      merchant.ID,
		"email":   merchant.Email,
		"api_key": merchant.APIKey,
		"seeded":  true,
	})
}
