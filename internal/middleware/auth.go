package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"payment-gateway/internal/models"
	"payment-gateway/internal/repository"
)

// Context keys set by MerchantAuth
const (
	ContextMerchant   = "merchant"
	ContextMerchantID = "merchantID"
)

// MerchantAuth authenticates API requests with the x-api-key and
// x-api-secret headers and stores the merchant on the request context.
func MerchantAuth(merchants repository.MerchantRepositoryInterface) gin.HandlerFunc {
	log := logrus.WithField("component", "auth")

	return func(c *gin.Context) {
		apiKey := c.GetHeader("x-api-key")
		apiSecret := c.GetHeader("x-api-secret")

		if apiKey == "" || apiSecret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: models.ErrorBody{
					Code:        "AUTHENTICATION_ERROR",
					Description: "Missing API credentials",
				},
			})
			return
		}

		merchant, err := merchants.GetByCredentials(c.Request.Context(), apiKey, apiSecret)
		if err != nil {
			log.WithError(err).Error("Failed to look up merchant credentials")
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Error: models.ErrorBody{
					Code:        "SERVER_ERROR",
					Description: "Internal server error",
				},
			})
			return
		}
		if merchant == nil || !merchant.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error: models.ErrorBody{
					Code:        "AUTHENTICATION_ERROR",
					Description: "Invalid API credentials",
				},
			})
			return
		}

		c.Set(ContextMerchant, merchant)
		c.Set(ContextMerchantID, merchant.ID)
		c.Next()
	}
}

// MerchantID returns the authenticated merchant's ID from the context
func MerchantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextMerchantID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// Merchant returns the authenticated merchant from the context
func Merchant(c *gin.Context) *models.Merchant {
	if v, ok := c.Get(ContextMerchant); ok {
		if m, ok := v.(*models.Merchant); ok {
			return m
		}
	}
	return nil
}
