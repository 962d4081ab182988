package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"payment-gateway/internal/models"
)

// SecurityHeaders adds security headers to responses
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent clickjacking
		c.Header("X-Frame-Options", "DENY")

		// Prevent MIME type sniffing
		c.Header("X-Content-Type-Options", "nosniff")

		// Referrer policy
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Cache control for sensitive data
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
		c.Header("Pragma", "no-cache")

		c.Next()
	}
}

// ValidateRequest rejects mutating requests whose body is not JSON
func ValidateRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost || c.Request.Method == http.MethodPut || c.Request.Method == http.MethodPatch {
			if c.Request.ContentLength > 0 {
				contentType := c.GetHeader("Content-Type")
				if !strings.Contains(contentType, "application/json") {
					c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, models.ErrorResponse{
						Error: models.ErrorBody{
							Code:        "BAD_REQUEST_ERROR",
							Description: "Content-Type must be application/json",
						},
					})
					return
				}
			}
		}

		c.Next()
	}
}
