// Package handlers exposes the gateway's HTTP surface.
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"payment-gateway/internal/apperr"
	"payment-gateway/internal/models"
)

// respondError writes the {error: {code, description}} envelope for err,
// mapping its kind to an HTTP status. Unexpected errors are logged and
// surfaced as a generic server error.
func respondError(c *gin.Context, err error) {
	ae := apperr.Wrap(err)
	if ae.Kind == apperr.Internal || ae.Kind == apperr.ProcessingRace {
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	}
	c.JSON(apperr.HTTPStatus(ae), models.ErrorResponse{
		Error: models.ErrorBody{
			Code:        ae.Code,
			Description: ae.Description,
		},
	})
}

// respondBadRequest writes a binding failure in the error envelope
func respondBadRequest(c *gin.Context, description string) {
	respondError(c, apperr.ValidationErr(apperr.CodeBadRequest, description))
}
