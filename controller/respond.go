package controller

import (
	"electrocare-backend/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

// statusForKind maps engine error kinds onto HTTP status codes.
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.ErrKindNotFound:
		return http.StatusNotFound
	case models.ErrKindConflict:
		return http.StatusConflict
	case models.ErrKindForbidden:
		return http.StatusForbidden
	case models.ErrKindValidationFailed:
		return http.StatusBadRequest
	case models.ErrKindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standard error envelope for an engine error.
// Errors without a kind are treated as internal.
func respondError(c *gin.Context, err error) {
	kind, ok := models.KindOf(err)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(http.StatusInternalServerError,
			"Internal server error", "InternalError", err.Error()))
		return
	}
	code := statusForKind(kind)
	c.JSON(code, models.ErrorResponse(code, err.Error(), string(kind), ""))
}

// respondBindError writes the envelope for a malformed or invalid payload.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse(http.StatusBadRequest,
		"Invalid request", "ValidationError", err.Error()))
}
