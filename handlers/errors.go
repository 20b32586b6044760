package handlers

import (
	"errors"
	"net/http"

	"wellness-ops-backend/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes. Unknown errors become a
// 500 carrying fallback, and the cause is attached to the context for logging.
func respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrInvalidOrExpiredOTP):
		status = http.StatusBadRequest
		fallback = "Invalid or expired OTP"
	case errors.Is(err, services.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	}

	msg := fallback
	var de *services.DetailError
	if errors.As(err, &de) {
		msg = de.Message
	}
	if status == http.StatusInternalServerError {
		c.Error(err)
	}
	c.JSON(status, gin.H{"error": msg})
}
