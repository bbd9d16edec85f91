package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/harborpoint/dealflow/internal/errors"
)

// statusForCode maps AppError codes to HTTP statuses. Unknown codes are
// treated as internal errors.
func statusForCode(code string) int {
	switch code {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidTransition:
		return http.StatusConflict
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	case apperrors.ErrCodeMissingFields,
		apperrors.ErrCodeValidationError,
		apperrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a service error as a JSON error body. AppError
// messages are user-displayable; anything else gets a generic message.
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		body := gin.H{
			"error": appErr.Message,
			"code":  appErr.Code,
		}
		if appErr.Details != "" {
			body["details"] = appErr.Details
		}
		c.JSON(statusForCode(appErr.Code), body)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
		"code":  apperrors.ErrCodeInternalError,
	})
}

func respondOK(c *gin.Context, body gin.H) {
	body["timestamp"] = time.Now()
	c.JSON(http.StatusOK, body)
}

func respondCreated(c *gin.Context, body gin.H) {
	body["timestamp"] = time.Now()
	c.JSON(http.StatusCreated, body)
}
