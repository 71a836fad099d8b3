package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/estate-inquiries-api/logger"
	"github.com/kendall-kelly/estate-inquiries-api/services"
)

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// statusFor maps a service error kind onto an HTTP status
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindForbidden, services.KindProfileMissing:
		return http.StatusForbidden
	case services.KindInvalidState:
		return http.StatusConflict
	case services.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError renders err in the error envelope. Anything that is not a
// service error is logged and reported as an internal error.
func writeError(c *gin.Context, err error) {
	var ie *services.InquiryError
	if errors.As(err, &ie) {
		respondError(c, statusFor(ie.Kind), ie.Code, ie.Message)
		return
	}

	logger.Get().Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Msg("request failed")
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
}
