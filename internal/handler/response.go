package handler

import (
	"context"
	"net/http"

	"github.com/Payphone-Digital/factbook/internal/constants"
	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/Payphone-Digital/factbook/pkg/logger"
	"github.com/Payphone-Digital/factbook/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// abortWithError writes the {message, details} envelope for err. Server-side
// failures are logged at error level, client errors at warn.
func abortWithError(c *gin.Context, ctx context.Context, log *logger.ContextLogger, message string, err error) {
	status := apperrors.ToHTTPStatus(err)

	entry := log.Warn(ctx, message)
	if status >= http.StatusInternalServerError {
		entry = log.Error(ctx, message)
	}
	entry.Int("http_status", status).
		Err(err).
		Log()

	c.AbortWithStatusJSON(status, constants.BuildErrorResponse(message, apperrors.GetErrorMessage(err)))
}

// bindJSON decodes the request body into dst and answers 400 with per-field
// messages when it does not bind.
func bindJSON(c *gin.Context, ctx context.Context, log *logger.ContextLogger, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	log.Warn(ctx, "Invalid request body").
		Err(err).
		Log()

	if fields, ok := validation.Translate(err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgInvalidRequest, fields))
		return false
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgInvalidRequest, err.Error()))
	return false
}

// userIDParam reads and checks the :id path parameter.
func userIDParam(c *gin.Context, ctx context.Context, log *logger.ContextLogger) (string, bool) {
	id := c.Param("id")
	if err := uuid.Validate(id); err != nil {
		log.Warn(ctx, "Invalid user ID format").
			String("raw_id", id).
			Log()
		c.AbortWithStatusJSON(http.StatusBadRequest, constants.BuildErrorResponse(constants.MsgInvalidUserID, nil))
		return "", false
	}
	return id, true
}

// currentUserID returns the subject set by the JWT middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(constants.GinKeyUserID)
}
