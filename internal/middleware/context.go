package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/Payphone-Digital/factbook/internal/constants"
	ctxutil "github.com/Payphone-Digital/factbook/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxRequestIDLength = 128

// RequestContext stamps the request context with a request id, the client IP
// and the start time. An incoming X-Request-ID is reused when sane.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestID(c.Request.Context(), requestID)
		ctx = ctxutil.WithClientIP(ctx, c.ClientIP())
		ctx = context.WithValue(ctx, ctxutil.StartTimeKey, time.Now())

		c.Header(constants.HeaderXRequestID, requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestTimeout bounds the request context.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, constants.BuildErrorResponse("Request timeout", timeout.String()))
		}
	}
}
