package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Payphone-Digital/factbook/internal/constants"
	ctxutil "github.com/Payphone-Digital/factbook/pkg/context"
	"github.com/Payphone-Digital/factbook/pkg/logger"
	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const slowRequestThreshold = 2 * time.Second

// RequestLogger logs one line per request, levelled by status code.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		ctx := c.Request.Context()
		fields := []zap.Field{
			zap.String("request_id", ctxutil.GetRequestID(ctx)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Int("status_code", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.Int("response_size", c.Writer.Size()),
		}
		if userID := c.GetString(constants.GinKeyUserID); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("Server error", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warn("Client error", fields...)
		case latency > slowRequestThreshold:
			log.Warn("Slow request", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}

// Recovery turns panics into a 500 response. When reportToSentry is set the
// panic is also captured on a per-request Sentry hub.
func Recovery(log *zap.Logger, reportToSentry bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.LogPanic(log.With(
			zap.String("request_id", ctxutil.GetRequestID(c.Request.Context())),
			zap.String("path", c.Request.URL.Path),
		), recovered)

		if reportToSentry {
			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetRequest(c.Request)
			hub.Scope().SetTag("request_id", ctxutil.GetRequestID(c.Request.Context()))
			if userID := c.GetString(constants.GinKeyUserID); userID != "" {
				hub.Scope().SetUser(sentry.User{ID: userID})
			}
			if err, ok := recovered.(error); ok {
				hub.CaptureException(err)
			} else {
				hub.CaptureMessage(fmt.Sprint(recovered))
			}
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, constants.BuildErrorResponse("Internal server error", nil))
	})
}
