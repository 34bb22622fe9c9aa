package middleware

import (
	"net/http"
	"strings"

	"github.com/Payphone-Digital/factbook/internal/constants"
	ctxutil "github.com/Payphone-Digital/factbook/pkg/context"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenValidator is implemented by *service.JWTService.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type JWTMiddleware struct {
	tokens TokenValidator
	logger *zap.Logger
}

func NewJWTMiddleware(tokens TokenValidator, logger *zap.Logger) *JWTMiddleware {
	return &JWTMiddleware{tokens: tokens, logger: logger}
}

// RequireAuth validates the bearer token and exposes its subject as the
// current user id, both on the gin context and on the request context.
func (m *JWTMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(constants.HeaderAuthorization)
		if authHeader == "" {
			m.reject(c, "Missing Authorization header", nil)
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, constants.BearerPrefix)
		if !ok || strings.TrimSpace(tokenString) == "" {
			m.reject(c, "Invalid Authorization header format", nil)
			return
		}

		userID, err := m.tokens.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			m.reject(c, "Invalid or expired token", err)
			return
		}

		c.Set(constants.GinKeyUserID, userID)
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), userID))

		m.logger.Debug("User authenticated successfully",
			zap.String("user_id", userID),
			zap.String("path", c.Request.URL.Path),
		)

		c.Next()
	}
}

func (m *JWTMiddleware) reject(c *gin.Context, reason string, err error) {
	m.logger.Warn(reason,
		zap.String("request_id", ctxutil.GetRequestID(c.Request.Context())),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, constants.BuildErrorResponse(constants.MsgUnauthorized, nil))
}
