package router

import (
	"time"

	"github.com/Payphone-Digital/factbook/config"
	"github.com/Payphone-Digital/factbook/internal/constants"
	"github.com/Payphone-Digital/factbook/internal/handler"
	"github.com/Payphone-Digital/factbook/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	userHandler     *handler.UserHandler
	factbookHandler *handler.FactbookHandler
	healthHandler   *handler.HealthHandler

	jwtMw  *middleware.JWTMiddleware
	config *config.Config
	logger *zap.Logger
}

func NewRouter(
	user *handler.UserHandler,
	factbook *handler.FactbookHandler,
	health *handler.HealthHandler,
	jwtMw *middleware.JWTMiddleware,
	cfg *config.Config,
	logger *zap.Logger,
) *Router {
	return &Router{
		userHandler:     user,
		factbookHandler: factbook,
		healthHandler:   health,
		jwtMw:           jwtMw,
		config:          cfg,
		logger:          logger,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	if !r.config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestContext())
	router.Use(middleware.Recovery(r.logger, r.config.App.SentryDSN != ""))
	router.Use(middleware.RequestLogger(r.logger))
	router.Use(middleware.CORS())

	api := router.Group("/api")
	{
		api.GET("/health", r.healthHandler.HealthCheck)
		api.GET("/health/basic", r.healthHandler.BasicHealth)

		v1 := api.Group("/v1")
		{
			limiter := middleware.NewRateLimiter(r.config.RateLimit.Request, time.Duration(r.config.RateLimit.Duration)*time.Second)
			v1.Use(middleware.RateLimit(limiter, r.logger))
			v1.Use(middleware.RequestTimeout(constants.DefaultRequestTimeout))

			r.userRoutes(v1)
			r.sessionRoutes(v1)
			r.factbookRoutes(v1)
		}
	}

	return router
}
