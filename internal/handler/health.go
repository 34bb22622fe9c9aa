package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Payphone-Digital/factbook/internal/constants"
	"github.com/Payphone-Digital/factbook/pkg/health"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsFunc reports runtime counters of one component (breaker, pool, cache).
type StatsFunc func() map[string]any

type HealthHandler struct {
	monitor *health.Monitor
	stats   map[string]StatsFunc
	logger  *zap.Logger
}

type HealthCheckResponse struct {
	Status    health.Status                 `json:"status"`
	Version   string                        `json:"version"`
	Timestamp time.Time                     `json:"timestamp"`
	Checks    map[string]health.CheckResult `json:"checks"`
	Stats     map[string]map[string]any     `json:"stats,omitempty"`
}

func NewHealthHandler(monitor *health.Monitor, stats map[string]StatsFunc, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		monitor: monitor,
		stats:   stats,
		logger:  logger,
	}
}

// HealthCheck re-probes every dependency and reports the combined status.
// Only a failing required dependency turns the response into a 503.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	h.monitor.CheckAll(ctx)

	response := HealthCheckResponse{
		Status:    h.monitor.Overall(),
		Version:   constants.AppVersion,
		Timestamp: time.Now(),
		Checks:    h.monitor.GetAllResults(),
	}

	if len(h.stats) > 0 {
		response.Stats = make(map[string]map[string]any, len(h.stats))
		for name, fn := range h.stats {
			response.Stats[name] = fn()
		}
	}

	statusCode := http.StatusOK
	if response.Status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	h.logger.Debug("Health check performed",
		zap.Stringer("overall_status", response.Status),
		zap.Int("status_code", statusCode),
	)

	c.JSON(statusCode, response)
}

// BasicHealth returns a simple health check (for load balancers)
func (h *HealthHandler) BasicHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    health.StatusHealthy,
		"version":   constants.AppVersion,
		"timestamp": time.Now(),
	})
}
