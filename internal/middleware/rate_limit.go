package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Payphone-Digital/factbook/internal/constants"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimiter is a sliding-window limiter keyed by client IP.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     map[string][]time.Time
	maxRequest int
	duration   time.Duration
	now        func() time.Time
}

func NewRateLimiter(maxRequest int, duration time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     make(map[string][]time.Time),
		maxRequest: maxRequest,
		duration:   duration,
		now:        time.Now,
	}
}

func (rl *RateLimiter) cleanup(now time.Time) {
	for ip, tokens := range rl.tokens {
		valid := tokens[:0]
		for _, t := range tokens {
			if now.Sub(t) < rl.duration {
				valid = append(valid, t)
			}
		}
		if len(valid) > 0 {
			rl.tokens[ip] = valid
		} else {
			delete(rl.tokens, ip)
		}
	}
}

// Allow records a request from key and returns the remaining budget.
func (rl *RateLimiter) Allow(key string) (remaining int, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.cleanup(now)

	tokens := rl.tokens[key]
	if len(tokens) >= rl.maxRequest {
		return 0, false
	}
	rl.tokens[key] = append(tokens, now)
	return rl.maxRequest - len(tokens) - 1, true
}

func RateLimit(limiter *RateLimiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		remaining, ok := limiter.Allow(ip)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.maxRequest))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(limiter.now().Add(limiter.duration).Unix(), 10))

		if !ok {
			log.Warn("Rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Int("max_requests", limiter.maxRequest),
				zap.Duration("duration", limiter.duration),
			)

			c.Header("Retry-After", strconv.Itoa(int(limiter.duration.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, constants.BuildErrorResponse("Rate limit exceeded", nil))
			return
		}

		c.Next()
	}
}
