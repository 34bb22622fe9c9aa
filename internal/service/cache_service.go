package service

import (
	"context"
	"errors"
	"time"

	"github.com/Payphone-Digital/factbook/internal/constants"
	"github.com/Payphone-Digital/factbook/internal/dto"
	"github.com/Payphone-Digital/factbook/pkg/circuit"
	"github.com/Payphone-Digital/factbook/pkg/redis"
	"go.uber.org/zap"
)

// JSONStore is the cache backend; *redis.Client satisfies it.
type JSONStore interface {
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, keys ...string) error
}

// UserViewCache keeps public user views in redis. Every call goes through a
// circuit breaker so an unreachable redis degrades to cache misses instead of
// slowing requests down.
type UserViewCache struct {
	store   JSONStore
	breaker *circuit.Breaker
	ttl     time.Duration
	logger  *zap.Logger
}

func NewUserViewCache(store JSONStore, breaker *circuit.Breaker, ttl time.Duration, logger *zap.Logger) *UserViewCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserViewCache{store: store, breaker: breaker, ttl: ttl, logger: logger}
}

func userKey(id string) string {
	return constants.CacheKeyUser + id
}

func (c *UserViewCache) Get(ctx context.Context, id string) (*dto.UserResponse, bool) {
	var view dto.UserResponse
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		err := c.store.GetJSON(ctx, userKey(id), &view)
		if errors.Is(err, redis.ErrMiss) {
			return nil
		}
		return err
	})
	if err != nil {
		c.logger.Debug("User cache read skipped",
			zap.String("user_id", id),
			zap.Error(err),
		)
		return nil, false
	}
	if view.ID == "" {
		return nil, false
	}
	return &view, true
}

func (c *UserViewCache) Set(ctx context.Context, view *dto.UserResponse) {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.store.SetJSON(ctx, userKey(view.ID), view, c.ttl)
	})
	if err != nil {
		c.logger.Debug("User cache write skipped",
			zap.String("user_id", view.ID),
			zap.Error(err),
		)
	}
}

func (c *UserViewCache) Invalidate(ctx context.Context, id string) {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.store.Delete(ctx, userKey(id))
	})
	if err != nil {
		c.logger.Warn("Failed to invalidate user cache",
			zap.String("user_id", id),
			zap.Error(err),
		)
	}
}

// Stats exposes the breaker state to the health endpoint.
func (c *UserViewCache) Stats() map[string]any {
	return c.breaker.Stats()
}

// NoopUserCache is used when redis is disabled.
type NoopUserCache struct{}

func (NoopUserCache) Get(context.Context, string) (*dto.UserResponse, bool) { return nil, false }
func (NoopUserCache) Set(context.Context, *dto.UserResponse) {}
func (NoopUserCache) Invalidate(context.Context, string) {}
