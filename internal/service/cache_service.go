package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"decisions-api/internal/domain"
	"decisions-api/pkg/redis"

	"go.uber.org/zap"
)

// CacheService wraps read-through caching of derived aggregates. A nil
// CacheService, or one without Redis, always goes straight to the fallback.
// Registrar state is never cached.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// GetSidebarWithCache returns cached sidebar aggregates, computing and storing
// them on a miss. Cache faults never fail the request.
func (c *CacheService) GetSidebarWithCache(ctx context.Context, ttl time.Duration, dbFallback func(ctx context.Context) (*domain.Sidebar, error)) (*domain.Sidebar, error) {
	if c == nil || c.redis == nil {
		return dbFallback(ctx)
	}

	cacheKey := c.redis.KeyBuilder.KeySidebar()

	cachedData, err := c.redis.Get(ctx, cacheKey)
	if err == nil && cachedData != "" {
		var sidebar domain.Sidebar
		if unmarshalErr := json.Unmarshal([]byte(cachedData), &sidebar); unmarshalErr == nil {
			c.logger.Debug("Sidebar cache hit")
			return &sidebar, nil
		} else {
			c.logger.Warn("Sidebar cache corrupted, falling back to database", zap.Error(unmarshalErr))
		}
	} else if err != nil && err != redis.Nil {
		c.logger.Warn("Sidebar cache error, falling back to database", zap.Error(err))
	}

	c.logger.Debug("Sidebar cache miss")
	sidebar, err := dbFallback(ctx)
	if err != nil {
		return nil, fmt.Errorf("database fallback failed: %w", err)
	}

	go c.cacheSidebarAsync(sidebar, ttl)

	return sidebar, nil
}

// InvalidateSidebar drops the cached aggregates after a new decision
func (c *CacheService) InvalidateSidebar(ctx context.Context) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Delete(ctx, c.redis.KeyBuilder.KeySidebar()); err != nil {
		c.logger.Warn("Failed to invalidate sidebar cache", zap.Error(err))
	}
}

func (c *CacheService) cacheSidebarAsync(sidebar *domain.Sidebar, ttl time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(sidebar)
	if err != nil {
		c.logger.Error("Failed to marshal sidebar for cache", zap.Error(err))
		return
	}

	if err := c.redis.Set(ctx, c.redis.KeyBuilder.KeySidebar(), data, ttl); err != nil {
		c.logger.Warn("Failed to cache sidebar", zap.Error(err))
	}
}
