package service

import (
	"context"
	"time"

	"decisions-api/internal/domain"
	"decisions-api/pkg/redis"
	"decisions-api/pkg/utils"

	"go.uber.org/zap"
)

// RateLimiter counts requests per hashed client IP in fixed Redis windows.
// It fails open: without Redis, or when Redis errors, requests are allowed.
type RateLimiter struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
	salt   string
	logger *zap.Logger
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(redisClient *redis.Client, limit int, window time.Duration, salt string, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		limit:  int64(limit),
		window: window,
		salt:   salt,
		logger: logger,
	}
}

// Allow records one request from clientIP in scope and reports whether it
// is within the limit
func (r *RateLimiter) Allow(ctx context.Context, scope, clientIP string) *domain.RateLimitInfo {
	info := &domain.RateLimitInfo{
		Limit:     r.limit,
		Remaining: r.limit,
		ResetIn:   r.window,
		IsAllowed: true,
	}
	if r.redis == nil {
		return info
	}

	ipHash := utils.ShortHash(clientIP, r.salt)
	key := r.redis.KeyBuilder.KeyRateLimit(scope, ipHash)

	count, ttl, err := r.redis.IncrWindow(ctx, key, r.window)
	if err != nil {
		r.logger.Warn("Rate limit check failed, allowing request",
			zap.String("scope", scope),
			zap.String("ip_hash", ipHash),
			zap.Error(err))
		return info
	}

	info.RequestCount = count
	info.ResetIn = ttl
	info.IsAllowed = count <= r.limit
	info.Remaining = r.limit - count
	if info.Remaining < 0 {
		info.Remaining = 0
	}

	if !info.IsAllowed {
		r.logger.Warn("Rate limit exceeded",
			zap.String("scope", scope),
			zap.String("ip_hash", ipHash),
			zap.Int64("count", count))
	}

	return info
}
