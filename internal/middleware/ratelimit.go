package middleware

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"decisions-api/internal/domain"
	"decisions-api/pkg/errors"
	"decisions-api/pkg/utils"

	"go.uber.org/zap"
)

// MsgTooManyRequests is the body text of a 429
const MsgTooManyRequests = "Too many requests. Please try again later."

// Limiter decides whether one more request from a client fits its window
type Limiter interface {
	Allow(ctx context.Context, scope, clientIP string) *domain.RateLimitInfo
}

// RateLimit counts requests per client under scope and answers 429 once the
// window is used up. Every response carries the X-RateLimit-* headers.
func RateLimit(limiter Limiter, scope string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := utils.RequestAddress(r)
			info := limiter.Allow(r.Context(), scope, clientIP)

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(info.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(info.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(math.Ceil(info.ResetIn.Seconds()))))

			if !info.IsAllowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(info.ResetIn.Seconds()))))
				writeErrorResponse(w, errors.NewRateLimitError(MsgTooManyRequests), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeErrorResponse writes the JSON error envelope
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)

	if err := json.NewEncoder(w).Encode(errors.ErrorResponse{OK: false, Message: appErr.Message}); err != nil {
		logger.Error("Failed to encode error response", zap.Error(err))
	}
}
