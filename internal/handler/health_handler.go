package handler

import (
	"context"
	"net/http"
	"time"

	"decisions-api/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks"`
}

// Check handles GET /health. A failing store makes the service unhealthy;
// a failing Redis only degrades it.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Service:   "decisions-api",
		Checks:    map[string]string{"database": "ok", "redis": "disabled"},
	}
	status := http.StatusOK

	if err := h.container.DB.Health(ctx); err != nil {
		logger.WithError(err).Error("Database health check failed")
		response.Checks["database"] = "error"
		response.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	if h.container.HasRedis() {
		response.Checks["redis"] = "ok"
		if err := h.container.GetRedisClient().Health(ctx); err != nil {
			logger.WithError(err).Warn("Redis health check failed")
			response.Checks["redis"] = "error"
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
		}
	}

	respondJSON(w, status, response)
}
