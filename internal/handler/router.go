package handler

import (
	"net/http"
	"time"

	"decisions-api/internal/container"
	"decisions-api/internal/middleware"
	apperrors "decisions-api/pkg/errors"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Rate limit scopes
const (
	scopeCreate = "create"
	scopeVote   = "vote"
)

// NewRouter configures and returns the HTTP router
func NewRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()
	services := c.Services

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log.Logger, cfg.VoterHashSalt))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(30 * time.Second))

	healthHandler := NewHealthHandler(c)
	decisionHandler := NewDecisionHandler(services.Decisions, log.Logger)
	voteHandler := NewVoteHandler(services.Voting, cfg.IsProduction(), log.Logger)

	r.Get("/health", healthHandler.Check)

	r.Route("/api", func(r chi.Router) {
		decisionHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			if cfg.RateLimitEnabled {
				r.Use(middleware.RateLimit(services.RateLimiter, scopeCreate, log.Logger))
			}
			r.Post("/decisions", decisionHandler.Create)
		})

		r.Group(func(r chi.Router) {
			if cfg.RateLimitEnabled {
				r.Use(middleware.RateLimit(services.RateLimiter, scopeVote, log.Logger))
			}
			r.Post("/vote", voteHandler.CastVote)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusNotFound, apperrors.ErrorResponse{OK: false, Message: "Endpoint not found."})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusMethodNotAllowed, apperrors.ErrorResponse{OK: false, Message: "Method not allowed."})
	})

	log.Info("Router configured successfully")
	return r
}
