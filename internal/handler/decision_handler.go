package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"decisions-api/internal/domain"
	"decisions-api/internal/service"
	apperrors "decisions-api/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type DecisionHandler struct {
	decisions *service.DecisionService
	logger    *zap.Logger
}

func NewDecisionHandler(decisions *service.DecisionService, logger *zap.Logger) *DecisionHandler {
	return &DecisionHandler{
		decisions: decisions,
		logger:    logger,
	}
}

// RegisterRoutes mounts the read routes. Create is mounted separately so the
// router can rate limit it.
func (h *DecisionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/decisions", h.List)
	r.Get("/decisions/{id}", h.Get)
	r.Get("/sidebar", h.Sidebar)
}

// Create handles POST /api/decisions
func (h *DecisionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDecisionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondError(w, h.logger, apperrors.NewValidationError(MsgInvalidJSON, nil))
		return
	}

	decision, err := h.decisions.Create(r.Context(), &req)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.CreateDecisionResponse{
		OK: true,
		ID: decision.ID,
	})
}

// List handles GET /api/decisions
func (h *DecisionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.ListFilter{
		Status: domain.StatusFilter(q.Get("status")),
		Sort:   domain.SortOrder(q.Get("sort")),
		Query:  q.Get("q"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}

	list, err := h.decisions.List(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, list)
}

// Get handles GET /api/decisions/{id}
func (h *DecisionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	votedChoice := ""
	if cookie, err := r.Cookie(votedCookieName(id)); err == nil {
		votedChoice = cookie.Value
	}

	view, err := h.decisions.Get(r.Context(), id, votedChoice)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	etag := generateETag(view)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// The payload depends on the caller's cookie.
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, no-cache")

	respondJSON(w, http.StatusOK, view)
}

// Sidebar handles GET /api/sidebar
func (h *DecisionHandler) Sidebar(w http.ResponseWriter, r *http.Request) {
	sidebar, err := h.decisions.Sidebar(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=30")
	respondJSON(w, http.StatusOK, sidebar)
}
