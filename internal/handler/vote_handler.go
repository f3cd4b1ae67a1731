package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"decisions-api/internal/domain"
	"decisions-api/internal/service"
	apperrors "decisions-api/pkg/errors"

	"go.uber.org/zap"
)

// votedCookieMaxAge outlives the longest voting window
const votedCookieMaxAge = 30 * 24 * time.Hour

type VoteHandler struct {
	voting       *service.VotingService
	secureCookie bool
	logger       *zap.Logger
}

func NewVoteHandler(voting *service.VotingService, secureCookie bool, logger *zap.Logger) *VoteHandler {
	return &VoteHandler{
		voting:       voting,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// CastVote handles POST /api/vote. Every failure the registrar reports,
// including an unknown decision, is a 400 on this path.
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req domain.CastVoteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			respondError(w, h.logger, apperrors.NewValidationError(service.MsgInvalidPayload, nil))
			return
		}
		respondError(w, h.logger, apperrors.NewValidationError(MsgInvalidJSON, nil))
		return
	}

	receipt, err := h.voting.CastVote(r.Context(), service.VoteInput{
		DecisionID:   req.DecisionID,
		Choice:       req.Choice,
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		UserAgent:    r.Header.Get("User-Agent"),
	})
	if err != nil {
		appErr := apperrors.As(err)
		if appErr.Type == apperrors.ErrorTypeNotFound {
			appErr = appErr.WithStatus(http.StatusBadRequest)
		}
		respondError(w, h.logger, appErr)
		return
	}

	// Advisory only: lets the page hide the vote buttons without a lookup.
	http.SetCookie(w, &http.Cookie{
		Name:     votedCookieName(receipt.DecisionID),
		Value:    string(receipt.Choice),
		Path:     "/",
		MaxAge:   int(votedCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, domain.CastVoteResponse{
		OK:      true,
		Message: receipt.Message,
	})
}
