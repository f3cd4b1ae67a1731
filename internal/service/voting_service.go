package service

import (
	"context"
	"strings"

	"decisions-api/internal/domain"
	"decisions-api/internal/repository"
	apperrors "decisions-api/pkg/errors"
	"decisions-api/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MsgInvalidPayload is returned for a vote body without a usable id or choice
const MsgInvalidPayload = "Invalid payload."

// VoteInput carries the request signals needed to cast one vote
type VoteInput struct {
	DecisionID   string
	Choice       string
	ForwardedFor string
	UserAgent    string
}

// VoteReceipt describes a recorded vote
type VoteReceipt struct {
	DecisionID string
	Choice     domain.Choice
	Message    string
}

type VotingService struct {
	repo   repository.DecisionRepository
	salt   string
	logger *zap.Logger
	now    Clock
}

func NewVotingService(repo repository.DecisionRepository, salt string, logger *zap.Logger, clock Clock) *VotingService {
	if clock == nil {
		clock = SystemClock
	}
	return &VotingService{
		repo:   repo,
		salt:   salt,
		logger: logger,
		now:    clock,
	}
}

// CastVote fingerprints the voter and hands the attempt to the registrar.
// Unsuccessful registrar results come back as AppErrors carrying the
// registrar's message.
func (s *VotingService) CastVote(ctx context.Context, in VoteInput) (*VoteReceipt, error) {
	rawID := strings.TrimSpace(in.DecisionID)
	choice := domain.Choice(in.Choice)
	if rawID == "" || !choice.Valid() {
		return nil, apperrors.NewValidationError(MsgInvalidPayload, nil)
	}

	// A malformed id cannot name a stored decision.
	parsed, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperrors.NewNotFoundError(domain.VoteNotFound.Message())
	}
	decisionID := parsed.String()

	userAgent := utils.UserAgent(in.UserAgent)
	fingerprint := utils.Fingerprint(decisionID, utils.ClientIP(in.ForwardedFor), userAgent, s.salt)

	result, err := s.repo.CastVote(ctx, domain.CastVoteParams{
		DecisionID: decisionID,
		Choice:     choice,
		VoterHash:  fingerprint,
		UserAgent:  utils.TruncateUserAgent(in.UserAgent),
		Now:        s.now(),
	})
	if err != nil {
		s.logger.Error("Registrar call failed",
			zap.String("decision_id", decisionID),
			zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	if !result.Success {
		s.logger.Info("Vote rejected",
			zap.String("decision_id", decisionID),
			zap.String("voter", fingerprint[:12]),
			zap.String("status", string(result.Status)))
		return nil, voteError(result)
	}

	s.logger.Info("Vote recorded",
		zap.String("decision_id", decisionID),
		zap.String("voter", fingerprint[:12]),
		zap.String("choice", string(choice)))

	return &VoteReceipt{
		DecisionID: decisionID,
		Choice:     choice,
		Message:    result.Message,
	}, nil
}

func voteError(result *domain.VoteResult) *apperrors.AppError {
	message := result.Message
	if message == "" {
		message = result.Status.Message()
	}
	switch result.Status {
	case domain.VoteNotFound:
		return apperrors.NewNotFoundError(message)
	case domain.VoteInvalidChoice:
		return apperrors.NewValidationError(message, nil)
	default:
		return apperrors.NewPolicyError(message)
	}
}
