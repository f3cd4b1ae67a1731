package service

import (
	"context"
	"time"

	"decisions-api/internal/domain"
	"decisions-api/internal/repository"
	apperrors "decisions-api/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MsgDecisionNotFound is shown for unknown or malformed decision ids
const MsgDecisionNotFound = "Decision not found."

type DecisionService struct {
	repo       repository.DecisionRepository
	cache      *CacheService
	sidebarTTL time.Duration
	logger     *zap.Logger
	now        Clock
}

func NewDecisionService(repo repository.DecisionRepository, cache *CacheService, sidebarTTL time.Duration, logger *zap.Logger, clock Clock) *DecisionService {
	if clock == nil {
		clock = SystemClock
	}
	return &DecisionService{
		repo:       repo,
		cache:      cache,
		sidebarTTL: sidebarTTL,
		logger:     logger,
		now:        clock,
	}
}

// Create validates the request and stores a new decision. The expiry is
// computed here from the server clock.
func (s *DecisionService) Create(ctx context.Context, req *domain.CreateDecisionRequest) (*domain.Decision, error) {
	draft, appErr := ValidateCreate(req)
	if appErr != nil {
		s.logger.Debug("Decision rejected",
			zap.String("type", string(appErr.Type)),
			zap.String("reason", appErr.Message))
		return nil, appErr
	}

	decision := draft.Accept(uuid.NewString(), s.now())

	if err := s.repo.Create(ctx, decision); err != nil {
		s.logger.Error("Failed to store decision", zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	s.cache.InvalidateSidebar(ctx)

	s.logger.Info("Decision created",
		zap.String("decision_id", decision.ID),
		zap.String("category", string(decision.Category)),
		zap.Int("duration_hours", decision.DurationHours))

	return decision, nil
}

// Get returns the decision view. votedChoice is the advisory cookie value,
// if any; it only drives has_voted in the response.
func (s *DecisionService) Get(ctx context.Context, id string, votedChoice string) (*domain.DecisionView, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NewNotFoundError(MsgDecisionNotFound)
	}

	decision, err := s.repo.GetByID(ctx, parsed.String())
	if err != nil {
		s.logger.Error("Failed to load decision", zap.String("decision_id", id), zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}
	if decision == nil {
		return nil, apperrors.NewNotFoundError(MsgDecisionNotFound)
	}

	view := domain.NewDecisionView(decision, s.now())
	if choice := domain.Choice(votedChoice); choice.Valid() {
		view.HasVoted = true
		view.VotedChoice = choice
	}
	return view, nil
}

// List returns a feed page with each decision evaluated at the same instant
func (s *DecisionService) List(ctx context.Context, filter domain.ListFilter) (*domain.DecisionList, error) {
	now := s.now()
	filter.Now = now
	filter.Normalize()

	decisions, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list decisions", zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	views := make([]*domain.DecisionView, 0, len(decisions))
	for _, d := range decisions {
		views = append(views, domain.NewDecisionView(d, now))
	}

	return &domain.DecisionList{Decisions: views, Count: len(views)}, nil
}

// Sidebar returns trending categories and recently ended decisions
func (s *DecisionService) Sidebar(ctx context.Context) (*domain.Sidebar, error) {
	sidebar, err := s.cache.GetSidebarWithCache(ctx, s.sidebarTTL, func(ctx context.Context) (*domain.Sidebar, error) {
		recent, err := s.repo.ListRecent(ctx, domain.SidebarSourceLimit)
		if err != nil {
			return nil, err
		}
		return domain.BuildSidebar(recent, s.now()), nil
	})
	if err != nil {
		s.logger.Error("Failed to build sidebar", zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}
	return sidebar, nil
}

// Tally recounts one decision's votes against its counters
func (s *DecisionService) Tally(ctx context.Context, id string) (*domain.VoteTally, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NewNotFoundError(MsgDecisionNotFound)
	}

	tally, err := s.repo.CountVotes(ctx, parsed.String())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if tally == nil {
		return nil, apperrors.NewNotFoundError(MsgDecisionNotFound)
	}
	return tally, nil
}
