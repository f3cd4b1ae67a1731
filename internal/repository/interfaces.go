package repository

import (
	"context"

	"decisions-api/internal/domain"
)

// DecisionRepository defines storage operations for decisions and their votes.
// CastVote is the only path that writes vote records or vote counters.
type DecisionRepository interface {
	// Create stores a new decision with zero counters
	Create(ctx context.Context, decision *domain.Decision) error

	// GetByID returns nil, nil when the decision does not exist
	GetByID(ctx context.Context, id string) (*domain.Decision, error)

	// List returns a feed page
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Decision, error)

	// ListRecent returns the most recently created decisions
	ListRecent(ctx context.Context, limit int) ([]*domain.Decision, error)

	// CastVote runs the registrar as one atomic transaction. Policy failures
	// come back as an unsuccessful result; only storage faults return an error.
	CastVote(ctx context.Context, params domain.CastVoteParams) (*domain.VoteResult, error)

	// CountVotes recounts vote records for one decision next to its counters.
	// Returns nil, nil when the decision does not exist.
	CountVotes(ctx context.Context, id string) (*domain.VoteTally, error)

	// Audit recounts every decision
	Audit(ctx context.Context) ([]*domain.VoteTally, error)
}

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// escapeLike escapes LIKE wildcards so user text matches literally
func escapeLike(s string) string {
	r := make([]rune, 0, len(s))
	for _, c := range s {
		if c == '\\' || c == '%' || c == '_' {
			r = append(r, '\\')
		}
		r = append(r, c)
	}
	return string(r)
}
