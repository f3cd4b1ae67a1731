package repository

import (
	"context"
	"errors"
	"fmt"

	"decisions-api/internal/domain"
	"decisions-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

const decisionColumns = `id::text, created_at, title, details, option_a, option_b, category,
		duration_hours, expires_at, vote_count_a, vote_count_b`

type PostgresDecisionRepository struct {
	db *database.PostgresDB
}

func NewPostgresDecisionRepository(db *database.PostgresDB) *PostgresDecisionRepository {
	return &PostgresDecisionRepository{db: db}
}

// Create inserts a decision. Counters start at zero by column default.
func (r *PostgresDecisionRepository) Create(ctx context.Context, d *domain.Decision) error {
	query := `
		INSERT INTO decisions (
			id, created_at, title, details, option_a, option_b, category, duration_hours, expires_at
		)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		d.ID,
		d.CreatedAt,
		d.Title,
		d.Details,
		d.OptionA,
		d.OptionB,
		string(d.Category),
		d.DurationHours,
		d.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create decision: %w", err)
	}

	return nil
}

// GetByID gets a decision by ID
func (r *PostgresDecisionRepository) GetByID(ctx context.Context, id string) (*domain.Decision, error) {
	query := `SELECT ` + decisionColumns + ` FROM decisions WHERE id = $1::uuid`

	d, err := scanPostgresDecision(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}

	return d, nil
}

// List returns decisions matching the feed filter
func (r *PostgresDecisionRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Decision, error) {
	filter.Normalize()

	query := `SELECT ` + decisionColumns + ` FROM decisions WHERE TRUE`
	args := []any{}

	switch filter.Status {
	case domain.StatusActive:
		args = append(args, filter.Now)
		query += fmt.Sprintf(" AND expires_at > $%d", len(args))
	case domain.StatusEnded:
		args = append(args, filter.Now)
		query += fmt.Sprintf(" AND expires_at <= $%d", len(args))
	}

	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		query += fmt.Sprintf(` AND title ILIKE $%d ESCAPE '\'`, len(args))
	}

	if filter.Sort == domain.SortTop {
		query += " ORDER BY (vote_count_a + vote_count_b) DESC, created_at DESC"
	} else {
		query += " ORDER BY created_at DESC"
	}

	args = append(args, filter.Limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	return r.queryDecisions(ctx, query, args...)
}

// ListRecent returns the newest decisions first
func (r *PostgresDecisionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Decision, error) {
	query := `SELECT ` + decisionColumns + ` FROM decisions ORDER BY created_at DESC LIMIT $1`
	return r.queryDecisions(ctx, query, limit)
}

// CastVote delegates to the cast_vote function, which performs every check
// and both writes inside one transaction while holding the decision row lock.
func (r *PostgresDecisionRepository) CastVote(ctx context.Context, p domain.CastVoteParams) (*domain.VoteResult, error) {
	query := `SELECT success, code, message FROM cast_vote($1::uuid, $2, $3, $4, $5)`

	var (
		success bool
		code    string
		message string
	)
	err := r.db.Pool.QueryRow(ctx, query,
		p.DecisionID,
		string(p.Choice),
		p.VoterHash,
		p.UserAgent,
		p.Now,
	).Scan(&success, &code, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to cast vote: %w", err)
	}

	return &domain.VoteResult{
		Success: success,
		Status:  domain.VoteStatus(code),
		Message: message,
	}, nil
}

// CountVotes recounts vote records for a decision using the decision_id index
func (r *PostgresDecisionRepository) CountVotes(ctx context.Context, id string) (*domain.VoteTally, error) {
	query := `
		SELECT d.id::text, d.vote_count_a, d.vote_count_b,
		       COUNT(v.id) FILTER (WHERE v.choice = 'A'),
		       COUNT(v.id) FILTER (WHERE v.choice = 'B')
		FROM decisions d
		LEFT JOIN votes v ON v.decision_id = d.id
		WHERE d.id = $1::uuid
		GROUP BY d.id
	`

	t, err := scanTally(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	return t, nil
}

// Audit recounts every decision
func (r *PostgresDecisionRepository) Audit(ctx context.Context) ([]*domain.VoteTally, error) {
	query := `
		SELECT d.id::text, d.vote_count_a, d.vote_count_b,
		       COUNT(v.id) FILTER (WHERE v.choice = 'A'),
		       COUNT(v.id) FILTER (WHERE v.choice = 'B')
		FROM decisions d
		LEFT JOIN votes v ON v.decision_id = d.id
		GROUP BY d.id
		ORDER BY d.created_at
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to audit votes: %w", err)
	}
	defer rows.Close()

	var tallies []*domain.VoteTally
	for rows.Next() {
		t, err := scanTally(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tallies: %w", err)
	}

	return tallies, nil
}

func (r *PostgresDecisionRepository) queryDecisions(ctx context.Context, query string, args ...any) ([]*domain.Decision, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	decisions := make([]*domain.Decision, 0)
	for rows.Next() {
		d, err := scanPostgresDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decisions: %w", err)
	}

	return decisions, nil
}

func scanPostgresDecision(row rowScanner) (*domain.Decision, error) {
	var (
		d        domain.Decision
		category string
	)
	err := row.Scan(
		&d.ID,
		&d.CreatedAt,
		&d.Title,
		&d.Details,
		&d.OptionA,
		&d.OptionB,
		&category,
		&d.DurationHours,
		&d.ExpiresAt,
		&d.VoteCountA,
		&d.VoteCountB,
	)
	if err != nil {
		return nil, err
	}

	d.Category = domain.Category(category)
	d.CreatedAt = d.CreatedAt.UTC()
	d.ExpiresAt = d.ExpiresAt.UTC()
	return &d, nil
}

func scanTally(row rowScanner) (*domain.VoteTally, error) {
	var t domain.VoteTally
	if err := row.Scan(&t.DecisionID, &t.CounterA, &t.CounterB, &t.RecordsA, &t.RecordsB); err != nil {
		return nil, err
	}
	return &t, nil
}
