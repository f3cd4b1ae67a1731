package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"decisions-api/internal/domain"
	"decisions-api/pkg/database"
)

const sqliteDecisionColumns = `id, created_at, title, details, option_a, option_b, category,
		duration_hours, expires_at, vote_count_a, vote_count_b`

const sqliteTallyQuery = `
		SELECT d.id, d.vote_count_a, d.vote_count_b,
		       COALESCE(SUM(CASE WHEN v.choice = 'A' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN v.choice = 'B' THEN 1 ELSE 0 END), 0)
		FROM decisions d
		LEFT JOIN votes v ON v.decision_id = d.id
`

// SQLiteDecisionRepository stores decisions in an embedded SQLite file.
// Timestamps are Unix microseconds.
type SQLiteDecisionRepository struct {
	db *database.SQLiteDB
}

func NewSQLiteDecisionRepository(db *database.SQLiteDB) *SQLiteDecisionRepository {
	return &SQLiteDecisionRepository{db: db}
}

// Create inserts a decision
func (r *SQLiteDecisionRepository) Create(ctx context.Context, d *domain.Decision) error {
	query := `
		INSERT INTO decisions (
			id, created_at, title, details, option_a, option_b, category, duration_hours, expires_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.DB.ExecContext(ctx, query,
		d.ID,
		d.CreatedAt.UnixMicro(),
		d.Title,
		d.Details,
		d.OptionA,
		d.OptionB,
		string(d.Category),
		d.DurationHours,
		d.ExpiresAt.UnixMicro(),
	)
	if err != nil {
		return fmt.Errorf("failed to create decision: %w", err)
	}

	return nil
}

// GetByID gets a decision by ID
func (r *SQLiteDecisionRepository) GetByID(ctx context.Context, id string) (*domain.Decision, error) {
	query := `SELECT ` + sqliteDecisionColumns + ` FROM decisions WHERE id = ?`

	d, err := scanSQLiteDecision(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}

	return d, nil
}

// List returns decisions matching the feed filter
func (r *SQLiteDecisionRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Decision, error) {
	filter.Normalize()

	query := `SELECT ` + sqliteDecisionColumns + ` FROM decisions WHERE 1 = 1`
	args := []any{}

	switch filter.Status {
	case domain.StatusActive:
		query += " AND expires_at > ?"
		args = append(args, filter.Now.UnixMicro())
	case domain.StatusEnded:
		query += " AND expires_at <= ?"
		args = append(args, filter.Now.UnixMicro())
	}

	if filter.Query != "" {
		// LIKE is case-insensitive for ASCII in SQLite
		query += ` AND title LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(filter.Query)+"%")
	}

	if filter.Sort == domain.SortTop {
		query += " ORDER BY (vote_count_a + vote_count_b) DESC, created_at DESC"
	} else {
		query += " ORDER BY created_at DESC"
	}

	query += " LIMIT ?"
	args = append(args, filter.Limit)

	return r.queryDecisions(ctx, query, args...)
}

// ListRecent returns the newest decisions first
func (r *SQLiteDecisionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Decision, error) {
	query := `SELECT ` + sqliteDecisionColumns + ` FROM decisions ORDER BY created_at DESC LIMIT ?`
	return r.queryDecisions(ctx, query, limit)
}

// CastVote runs the registrar checks and writes in one transaction. The
// UNIQUE(decision_id, voter_hash) constraint decides duplicates; the counter
// moves by a relative UPDATE only when the insert landed.
func (r *SQLiteDecisionRepository) CastVote(ctx context.Context, p domain.CastVoteParams) (*domain.VoteResult, error) {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin vote transaction: %w", err)
	}
	defer tx.Rollback()

	var expiresAt int64
	err = tx.QueryRowContext(ctx, `SELECT expires_at FROM decisions WHERE id = ?`, p.DecisionID).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewVoteResult(domain.VoteNotFound), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load decision for vote: %w", err)
	}

	if domain.IsEnded(p.Now, time.UnixMicro(expiresAt)) {
		return domain.NewVoteResult(domain.VoteEnded), nil
	}

	if !p.Choice.Valid() {
		return domain.NewVoteResult(domain.VoteInvalidChoice), nil
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO votes (decision_id, voter_hash, choice, created_at, user_agent)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (decision_id, voter_hash) DO NOTHING
	`, p.DecisionID, p.VoterHash, string(p.Choice), p.Now.UnixMicro(), p.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to insert vote: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read vote insert result: %w", err)
	}
	if inserted == 0 {
		return domain.NewVoteResult(domain.VoteAlreadyCast), nil
	}

	increment := `UPDATE decisions SET vote_count_a = vote_count_a + 1 WHERE id = ?`
	if p.Choice == domain.ChoiceB {
		increment = `UPDATE decisions SET vote_count_b = vote_count_b + 1 WHERE id = ?`
	}
	if _, err := tx.ExecContext(ctx, increment, p.DecisionID); err != nil {
		return nil, fmt.Errorf("failed to increment vote counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	return domain.NewVoteResult(domain.VoteRecorded), nil
}

// CountVotes recounts vote records for a decision
func (r *SQLiteDecisionRepository) CountVotes(ctx context.Context, id string) (*domain.VoteTally, error) {
	query := sqliteTallyQuery + ` WHERE d.id = ? GROUP BY d.id`

	t, err := scanTally(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to count votes: %w", err)
	}
	return t, nil
}

// Audit recounts every decision
func (r *SQLiteDecisionRepository) Audit(ctx context.Context) ([]*domain.VoteTally, error) {
	rows, err := r.db.DB.QueryContext(ctx, sqliteTallyQuery+` GROUP BY d.id ORDER BY d.created_at`)
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

func (r *SQLiteDecisionRepository) queryDecisions(ctx context.Context, query string, args ...any) ([]*domain.Decision, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	decisions := make([]*domain.Decision, 0)
	for rows.Next() {
		d, err := scanSQLiteDecision(rows)
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

func scanSQLiteDecision(row rowScanner) (*domain.Decision, error) {
	var (
		d         domain.Decision
		category  string
		createdAt int64
		expiresAt int64
	)
	err := row.Scan(
		&d.ID,
		&createdAt,
		&d.Title,
		&d.Details,
		&d.OptionA,
		&d.OptionB,
		&category,
		&d.DurationHours,
		&expiresAt,
		&d.VoteCountA,
		&d.VoteCountB,
	)
	if err != nil {
		return nil, err
	}

	d.Category = domain.Category(category)
	d.CreatedAt = time.UnixMicro(createdAt).UTC()
	d.ExpiresAt = time.UnixMicro(expiresAt).UTC()
	return &d, nil
}
