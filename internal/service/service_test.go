package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"decisions-api/internal/domain"
	"decisions-api/internal/repository"
	"decisions-api/pkg/database"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSalt = "test-salt"

// fakeClock is a settable Clock for expiry scenarios
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newSQLiteRepository(t *testing.T) repository.DecisionRepository {
	t.Helper()
	db, err := database.NewSQLiteDB(context.Background(), filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return repository.NewSQLiteDecisionRepository(db)
}

func strPtr(s string) *string { return &s }
func hoursPtr(h float64) *float64 { return &h }

func validRequest() *domain.CreateDecisionRequest {
	return &domain.CreateDecisionRequest{
		Title:         strPtr("Should I adopt a second cat?"),
		Details:       strPtr("Small flat, first cat is 3 years old and friendly."),
		OptionA:       strPtr("Adopt"),
		OptionB:       strPtr("Wait"),
		DurationHours: hoursPtr(24),
		Category:      strPtr("Lifestyle"),
	}
}

// mockRepository lets tests force storage failures
type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, d *domain.Decision) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id string) (*domain.Decision, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*domain.Decision)
	return d, args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Decision, error) {
	args := m.Called(ctx, filter)
	ds, _ := args.Get(0).([]*domain.Decision)
	return ds, args.Error(1)
}

func (m *mockRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Decision, error) {
	args := m.Called(ctx, limit)
	ds, _ := args.Get(0).([]*domain.Decision)
	return ds, args.Error(1)
}

func (m *mockRepository) CastVote(ctx context.Context, p domain.CastVoteParams) (*domain.VoteResult, error) {
	args := m.Called(ctx, p)
	r, _ := args.Get(0).(*domain.VoteResult)
	return r, args.Error(1)
}

func (m *mockRepository) CountVotes(ctx context.Context, id string) (*domain.VoteTally, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*domain.VoteTally)
	return t, args.Error(1)
}

func (m *mockRepository) Audit(ctx context.Context) ([]*domain.VoteTally, error) {
	args := m.Called(ctx)
	ts, _ := args.Get(0).([]*domain.VoteTally)
	return ts, args.Error(1)
}

var nopLogger = zap.NewNop()
