package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"decisions-api/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenarios shared by every DecisionRepository backend.

var baseTime = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func seedDecision(t *testing.T, repo DecisionRepository, title string, category domain.Category, created time.Time, hours int) *domain.Decision {
	t.Helper()
	draft := &domain.DecisionDraft{
		Title:         title,
		Details:       "details for " + title,
		OptionA:       "Yes",
		OptionB:       "No",
		Category:      category,
		DurationHours: hours,
	}
	d := draft.Accept(uuid.NewString(), created)
	require.NoError(t, repo.Create(context.Background(), d))
	return d
}

func vote(repo DecisionRepository, id string, choice domain.Choice, voter string, now time.Time) (*domain.VoteResult, error) {
	return repo.CastVote(context.Background(), domain.CastVoteParams{
		DecisionID: id,
		Choice:     choice,
		VoterHash:  voter,
		UserAgent:  "test-agent",
		Now:        now,
	})
}

func runCastVoteOrder(t *testing.T, repo DecisionRepository) {
	d := seedDecision(t, repo, "Order of checks", domain.CategoryOther, baseTime, 24)
	open := baseTime.Add(time.Hour)
	closed := baseTime.Add(24 * time.Hour)

	tests := []struct {
		name   string
		id     string
		choice domain.Choice
		voter  string
		now    time.Time
		want   domain.VoteStatus
	}{
		{"unknown decision wins over everything", uuid.NewString(), "X", "v1", closed, domain.VoteNotFound},
		{"expiry checked before choice", d.ID, "X", "v1", closed, domain.VoteEnded},
		{"invalid choice on open decision", d.ID, "X", "v1", open, domain.VoteInvalidChoice},
		{"first vote recorded", d.ID, domain.ChoiceA, "v1", open, domain.VoteRecorded},
		{"second vote rejected", d.ID, domain.ChoiceB, "v1", open, domain.VoteAlreadyCast},
		{"expired even for new voter", d.ID, domain.ChoiceB, "v2", closed, domain.VoteEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := vote(repo, tt.id, tt.choice, tt.voter, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Status)
			assert.Equal(t, tt.want == domain.VoteRecorded, res.Success)
			assert.Equal(t, tt.want.Message(), res.Message)
		})
	}

	tally, err := repo.CountVotes(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.CounterA)
	assert.Equal(t, 0, tally.CounterB)
	assert.True(t, tally.Consistent())
}

func runConcurrentSameVoter(t *testing.T, repo DecisionRepository) {
	d := seedDecision(t, repo, "Race same voter", domain.CategoryOther, baseTime, 24)
	now := baseTime.Add(time.Minute)

	const attempts = 25
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
		duplicate atomic.Int32
		failures  atomic.Int32
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := vote(repo, d.ID, domain.ChoiceA, "same-fingerprint", now)
			switch {
			case err != nil:
				failures.Add(1)
			case res.Success:
				successes.Add(1)
			case res.Status == domain.VoteAlreadyCast:
				duplicate.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(0), failures.Load())
	assert.Equal(t, int32(1), successes.Load())
	assert.Equal(t, int32(attempts-1), duplicate.Load())

	tally, err := repo.CountVotes(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.CounterA)
	assert.Equal(t, 1, tally.RecordsA)
	assert.True(t, tally.Consistent())
}

func runConcurrentDistinctVoters(t *testing.T, repo DecisionRepository) {
	d := seedDecision(t, repo, "Race many voters", domain.CategoryOther, baseTime, 24)
	now := baseTime.Add(time.Minute)

	const attempts = 40
	var (
		wg        sync.WaitGroup
		successes atomic.Int32
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			choice := domain.ChoiceA
			if i%2 == 1 {
				choice = domain.ChoiceB
			}
			res, err := vote(repo, d.ID, choice, fmt.Sprintf("voter-%d", i), now)
			if err == nil && res.Success {
				successes.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(attempts), successes.Load())

	got, err := repo.GetByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, attempts/2, got.VoteCountA)
	assert.Equal(t, attempts/2, got.VoteCountB)

	tally, err := repo.CountVotes(context.Background(), d.ID)
	require.NoError(t, err)
	assert.True(t, tally.Consistent())
	assert.Equal(t, attempts, tally.RecordsA+tally.RecordsB)
}

func runList(t *testing.T, repo DecisionRepository) {
	ctx := context.Background()
	now := baseTime.Add(30 * time.Hour)

	old := seedDecision(t, repo, "Old ended question", domain.CategoryCareer, baseTime, 24)
	mid := seedDecision(t, repo, "Pizza or sushi tonight", domain.CategoryLifestyle, baseTime.Add(10*time.Hour), 48)
	newest := seedDecision(t, repo, "Buy 100% index fund?", domain.CategoryMoney, baseTime.Add(20*time.Hour), 72)

	_, err := vote(repo, mid.ID, domain.ChoiceA, "a", baseTime.Add(21*time.Hour))
	require.NoError(t, err)
	_, err = vote(repo, mid.ID, domain.ChoiceB, "b", baseTime.Add(21*time.Hour))
	require.NoError(t, err)
	_, err = vote(repo, newest.ID, domain.ChoiceA, "a", baseTime.Add(21*time.Hour))
	require.NoError(t, err)

	ids := func(ds []*domain.Decision) []string {
		out := make([]string, 0, len(ds))
		for _, d := range ds {
			out = append(out, d.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		filter domain.ListFilter
		want   []string
	}{
		{"all newest first", domain.ListFilter{}, []string{newest.ID, mid.ID, old.ID}},
		{"active only", domain.ListFilter{Status: domain.StatusActive}, []string{newest.ID, mid.ID}},
		{"ended only", domain.ListFilter{Status: domain.StatusEnded}, []string{old.ID}},
		{"top by votes", domain.ListFilter{Sort: domain.SortTop}, []string{mid.ID, newest.ID, old.ID}},
		{"search case insensitive", domain.ListFilter{Query: "PIZZA"}, []string{mid.ID}},
		{"search wildcard is literal", domain.ListFilter{Query: "100%"}, []string{newest.ID}},
		{"search underscore is literal", domain.ListFilter{Query: "_"}, []string{}},
		{"limit", domain.ListFilter{Limit: 1}, []string{newest.ID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.filter.Now = now
			got, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func runListRecentAndAudit(t *testing.T, repo DecisionRepository) {
	ctx := context.Background()

	var created []*domain.Decision
	for i := 0; i < 3; i++ {
		created = append(created, seedDecision(t, repo, fmt.Sprintf("q%d", i), domain.CategoryOther, baseTime.Add(time.Duration(i)*time.Hour), 24))
	}

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, created[2].ID, recent[0].ID)
	assert.Equal(t, created[1].ID, recent[1].ID)

	_, err = vote(repo, created[0].ID, domain.ChoiceB, "x", baseTime.Add(5*time.Hour))
	require.NoError(t, err)

	tallies, err := repo.Audit(ctx)
	require.NoError(t, err)
	require.Len(t, tallies, 3)
	for _, tally := range tallies {
		assert.True(t, tally.Consistent(), tally.DecisionID)
	}
	assert.Equal(t, 1, tallies[0].RecordsB)

	missing, err := repo.CountVotes(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
