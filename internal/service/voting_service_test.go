package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"decisions-api/internal/domain"
	apperrors "decisions-api/pkg/errors"
	"decisions-api/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

func asAppError(t *testing.T, err error) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr
}

// Create with duration 24, vote A from F1, duplicate from F1, vote B from F2,
// advance past expiry, vote from F3 fails, decision reads as ended with A winning.
func TestVotingScenario(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(start)
	repo := newSQLiteRepository(t)
	decisions := NewDecisionService(repo, nil, time.Minute, nopLogger, clock.Now)
	voting := NewVotingService(repo, testSalt, nopLogger, clock.Now)

	d, err := decisions.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, start.Add(24*time.Hour), d.ExpiresAt)

	f1 := VoteInput{DecisionID: d.ID, Choice: "A", ForwardedFor: "198.51.100.1", UserAgent: "browser-1"}
	receipt, err := voting.CastVote(ctx, f1)
	require.NoError(t, err)
	assert.Equal(t, domain.VoteRecorded.Message(), receipt.Message)
	assert.Equal(t, domain.ChoiceA, receipt.Choice)

	view, err := decisions.Get(ctx, d.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, view.VoteCountA)

	f1.Choice = "B"
	_, err = voting.CastVote(ctx, f1)
	appErr := asAppError(t, err)
	assert.Equal(t, domain.VoteAlreadyCast.Message(), appErr.Message)
	assert.Equal(t, apperrors.ErrorTypePolicy, appErr.Type)

	view, err = decisions.Get(ctx, d.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, view.VoteCountA)
	assert.Equal(t, 0, view.VoteCountB)

	f2 := VoteInput{DecisionID: d.ID, Choice: "B", ForwardedFor: "198.51.100.2", UserAgent: "browser-2"}
	_, err = voting.CastVote(ctx, f2)
	require.NoError(t, err)

	clock.Advance(24*time.Hour + time.Second)

	f3 := VoteInput{DecisionID: d.ID, Choice: "A", ForwardedFor: "198.51.100.3", UserAgent: "browser-3"}
	_, err = voting.CastVote(ctx, f3)
	appErr = asAppError(t, err)
	assert.Equal(t, domain.VoteEnded.Message(), appErr.Message)

	view, err = decisions.Get(ctx, d.ID, "A")
	require.NoError(t, err)
	assert.True(t, view.Ended)
	assert.Equal(t, domain.StateClosed, view.State)
	assert.Equal(t, domain.WinnerTie, view.Winner, "one vote each")
	assert.Equal(t, 1, view.VoteCountA)
	assert.Equal(t, 1, view.VoteCountB)
	assert.True(t, view.HasVoted)
}

func TestVotingScenarioWinnerA(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock(start)
	repo := newSQLiteRepository(t)
	decisions := NewDecisionService(repo, nil, time.Minute, nopLogger, clock.Now)
	voting := NewVotingService(repo, testSalt, nopLogger, clock.Now)

	d, err := decisions.Create(ctx, validRequest())
	require.NoError(t, err)

	_, err = voting.CastVote(ctx, VoteInput{DecisionID: d.ID, Choice: "A", ForwardedFor: "10.1.1.1", UserAgent: "ua"})
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)

	_, err = voting.CastVote(ctx, VoteInput{DecisionID: d.ID, Choice: "B", ForwardedFor: "10.1.1.2", UserAgent: "ua"})
	assert.Equal(t, domain.VoteEnded.Message(), asAppError(t, err).Message)

	view, err := decisions.Get(ctx, d.ID, "")
	require.NoError(t, err)
	assert.True(t, view.Ended)
	assert.Equal(t, domain.WinnerA, view.Winner)
	assert.Equal(t, 100, view.PercentA)
}

func TestCastVoteInvalidPayload(t *testing.T) {
	repo := new(mockRepository)
	voting := NewVotingService(repo, testSalt, nopLogger, nil)

	tests := []struct {
		name     string
		input    VoteInput
		wantMsg  string
		wantType apperrors.ErrorType
	}{
		{"empty id", VoteInput{DecisionID: "  ", Choice: "A"}, MsgInvalidPayload, apperrors.ErrorTypeValidation},
		{"lowercase choice", VoteInput{DecisionID: uuid.NewString(), Choice: "a"}, MsgInvalidPayload, apperrors.ErrorTypeValidation},
		{"missing choice", VoteInput{DecisionID: uuid.NewString()}, MsgInvalidPayload, apperrors.ErrorTypeValidation},
		{"malformed id", VoteInput{DecisionID: "not-a-uuid", Choice: "B"}, domain.VoteNotFound.Message(), apperrors.ErrorTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := voting.CastVote(context.Background(), tt.input)
			appErr := asAppError(t, err)
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.Equal(t, tt.wantType, appErr.Type)
		})
	}

	repo.AssertNotCalled(t, "CastVote", mock.Anything, mock.Anything)
}

func TestCastVoteFingerprintParams(t *testing.T) {
	repo := new(mockRepository)
	now := start.Add(time.Hour)
	voting := NewVotingService(repo, testSalt, nopLogger, func() time.Time { return now })

	id := uuid.New()
	longUA := strings.Repeat("x", 500)
	expected := domain.CastVoteParams{
		DecisionID: id.String(),
		Choice:     domain.ChoiceB,
		VoterHash:  utils.Fingerprint(id.String(), "203.0.113.9", longUA, testSalt),
		UserAgent:  longUA[:utils.MaxUserAgentLength],
		Now:        now,
	}
	repo.On("CastVote", mock.Anything, expected).Return(domain.NewVoteResult(domain.VoteRecorded), nil).Once()

	receipt, err := voting.CastVote(context.Background(), VoteInput{
		DecisionID:   "  " + strings.ToUpper(id.String()) + " ",
		Choice:       "B",
		ForwardedFor: "203.0.113.9, 10.0.0.1",
		UserAgent:    longUA,
	})
	require.NoError(t, err)
	assert.Equal(t, id.String(), receipt.DecisionID)
	repo.AssertExpectations(t)
}

func TestCastVoteSentinels(t *testing.T) {
	repo := new(mockRepository)
	voting := NewVotingService(repo, testSalt, nopLogger, func() time.Time { return start })

	id := uuid.NewString()
	want := utils.Fingerprint(id, utils.UnknownIP, utils.UnknownUserAgent, testSalt)
	repo.On("CastVote", mock.Anything, mock.MatchedBy(func(p domain.CastVoteParams) bool {
		return p.VoterHash == want && p.UserAgent == ""
	})).Return(domain.NewVoteResult(domain.VoteRecorded), nil).Once()

	_, err := voting.CastVote(context.Background(), VoteInput{DecisionID: id, Choice: "A"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCastVoteRegistrarOutcomes(t *testing.T) {
	tests := []struct {
		status     domain.VoteStatus
		wantType   apperrors.ErrorType
		wantStatus int
	}{
		{domain.VoteNotFound, apperrors.ErrorTypeNotFound, 404},
		{domain.VoteEnded, apperrors.ErrorTypePolicy, 400},
		{domain.VoteAlreadyCast, apperrors.ErrorTypePolicy, 400},
		{domain.VoteInvalidChoice, apperrors.ErrorTypeValidation, 400},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			repo := new(mockRepository)
			repo.On("CastVote", mock.Anything, mock.Anything).Return(domain.NewVoteResult(tt.status), nil)
			voting := NewVotingService(repo, testSalt, nopLogger, nil)

			_, err := voting.CastVote(context.Background(), VoteInput{DecisionID: uuid.NewString(), Choice: "A"})
			appErr := asAppError(t, err)
			assert.Equal(t, tt.wantType, appErr.Type)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			assert.Equal(t, tt.status.Message(), appErr.Message)
		})
	}
}

func TestCastVoteStorageFailure(t *testing.T) {
	repo := new(mockRepository)
	repo.On("CastVote", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("conn reset by peer"))
	voting := NewVotingService(repo, testSalt, nopLogger, nil)

	_, err := voting.CastVote(context.Background(), VoteInput{DecisionID: uuid.NewString(), Choice: "A"})
	appErr := asAppError(t, err)
	assert.Equal(t, apperrors.ErrorTypeInternal, appErr.Type)
	assert.Equal(t, apperrors.GenericMessage, appErr.Message)
	assert.NotContains(t, appErr.Message, "conn reset")
}

func TestCastVoteConcurrentSameBrowser(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepository(t)
	clock := newFakeClock(start)
	decisions := NewDecisionService(repo, nil, time.Minute, nopLogger, clock.Now)
	voting := NewVotingService(repo, testSalt, nopLogger, clock.Now)

	d, err := decisions.Create(ctx, validRequest())
	require.NoError(t, err)

	const n = 20
	var (
		wg        sync.WaitGroup
		ok        atomic.Int32
		duplicate atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := voting.CastVote(ctx, VoteInput{DecisionID: d.ID, Choice: "B", ForwardedFor: "192.0.2.44", UserAgent: "same"})
			if err == nil {
				ok.Add(1)
				return
			}
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Message == domain.VoteAlreadyCast.Message() {
				duplicate.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(n-1), duplicate.Load())

	tally, err := decisions.Tally(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, tally.CounterB)
	assert.True(t, tally.Consistent())
}
