package domain

import (
	"fmt"
	"math"
	"time"
)

// State is the lifecycle position of a decision
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Winner of a closed decision
type Winner string

const (
	WinnerA   Winner = "A"
	WinnerB   Winner = "B"
	WinnerTie Winner = "Tie"
)

// Outcome is the derived, never stored, state of a decision
type Outcome struct {
	State      State  `json:"state"`
	Ended      bool   `json:"ended"`
	Winner     Winner `json:"winner,omitempty"`
	TotalVotes int    `json:"total_votes"`
	PercentA   int    `json:"pct_a"`
	PercentB   int    `json:"pct_b"`
}

// IsEnded reports whether voting is over at now
func IsEnded(now, expiresAt time.Time) bool {
	return !now.Before(expiresAt)
}

// Evaluate computes the lifecycle outcome from the clock and the counters.
// There is no stored state transition; every reader calls this.
func Evaluate(now, expiresAt time.Time, votesA, votesB int) Outcome {
	pctA, pctB := Percentages(votesA, votesB)
	out := Outcome{
		State:      StateOpen,
		TotalVotes: votesA + votesB,
		PercentA:   pctA,
		PercentB:   pctB,
	}

	if !IsEnded(now, expiresAt) {
		return out
	}

	out.State = StateClosed
	out.Ended = true
	switch {
	case votesA > votesB:
		out.Winner = WinnerA
	case votesB > votesA:
		out.Winner = WinnerB
	default:
		out.Winner = WinnerTie
	}
	return out
}

// Percentages returns whole-number shares that always sum to 100, or 0/0
// when nobody voted
func Percentages(votesA, votesB int) (int, int) {
	total := votesA + votesB
	if total == 0 {
		return 0, 0
	}
	pctA := int(math.Round(float64(votesA) / float64(total) * 100))
	return pctA, 100 - pctA
}

// TimeRemaining renders the countdown label shown next to a decision
func TimeRemaining(now, expiresAt time.Time) string {
	diff := expiresAt.Sub(now)
	if diff <= 0 {
		return "Voting ended"
	}

	totalSeconds := int64(diff / time.Second)
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm left", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds left", minutes, seconds)
	}
	return fmt.Sprintf("%ds left", seconds)
}
