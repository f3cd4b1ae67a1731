package domain

import (
	"time"
)

// Choice is one of the two options of a decision
type Choice string

const (
	ChoiceA Choice = "A"
	ChoiceB Choice = "B"
)

// Valid reports whether c is A or B
func (c Choice) Valid() bool {
	return c == ChoiceA || c == ChoiceB
}

// CastVoteRequest represents the POST /api/vote body
type CastVoteRequest struct {
	DecisionID string `json:"decisionId"`
	Choice     string `json:"choice"`
}

// CastVoteParams is everything the registrar needs for one attempt.
// Now comes from the server clock, never from the client.
type CastVoteParams struct {
	DecisionID string
	Choice     Choice
	VoterHash  string
	UserAgent  string
	Now        time.Time
}

// VoteStatus is the machine readable result of a registrar call
type VoteStatus string

const (
	VoteRecorded      VoteStatus = "recorded"
	VoteNotFound      VoteStatus = "not_found"
	VoteEnded         VoteStatus = "ended"
	VoteInvalidChoice VoteStatus = "invalid_choice"
	VoteAlreadyCast   VoteStatus = "already_voted"
)

var voteMessages = map[VoteStatus]string{
	VoteRecorded:      "Vote recorded.",
	VoteNotFound:      "Decision not found.",
	VoteEnded:         "Voting ended.",
	VoteInvalidChoice: "Invalid choice.",
	VoteAlreadyCast:   "You have already voted.",
}

// Message returns the caller-facing text for the status
func (s VoteStatus) Message() string {
	if msg, ok := voteMessages[s]; ok {
		return msg
	}
	return "Vote failed."
}

// VoteResult is the structured outcome of a registrar call
type VoteResult struct {
	Success bool       `json:"success"`
	Status  VoteStatus `json:"status"`
	Message string     `json:"message"`
}

// NewVoteResult builds the result for status with its canonical message
func NewVoteResult(status VoteStatus) *VoteResult {
	return &VoteResult{
		Success: status == VoteRecorded,
		Status:  status,
		Message: status.Message(),
	}
}

// CastVoteResponse is the POST /api/vote success body
type CastVoteResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// VoteTally is a recount of vote records for one decision
type VoteTally struct {
	DecisionID string `json:"decision_id"`
	RecordsA   int    `json:"records_a"`
	RecordsB   int    `json:"records_b"`
	CounterA   int    `json:"counter_a"`
	CounterB   int    `json:"counter_b"`
}

// Consistent reports whether stored counters match the vote records
func (t VoteTally) Consistent() bool {
	return t.RecordsA == t.CounterA && t.RecordsB == t.CounterB
}
