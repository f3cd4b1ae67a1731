package domain

import (
	"strings"
	"time"
)

// Field limits for a decision, counted in characters
const (
	MaxTitleLength   = 90
	MaxDetailsLength = 800
	MaxOptionLength  = 40
)

// DefaultDurationHours applies when a create request omits durationHours
const DefaultDurationHours = 24

// AllowedDurations lists the only accepted voting windows, in hours
var AllowedDurations = []int{24, 48, 72}

// IsAllowedDuration reports whether hours is one of AllowedDurations
func IsAllowedDuration(hours int) bool {
	for _, d := range AllowedDurations {
		if d == hours {
			return true
		}
	}
	return false
}

// Category classifies a decision
type Category string

const (
	CategoryCareer        Category = "Career"
	CategoryRelationships Category = "Relationships"
	CategoryLifestyle     Category = "Lifestyle"
	CategoryMoney         Category = "Money (safe)"
	CategoryOther         Category = "Other"
)

// Categories is the fixed category enum in display order
var Categories = []Category{
	CategoryCareer,
	CategoryRelationships,
	CategoryLifestyle,
	CategoryMoney,
	CategoryOther,
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Decision represents a binary-choice poll
type Decision struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Title         string    `json:"title"`
	Details       string    `json:"details"`
	OptionA       string    `json:"option_a"`
	OptionB       string    `json:"option_b"`
	Category      Category  `json:"category"`
	DurationHours int       `json:"duration_hours"`
	ExpiresAt     time.Time `json:"expires_at"`
	VoteCountA    int       `json:"vote_count_a"`
	VoteCountB    int       `json:"vote_count_b"`
}

// Outcome derives the lifecycle view of the decision at now
func (d *Decision) Outcome(now time.Time) Outcome {
	return Evaluate(now, d.ExpiresAt, d.VoteCountA, d.VoteCountB)
}

// DecisionDraft is a validated, not yet persisted decision
type DecisionDraft struct {
	Title         string
	Details       string
	OptionA       string
	OptionB       string
	Category      Category
	DurationHours int
}

// Accept turns the draft into a decision created at now. The expiry is fixed
// here and never taken from the client.
func (d *DecisionDraft) Accept(id string, now time.Time) *Decision {
	return &Decision{
		ID:            id,
		CreatedAt:     now,
		Title:         d.Title,
		Details:       d.Details,
		OptionA:       d.OptionA,
		OptionB:       d.OptionB,
		Category:      d.Category,
		DurationHours: d.DurationHours,
		ExpiresAt:     now.Add(time.Duration(d.DurationHours) * time.Hour),
	}
}

// CreateDecisionRequest represents the POST /api/decisions body.
// Pointer fields distinguish an omitted value from an empty one.
// DurationHours is a JSON number; 48 and 48.0 are the same duration.
type CreateDecisionRequest struct {
	Title         *string  `json:"title"`
	Details       *string  `json:"details"`
	OptionA       *string  `json:"optionA"`
	OptionB       *string  `json:"optionB"`
	DurationHours *float64 `json:"durationHours"`
	Category      *string  `json:"category"`
}

// CreateDecisionResponse is returned after a decision is stored
type CreateDecisionResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// DecisionView is a decision with its derived state for readers
type DecisionView struct {
	*Decision
	Outcome
	TimeRemaining string `json:"time_remaining"`
	HasVoted      bool   `json:"has_voted"`
	VotedChoice   Choice `json:"voted_choice,omitempty"`
}

// NewDecisionView evaluates d at now
func NewDecisionView(d *Decision, now time.Time) *DecisionView {
	return &DecisionView{
		Decision:      d,
		Outcome:       d.Outcome(now),
		TimeRemaining: TimeRemaining(now, d.ExpiresAt),
	}
}

// Feed filters
type StatusFilter string

const (
	StatusAll    StatusFilter = "all"
	StatusActive StatusFilter = "active"
	StatusEnded  StatusFilter = "ended"
)

// Feed orderings
type SortOrder string

const (
	SortNew SortOrder = "new"
	SortTop SortOrder = "top"
)

// Feed page size bounds
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// ListFilter narrows a feed query
type ListFilter struct {
	Status StatusFilter
	Sort   SortOrder
	Query  string
	Limit  int
	Now    time.Time
}

// Normalize fills defaults, trims the search text and clamps the limit
func (f *ListFilter) Normalize() {
	f.Query = strings.TrimSpace(f.Query)
	switch f.Status {
	case StatusActive, StatusEnded:
	default:
		f.Status = StatusAll
	}
	if f.Sort != SortTop {
		f.Sort = SortNew
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
}

// DecisionList is the feed response
type DecisionList struct {
	Decisions []*DecisionView `json:"decisions"`
	Count     int             `json:"count"`
}
