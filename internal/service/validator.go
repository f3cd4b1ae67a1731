package service

import (
	"math"
	"strings"
	"unicode/utf8"

	"decisions-api/internal/domain"
	apperrors "decisions-api/pkg/errors"
	"decisions-api/pkg/utils"
)

// Creation validator messages
const (
	MsgMissingFields   = "Missing required fields."
	MsgFieldsTooLong   = "One or more fields exceed limits."
	MsgInvalidDuration = "Invalid duration."
	MsgInvalidCategory = "Invalid category."
)

// ValidateCreate trims and checks a create request and returns the draft.
// Checks run in a fixed order: required fields, lengths, duration, category,
// then moderation of title and details together.
func ValidateCreate(req *domain.CreateDecisionRequest) (*domain.DecisionDraft, *apperrors.AppError) {
	if req == nil {
		return nil, apperrors.NewValidationError(MsgMissingFields, nil)
	}

	title := trimmed(req.Title)
	details := trimmed(req.Details)
	optionA := trimmed(req.OptionA)
	optionB := trimmed(req.OptionB)

	duration, durationOK := domain.DefaultDurationHours, true
	if req.DurationHours != nil {
		duration, durationOK = wholeHours(*req.DurationHours)
	}

	category := string(domain.CategoryOther)
	if req.Category != nil {
		category = strings.TrimSpace(*req.Category)
	}

	if title == "" || details == "" || optionA == "" || optionB == "" {
		return nil, apperrors.NewValidationError(MsgMissingFields, nil)
	}

	if tooLong(title, domain.MaxTitleLength) ||
		tooLong(details, domain.MaxDetailsLength) ||
		tooLong(optionA, domain.MaxOptionLength) ||
		tooLong(optionB, domain.MaxOptionLength) {
		return nil, apperrors.NewValidationError(MsgFieldsTooLong, map[string]interface{}{
			"title":   domain.MaxTitleLength,
			"details": domain.MaxDetailsLength,
			"option":  domain.MaxOptionLength,
		})
	}

	if !durationOK || !domain.IsAllowedDuration(duration) {
		return nil, apperrors.NewValidationError(MsgInvalidDuration, map[string]interface{}{
			"allowed": domain.AllowedDurations,
		})
	}

	if !domain.Category(category).Valid() {
		return nil, apperrors.NewValidationError(MsgInvalidCategory, nil)
	}

	if utils.ContainsBlockedContent(title + " " + details) {
		return nil, apperrors.NewPolicyError(utils.BlockedContentMessage)
	}

	return &domain.DecisionDraft{
		Title:         title,
		Details:       details,
		OptionA:       optionA,
		OptionB:       optionB,
		Category:      domain.Category(category),
		DurationHours: duration,
	}, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func tooLong(s string, limit int) bool {
	return utf8.RuneCountInString(s) > limit
}

// wholeHours accepts only integral hour counts in a sane range
func wholeHours(h float64) (int, bool) {
	if h != math.Trunc(h) || h < 0 || h > math.MaxInt32 {
		return 0, false
	}
	return int(h), true
}
