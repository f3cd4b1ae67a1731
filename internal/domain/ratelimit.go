package domain

import (
	"time"
)

// RateLimitInfo represents rate limiting information for one client
type RateLimitInfo struct {
	Limit        int64         `json:"limit"`
	RequestCount int64         `json:"request_count"`
	Remaining    int64         `json:"remaining"`
	ResetIn      time.Duration `json:"reset_in"`
	IsAllowed    bool          `json:"is_allowed"`
}
