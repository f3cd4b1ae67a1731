package service

import (
	"time"
)

// Clock returns the current time. Services take one so expiry can be tested.
type Clock func() time.Time

// SystemClock is the wall clock in UTC, truncated to the microsecond
// precision every store keeps.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Services aggregates the application services
type Services struct {
	Decisions   *DecisionService
	Voting      *VotingService
	RateLimiter *RateLimiter
	Cache       *CacheService
}
