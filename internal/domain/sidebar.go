package domain

import (
	"sort"
	"time"
)

// Sidebar sizing
const (
	SidebarSourceLimit = 200
	SidebarItemLimit   = 5
	TrendingWindow     = 24 * time.Hour
)

// CategoryCount is one trending category row
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// EndedDecision is one recently ended decision row
type EndedDecision struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Winner    Winner    `json:"winner"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Sidebar aggregates shown next to the feed
type Sidebar struct {
	Trending      []CategoryCount `json:"trending"`
	RecentlyEnded []EndedDecision `json:"recently_ended"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// BuildSidebar aggregates recent decisions. Trending counts categories of
// decisions created within TrendingWindow; recently ended lists the latest
// expiries.
func BuildSidebar(decisions []*Decision, now time.Time) *Sidebar {
	counts := make(map[Category]int)
	var ended []*Decision

	for _, d := range decisions {
		if now.Sub(d.CreatedAt) <= TrendingWindow {
			counts[d.Category]++
		}
		if IsEnded(now, d.ExpiresAt) {
			ended = append(ended, d)
		}
	}

	trending := make([]CategoryCount, 0, len(counts))
	for category, count := range counts {
		trending = append(trending, CategoryCount{Category: category, Count: count})
	}
	sort.Slice(trending, func(i, j int) bool {
		if trending[i].Count != trending[j].Count {
			return trending[i].Count > trending[j].Count
		}
		return trending[i].Category < trending[j].Category
	})
	if len(trending) > SidebarItemLimit {
		trending = trending[:SidebarItemLimit]
	}

	sort.SliceStable(ended, func(i, j int) bool {
		return ended[i].ExpiresAt.After(ended[j].ExpiresAt)
	})
	if len(ended) > SidebarItemLimit {
		ended = ended[:SidebarItemLimit]
	}

	recent := make([]EndedDecision, 0, len(ended))
	for _, d := range ended {
		recent = append(recent, EndedDecision{
			ID:        d.ID,
			Title:     d.Title,
			Winner:    d.Outcome(now).Winner,
			ExpiresAt: d.ExpiresAt,
		})
	}

	return &Sidebar{
		Trending:      trending,
		RecentlyEnded: recent,
		GeneratedAt:   now,
	}
}
