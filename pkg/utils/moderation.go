package utils

import "strings"

// BlockedContentMessage is returned when a post trips the keyword filter.
const BlockedContentMessage = "This post cannot be published. Please avoid content related to self-harm, violence, or illegal activity."

// blockedKeywords are matched as lowercase substrings.
var blockedKeywords = []string{
	"suicide",
	"self-harm",
	"kill myself",
	"hurt myself",
	"murder",
	"bomb",
	"weapon",
	"assault",
	"violence",
	"fraud",
	"steal",
	"drug trafficking",
	"hack account",
	"money laundering",
}

// ContainsBlockedContent reports whether text contains any blocked keyword,
// ignoring case.
func ContainsBlockedContent(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range blockedKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
