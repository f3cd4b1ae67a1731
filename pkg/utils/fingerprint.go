package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	// UnknownIP stands in for a request that carries no forwarded-for address.
	UnknownIP = "unknown-ip"
	// UnknownUserAgent stands in for a request without a User-Agent header.
	UnknownUserAgent = "unknown-ua"
	// MaxUserAgentLength bounds the diagnostic user agent stored with a vote.
	MaxUserAgentLength = 300
)

// Fingerprint derives the per-decision voter identifier.
//
// The result is the hex SHA-256 of "decisionID|clientIP|userAgent|salt". It is
// deterministic for fixed inputs, differs across decisions for the same
// browser, and cannot be reversed to the IP without the salt.
func Fingerprint(decisionID, clientIP, userAgent, salt string) string {
	sum := sha256.Sum256([]byte(decisionID + "|" + clientIP + "|" + userAgent + "|" + salt))
	return hex.EncodeToString(sum[:])
}

// ClientIP returns the left-most X-Forwarded-For entry, or UnknownIP.
// The header is client controlled; dedup built on it is best effort only.
func ClientIP(forwardedFor string) string {
	first, _, _ := strings.Cut(forwardedFor, ",")
	if ip := strings.TrimSpace(first); ip != "" {
		return ip
	}
	return UnknownIP
}

// UserAgent returns the raw header value, or UnknownUserAgent when absent.
func UserAgent(raw string) string {
	if raw == "" {
		return UnknownUserAgent
	}
	return raw
}

// TruncateUserAgent cuts ua to MaxUserAgentLength characters.
func TruncateUserAgent(ua string) string {
	return TruncateRunes(ua, MaxUserAgentLength)
}

// TruncateRunes cuts s to at most n characters without splitting a rune.
func TruncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// ShortHash returns the first 16 hex characters of sha256(value|salt).
// Used for rate-limit keys and log fields where the raw value must not appear.
func ShortHash(value, salt string) string {
	sum := sha256.Sum256([]byte(value + "|" + salt))
	return hex.EncodeToString(sum[:])[:16]
}
