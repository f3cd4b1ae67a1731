package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	const (
		ip   = "203.0.113.7"
		ua   = "Mozilla/5.0 (X11; Linux x86_64)"
		salt = "test-salt"
	)

	t.Run("deterministic", func(t *testing.T) {
		first := Fingerprint("d1", ip, ua, salt)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, Fingerprint("d1", ip, ua, salt))
		}
	})

	t.Run("scoped per decision", func(t *testing.T) {
		assert.NotEqual(t, Fingerprint("d1", ip, ua, salt), Fingerprint("d2", ip, ua, salt))
	})

	t.Run("salt changes output", func(t *testing.T) {
		assert.NotEqual(t, Fingerprint("d1", ip, ua, salt), Fingerprint("d1", ip, ua, "other"))
	})

	t.Run("fixed length hex without raw ip", func(t *testing.T) {
		fp := Fingerprint("d1", ip, ua, salt)
		assert.Len(t, fp, 64)
		_, err := hex.DecodeString(fp)
		assert.NoError(t, err)
		assert.NotContains(t, fp, ip)
	})

	t.Run("matches pipe joined sha256", func(t *testing.T) {
		sum := sha256.Sum256([]byte("d1|" + ip + "|" + ua + "|" + salt))
		assert.Equal(t, hex.EncodeToString(sum[:]), Fingerprint("d1", ip, ua, salt))
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected string
	}{
		{"single address", "198.51.100.4", "198.51.100.4"},
		{"proxy chain takes left-most", "198.51.100.4, 10.0.0.1, 10.0.0.2", "198.51.100.4"},
		{"surrounding spaces", "   198.51.100.4  ,10.0.0.1", "198.51.100.4"},
		{"ipv6", "2001:db8::1", "2001:db8::1"},
		{"missing header", "", UnknownIP},
		{"empty first token", " ,10.0.0.1", UnknownIP},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClientIP(tt.header))
		})
	}
}

func TestUserAgent(t *testing.T) {
	assert.Equal(t, UnknownUserAgent, UserAgent(""))
	assert.Equal(t, "curl/8.0", UserAgent("curl/8.0"))
}

func TestTruncateUserAgent(t *testing.T) {
	short := "curl/8.0"
	assert.Equal(t, short, TruncateUserAgent(short))

	long := strings.Repeat("a", 450)
	assert.Len(t, TruncateUserAgent(long), MaxUserAgentLength)

	multi := strings.Repeat("é", 301)
	got := TruncateUserAgent(multi)
	assert.Equal(t, MaxUserAgentLength, len([]rune(got)))
}

func TestShortHash(t *testing.T) {
	h := ShortHash("198.51.100.4", "salt")
	assert.Len(t, h, 16)
	assert.Equal(t, h, ShortHash("198.51.100.4", "salt"))
	assert.NotEqual(t, h, ShortHash("198.51.100.5", "salt"))
}
