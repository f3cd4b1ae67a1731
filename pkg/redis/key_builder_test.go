package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilder_Environment_Prefixes(t *testing.T) {
	tests := []struct {
		name           string
		environment    string
		expectedPrefix string
	}{
		{"Production environment should use prod prefix", "production", "prod"},
		{"Development environment should use staging prefix", "development", "staging"},
		{"Staging environment should use staging prefix", "staging", "staging"},
		{"Unknown environment should default to prod prefix", "unknown", "prod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedPrefix, NewKeyBuilder(tt.environment).GetPrefix())
		})
	}
}

func TestKeyBuilder_KeyGeneration(t *testing.T) {
	kb := NewKeyBuilder("production")

	assert.Equal(t, "prod:decisions:sidebar", kb.KeySidebar())
	assert.Equal(t, "prod:ratelimit:write:0a1b2c", kb.KeyRateLimit("write", "0a1b2c"))
	assert.Equal(t, "prod:anything", kb.BuildKey("anything"))

	staging := NewKeyBuilder("development")
	assert.Equal(t, "staging:decisions:sidebar", staging.KeySidebar())
}
