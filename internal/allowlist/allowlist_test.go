package allowlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestChecker_IsTrusted(t *testing.T) {
	checker := NewChecker([]string{" Example.com ", "bank.co.uk.", ""}, zap.NewNop())

	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/login", true},
		{"https://EXAMPLE.com", true},
		{"https://accounts.example.com/signin", true},
		{"https://www.bank.co.uk/", true},
		{"https://example.com.evil.net/", false},
		{"https://notexample.com/", false},
		{"http://192.168.1.10/login", false},
		{"not a url", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, checker.IsTrusted(tt.url), tt.url)
	}
}

func TestChecker_EmptyList(t *testing.T) {
	checker := NewChecker(nil, nil)

	assert.False(t, checker.IsTrusted("https://example.com"))
}
