package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTextProcessor_TruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 100))
	assert.Equal(t, "unbounded", tp.TruncateText("unbounded", 0))

	out := tp.TruncateText("abcdefghij", 4)
	assert.Equal(t, "abcd"+truncationMarker, out)

	// "é" is two bytes; cutting inside it must not leave invalid UTF-8
	out = tp.TruncateText("aéé", 2)
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasPrefix(out, "a"+truncationMarker))
}

func TestTextProcessor_NormalizeText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	in := "  Sign in  \n\n\n   \nVerify your account\xff\n"
	assert.Equal(t, "Sign in\nVerify your account", tp.NormalizeText(in))

	// decomposed e + combining acute becomes the composed rune
	assert.Equal(t, "caf\u00e9", tp.NormalizeText("cafe\u0301"))
}

func TestTextProcessor_ProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	out := tp.ProcessText("line one\n\n\nline two", 8)
	assert.Equal(t, "line one"+truncationMarker, out)
}

func TestDecodeJSONObject(t *testing.T) {
	var v struct {
		RiskScore int `json:"risk_score"`
	}

	require.NoError(t, DecodeJSONObject(`{"risk_score": 42}`, &v))
	assert.Equal(t, 42, v.RiskScore)

	require.NoError(t, DecodeJSONObject("Here you go:\n```json\n{\"risk_score\": 77}\n```", &v))
	assert.Equal(t, 77, v.RiskScore)

	assert.Error(t, DecodeJSONObject("no json here", &v))
	assert.Error(t, DecodeJSONObject("{broken", &v))
}
