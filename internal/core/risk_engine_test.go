package core

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func TestRiskEngine_Assess(t *testing.T) {
	engine := NewRiskEngineWithClock(fixedClock)

	tests := []struct {
		name        string
		content     PageContent
		wantScore   int
		wantLevel   ThreatLevel
		wantReasons int
	}{
		{
			name:      "clean page",
			content:   PageContent{Text: "Welcome to our blog", URL: "https://example.com/", Title: "Blog"},
			wantScore: 0,
			wantLevel: ThreatLow,
		},
		{
			name: "phrases, ip host and login",
			content: PageContent{
				Text:  "Please VERIFY YOUR ACCOUNT and Update Payment details",
				URL:   "http://192.168.1.10/login",
				Title: "Bank",
			},
			wantScore:   65,
			wantLevel:   ThreatMedium,
			wantReasons: 4,
		},
		{
			name: "worked example from the popup",
			content: PageContent{
				Text: "Verify your account. Reset password.",
				URL:  "http://192.168.1.1/login",
			},
			wantScore:   65,
			wantLevel:   ThreatMedium,
			wantReasons: 4,
		},
		{
			name: "repeated phrase counts once",
			content: PageContent{
				Text: "reset password now. RESET PASSWORD today. Reset Password!",
				URL:  "https://example.com/help",
			},
			wantScore:   15,
			wantLevel:   ThreatLow,
			wantReasons: 1,
		},
		{
			name:        "signin keyword only",
			content:     PageContent{URL: "https://accounts.example.com/SignIn"},
			wantScore:   10,
			wantLevel:   ThreatLow,
			wantReasons: 1,
		},
		{
			name: "all signals clamp to 100",
			content: PageContent{
				Text: strings.Join(SuspiciousPhrases, " "),
				URL:  "http://10.0.0.1/signin",
			},
			wantScore:   100,
			wantLevel:   ThreatHigh,
			wantReasons: 10,
		},
		{
			name:        "ip pattern in text is ignored",
			content:     PageContent{Text: "server 10.0.0.1 is down", URL: "https://status.example.com"},
			wantScore:   0,
			wantLevel:   ThreatLow,
			wantReasons: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Assess(&tt.content)

			assert.Equal(t, tt.wantScore, result.RiskScore)
			assert.Equal(t, tt.wantLevel, result.ThreatLevel)
			assert.Equal(t, WarningFor(tt.wantLevel), result.Warning)
			assert.Equal(t, tt.content.URL, result.URL)
			assert.Equal(t, tt.content.Title, result.Title)
			assert.Equal(t, fixedTime, result.Timestamp)
			assert.Equal(t, SourceHeuristic, result.Source)
			assert.Len(t, result.Reasons, tt.wantReasons)
		})
	}
}

func TestRiskEngine_AssessIsDeterministic(t *testing.T) {
	engine := NewRiskEngineWithClock(fixedClock)
	content := &PageContent{Text: "unusual activity detected, claim reward", URL: "http://1.2.3.4/"}

	first := engine.Assess(content)
	second := engine.Assess(content)

	assert.Equal(t, first, second)
}

func TestRiskEngine_ScoreNeverFails(t *testing.T) {
	engine := NewRiskEngine()

	result, err := engine.Score(context.Background(), &PageContent{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.RiskScore)
	assert.Equal(t, ThreatLow, result.ThreatLevel)
	assert.Equal(t, "✓ Page appears safe.", result.Warning)
	assert.False(t, result.Timestamp.IsZero())
}

func TestThreatLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  ThreatLevel
	}{
		{0, ThreatLow},
		{39, ThreatLow},
		{40, ThreatMedium},
		{69, ThreatMedium},
		{70, ThreatHigh},
		{100, ThreatHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ThreatLevelFor(tt.score), "score %d", tt.score)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 0, ClampScore(0))
	assert.Equal(t, 55, ClampScore(55))
	assert.Equal(t, 100, ClampScore(100))
	assert.Equal(t, 100, ClampScore(135))
}

func TestClampFloatScore(t *testing.T) {
	assert.Equal(t, 73, ClampFloatScore(72.6))
	assert.Equal(t, 0, ClampFloatScore(-0.4))
	assert.Equal(t, 0, ClampFloatScore(-1e20))
	assert.Equal(t, 100, ClampFloatScore(100.4))
	assert.Equal(t, 100, ClampFloatScore(1e20))
	assert.Equal(t, 100, ClampFloatScore(math.Inf(1)))
	assert.Equal(t, 0, ClampFloatScore(math.NaN()))
}

func TestWarningFor(t *testing.T) {
	assert.Equal(t, "⚠️ High phishing risk detected.", WarningFor(ThreatHigh))
	assert.Equal(t, "⚠️ Suspicious page. Be careful.", WarningFor(ThreatMedium))
	assert.Equal(t, "✓ Page appears safe.", WarningFor(ThreatLow))
}

func TestThreatLevel_Valid(t *testing.T) {
	assert.True(t, ThreatLow.Valid())
	assert.True(t, ThreatMedium.Valid())
	assert.True(t, ThreatHigh.Valid())
	assert.False(t, ThreatLevel("Critical").Valid())
	assert.False(t, ThreatLevel("").Valid())
}
