package core

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	phraseWeight   = 15
	ipHostWeight   = 25
	loginURLWeight = 10

	// SourceHeuristic identifies results produced by the RiskEngine
	SourceHeuristic = "heuristic"
)

// SuspiciousPhrases are matched case-insensitively against page text
var SuspiciousPhrases = []string{
	"verify your account",
	"confirm identity",
	"urgent action required",
	"click here immediately",
	"reset password",
	"update payment",
	"unusual activity",
	"claim reward",
}

var dottedQuadPattern = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)

// RiskEngine is the local rule-based scorer. It performs no I/O.
type RiskEngine struct {
	now func() time.Time
}

// NewRiskEngine creates a risk engine using the wall clock
func NewRiskEngine() *RiskEngine {
	return &RiskEngine{now: time.Now}
}

// NewRiskEngineWithClock creates a risk engine with a fixed time source
func NewRiskEngineWithClock(now func() time.Time) *RiskEngine {
	return &RiskEngine{now: now}
}

// Score implements Scorer. It never fails.
func (e *RiskEngine) Score(_ context.Context, content *PageContent) (*ScanResult, error) {
	return e.Assess(content), nil
}

// Assess scores the content against the fixed heuristics
func (e *RiskEngine) Assess(content *PageContent) *ScanResult {
	score := 0
	var reasons []string

	lowerText := strings.ToLower(content.Text)
	lowerURL := strings.ToLower(content.URL)

	for _, phrase := range SuspiciousPhrases {
		if strings.Contains(lowerText, phrase) {
			score += phraseWeight
			reasons = append(reasons, fmt.Sprintf("Suspicious phrase: %q", phrase))
		}
	}

	if dottedQuadPattern.MatchString(content.URL) {
		score += ipHostWeight
		reasons = append(reasons, "IP address in URL")
	}

	if strings.Contains(lowerURL, "login") || strings.Contains(lowerURL, "signin") {
		score += loginURLWeight
		reasons = append(reasons, "Login keyword in URL")
	}

	score = ClampScore(score)
	level := ThreatLevelFor(score)

	return &ScanResult{
		RiskScore:   score,
		ThreatLevel: level,
		Warning:     WarningFor(level),
		URL:         content.URL,
		Title:       content.Title,
		Timestamp:   e.now(),
		Reasons:     reasons,
		Source:      SourceHeuristic,
	}
}
