package core

import (
	"math"
	"time"
)

// ThreatLevel is the three-band classification derived from a risk score
type ThreatLevel string

const (
	ThreatLow    ThreatLevel = "Low"
	ThreatMedium ThreatLevel = "Medium"
	ThreatHigh   ThreatLevel = "High"
)

// Score band lower bounds, inclusive
const (
	MediumThreshold = 40
	HighThreshold   = 70
)

// PageContent is what the extractor reads from the active page
type PageContent struct {
	Text  string `json:"text"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ScanResult represents the outcome of scoring a page
type ScanResult struct {
	RiskScore   int         `json:"risk_score"`
	ThreatLevel ThreatLevel `json:"threat_level"`
	Warning     string      `json:"warning"`
	URL         string      `json:"url"`
	Title       string      `json:"title"`
	Timestamp   time.Time   `json:"timestamp"`
	Reasons     []string    `json:"reasons,omitempty"`
	Source      string      `json:"source,omitempty"`
	ScanID      string      `json:"scan_id,omitempty"`
}

// AutoScanState is the persisted auto-scan toggle
type AutoScanState struct {
	Enabled bool
}

// ClampScore bounds a raw score to [0, 100]
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ClampFloatScore rounds and bounds a score reported as a float. Bounding
// happens before the int conversion so out-of-range values cannot wrap.
func ClampFloatScore(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	return int(math.Max(0, math.Min(100, math.Round(score))))
}

// ThreatLevelFor maps a clamped score to its band
func ThreatLevelFor(score int) ThreatLevel {
	switch {
	case score >= HighThreshold:
		return ThreatHigh
	case score >= MediumThreshold:
		return ThreatMedium
	default:
		return ThreatLow
	}
}

// WarningFor returns the user-facing warning for a threat level
func WarningFor(level ThreatLevel) string {
	switch level {
	case ThreatHigh:
		return "⚠️ High phishing risk detected."
	case ThreatMedium:
		return "⚠️ Suspicious page. Be careful."
	default:
		return "✓ Page appears safe."
	}
}

// Valid reports whether the level is one of the known bands
func (l ThreatLevel) Valid() bool {
	return l == ThreatLow || l == ThreatMedium || l == ThreatHigh
}
