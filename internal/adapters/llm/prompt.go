// Package llm holds what the language model scorers share: the prompt and
// the conversion of a model reply into a scan result.
package llm

import (
	"fmt"
	"time"

	"github.com/mikey/phish-scanner/internal/core"
	"github.com/mikey/phish-scanner/internal/utils"
)

// SystemPrompt is sent as the system role where the provider supports one
const SystemPrompt = "You are a phishing detection system. Respond only with JSON."

const promptFormat = `You are a phishing detection system. Analyze the following web page and determine how likely it is to be a phishing page.
Respond with a JSON object containing:
- risk_score: integer between 0 and 100 (higher means more likely to be phishing)
- reasons: array of short strings explaining the indicators you found
- warning: string (one sentence for the user)

Page:
URL: %s
Title: %s
Visible text:
%s

Respond only with the JSON object and nothing else.`

// Response represents the structured reply expected from the model
type Response struct {
	RiskScore float64  `json:"risk_score"`
	Reasons   []string `json:"reasons"`
	Warning   string   `json:"warning"`
}

// BuildPrompt formats the user prompt for content. text is the already
// processed page text.
func BuildPrompt(content *core.PageContent, text string) string {
	return fmt.Sprintf(promptFormat, content.URL, content.Title, text)
}

// ParseResult decodes a model reply and converts it to a scan result
func ParseResult(reply string, content *core.PageContent, model string, now time.Time) (*core.ScanResult, error) {
	var resp Response
	if err := utils.DecodeJSONObject(reply, &resp); err != nil {
		return nil, err
	}

	score := core.ClampFloatScore(resp.RiskScore)
	level := core.ThreatLevelFor(score)
	warning := resp.Warning
	if warning == "" {
		warning = core.WarningFor(level)
	}

	return &core.ScanResult{
		RiskScore:   score,
		ThreatLevel: level,
		Warning:     warning,
		URL:         content.URL,
		Title:       content.Title,
		Timestamp:   now,
		Reasons:     resp.Reasons,
		Source:      "llm:" + model,
	}, nil
}
