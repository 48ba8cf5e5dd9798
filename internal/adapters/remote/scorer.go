package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mikey/phish-scanner/internal/core"
	"go.uber.org/zap"
)

const (
	// SourceRemote identifies results produced by the scoring service
	SourceRemote = "remote"

	maxResponseBytes = 1 << 20
)

// Scorer delegates scoring to an HTTP analysis endpoint
type Scorer struct {
	client   *http.Client
	endpoint string
	logger   *zap.Logger
	now      func() time.Time
}

// analyzeResponse is the subset of the service reply we merge into a result
type analyzeResponse struct {
	RiskScore   *float64 `json:"risk_score"`
	ThreatLevel string   `json:"threat_level"`
	Warning     string   `json:"warning"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Reasons     []string `json:"reasons"`
}

// NewScorer creates a new remote scorer
func NewScorer(endpoint string, timeout time.Duration, logger *zap.Logger) *Scorer {
	return NewScorerWithClient(endpoint, &http.Client{Timeout: timeout}, logger)
}

// NewScorerWithClient creates a remote scorer around an existing HTTP client
func NewScorerWithClient(endpoint string, client *http.Client, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Scorer{
		client:   client,
		endpoint: endpoint,
		logger:   logger,
		now:      time.Now,
	}
}

// Score posts the page content and converts the reply. Every failure is
// reported as a *core.RemoteScoringError so the caller can fall back.
func (s *Scorer) Score(ctx context.Context, content *core.PageContent) (*core.ScanResult, error) {
	body, err := json.Marshal(content)
	if err != nil {
		return nil, s.fail(0, fmt.Errorf("failed to encode page content: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, s.fail(0, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, s.fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, s.fail(resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var reply analyzeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&reply); err != nil {
		return nil, s.fail(resp.StatusCode, fmt.Errorf("malformed response: %w", err))
	}
	if reply.RiskScore == nil {
		return nil, s.fail(resp.StatusCode, fmt.Errorf("malformed response: missing risk_score"))
	}

	return s.toResult(content, &reply), nil
}

// toResult normalizes the reply: the score is clamped, the threat level is
// always derived from it and the timestamp is always ours
func (s *Scorer) toResult(content *core.PageContent, reply *analyzeResponse) *core.ScanResult {
	score := core.ClampFloatScore(*reply.RiskScore)
	level := core.ThreatLevelFor(score)

	if reply.ThreatLevel != "" && core.ThreatLevel(reply.ThreatLevel) != level {
		s.logger.Debug("Remote threat level disagrees with score, using derived level",
			zap.String("remote_level", reply.ThreatLevel),
			zap.String("derived_level", string(level)),
			zap.Int("risk_score", score))
	}

	result := &core.ScanResult{
		RiskScore:   score,
		ThreatLevel: level,
		Warning:     reply.Warning,
		URL:         reply.URL,
		Title:       reply.Title,
		Timestamp:   s.now(),
		Reasons:     reply.Reasons,
		Source:      SourceRemote,
	}
	if result.Warning == "" {
		result.Warning = core.WarningFor(level)
	}
	if result.URL == "" {
		result.URL = content.URL
	}
	if result.Title == "" {
		result.Title = content.Title
	}
	return result
}

func (s *Scorer) fail(status int, err error) error {
	return &core.RemoteScoringError{
		Endpoint:   s.endpoint,
		StatusCode: status,
		Err:        err,
	}
}
