package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/phish-scanner/internal/adapters/llm"
	"github.com/mikey/phish-scanner/internal/core"
	"github.com/mikey/phish-scanner/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Scorer is an implementation of the Scorer interface using Google Gemini
type Scorer struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	now           func() time.Time
}

// NewScorer creates a new Gemini scorer
func NewScorer(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Scorer, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(llm.SystemPrompt))

	return &Scorer{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		now:           time.Now,
	}, nil
}

// Close closes the Gemini client
func (s *Scorer) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Score asks the model to rate the page
func (s *Scorer) Score(ctx context.Context, content *core.PageContent) (*core.ScanResult, error) {
	text := s.textProcessor.ProcessText(content.Text, s.maxBodySize)
	prompt := llm.BuildPrompt(content, text)

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to generate content with Gemini: %w", err))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, s.fail(fmt.Errorf("empty response from Gemini"))
	}

	var reply strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			reply.WriteString(string(t))
		}
	}

	result, err := llm.ParseResult(reply.String(), content, s.modelName, s.now())
	if err != nil {
		return nil, s.fail(err)
	}

	s.logger.Debug("Gemini scored page",
		zap.String("url", content.URL),
		zap.Int("risk_score", result.RiskScore))

	return result, nil
}

func (s *Scorer) fail(err error) error {
	return &core.RemoteScoringError{Endpoint: "gemini/" + s.modelName, Err: err}
}
