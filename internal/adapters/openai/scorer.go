package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/mikey/phish-scanner/internal/adapters/llm"
	"github.com/mikey/phish-scanner/internal/core"
	"github.com/mikey/phish-scanner/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// chatClient is the part of the OpenAI client the scorer uses
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Scorer is an implementation of the Scorer interface using OpenAI
type Scorer struct {
	client        chatClient
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	now           func() time.Time
}

// NewScorer creates a new OpenAI scorer
func NewScorer(
	client chatClient,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Scorer {
	return &Scorer{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
		now:           time.Now,
	}
}

// Score asks the model to rate the page
func (s *Scorer) Score(ctx context.Context, content *core.PageContent) (*core.ScanResult, error) {
	text := s.textProcessor.ProcessText(content.Text, s.maxBodySize)
	prompt := llm.BuildPrompt(content, text)

	req := openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: llm.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		TopP:        s.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to create chat completion with OpenAI: %w", err))
	}
	if len(resp.Choices) == 0 {
		return nil, s.fail(fmt.Errorf("empty response from OpenAI"))
	}

	result, err := llm.ParseResult(resp.Choices[0].Message.Content, content, s.modelName, s.now())
	if err != nil {
		return nil, s.fail(err)
	}

	s.logger.Debug("OpenAI scored page",
		zap.String("url", content.URL),
		zap.String("completion_id", resp.ID),
		zap.Int("risk_score", result.RiskScore))

	return result, nil
}

func (s *Scorer) fail(err error) error {
	return &core.RemoteScoringError{Endpoint: "openai/" + s.modelName, Err: err}
}
