package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/phish-scanner/internal/adapters/llm"
	"github.com/mikey/phish-scanner/internal/core"
	"github.com/mikey/phish-scanner/internal/utils"
	"go.uber.org/zap"
)

// invoker is the part of the Bedrock runtime client the scorer uses
type invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Scorer is an implementation of the Scorer interface using Amazon Bedrock
type Scorer struct {
	client        invoker
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	now           func() time.Time
}

// NewScorer creates a new Bedrock scorer
func NewScorer(
	client invoker,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Scorer {
	return &Scorer{
		client:        client,
		modelID:       modelID,
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

	payload, err := s.requestBody(prompt)
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to marshal request payload: %w", err))
	}

	resp, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(s.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, s.fail(fmt.Errorf("failed to invoke Bedrock model: %w", err))
	}

	reply, err := s.responseText(resp.Body)
	if err != nil {
		return nil, s.fail(err)
	}

	result, err := llm.ParseResult(reply, content, s.modelID, s.now())
	if err != nil {
		return nil, s.fail(err)
	}

	s.logger.Debug("Bedrock scored page",
		zap.String("url", content.URL),
		zap.Int("risk_score", result.RiskScore))

	return result, nil
}

// requestBody builds the model-family specific payload
func (s *Scorer) requestBody(prompt string) ([]byte, error) {
	switch {
	case s.isAnthropicModel():
		return json.Marshal(map[string]interface{}{
			"prompt":               "\n\nHuman: " + prompt + "\n\nAssistant:",
			"max_tokens_to_sample": s.maxTokens,
			"temperature":          s.temperature,
			"top_p":                s.topP,
		})
	case s.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": s.maxTokens,
				"temperature":   s.temperature,
				"topP":          s.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  s.maxTokens,
			"temperature": s.temperature,
			"top_p":       s.topP,
		})
	}
}

// responseText pulls the generated text out of the model-family specific reply
func (s *Scorer) responseText(body []byte) (string, error) {
	switch {
	case s.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	case s.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		for _, candidate := range []string{genericResp.Output, genericResp.Text, genericResp.Response} {
			if candidate != "" {
				return candidate, nil
			}
		}
		return string(body), nil
	}
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (s *Scorer) isAnthropicModel() bool {
	return strings.HasPrefix(s.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (s *Scorer) isAmazonTitanModel() bool {
	return strings.HasPrefix(s.modelID, "amazon.titan")
}

func (s *Scorer) fail(err error) error {
	return &core.RemoteScoringError{Endpoint: "bedrock/" + s.modelID, Err: err}
}
