package factory

import (
	"fmt"

	"github.com/mikey/phish-scanner/internal/adapters/bedrock"
	"github.com/mikey/phish-scanner/internal/adapters/gemini"
	"github.com/mikey/phish-scanner/internal/adapters/openai"
	"github.com/mikey/phish-scanner/internal/adapters/remote"
	"github.com/mikey/phish-scanner/internal/config"
	"github.com/mikey/phish-scanner/internal/core"
	"github.com/mikey/phish-scanner/internal/utils"
	"go.uber.org/zap"
)

// ScorerFactory creates the configured scoring strategy
type ScorerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	engine        *core.RiskEngine
}

// NewScorerFactory creates a new scorer factory
func NewScorerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor, engine *core.RiskEngine) *ScorerFactory {
	return &ScorerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		engine:        engine,
	}
}

// CreateScorer creates a scorer based on the configuration
func (f *ScorerFactory) CreateScorer() (core.Scorer, error) {
	scoring := f.cfg.GetScoring()

	switch scoring.Strategy {
	case config.StrategyHeuristic:
		return f.engine, nil
	case config.StrategyRemote:
		scanner := f.cfg.GetScanner()
		if scanner.AnalyzeEndpoint == "" {
			return nil, fmt.Errorf("remote scoring requires scanner.analyze_endpoint")
		}
		f.logger.Info("Using remote scoring service", zap.String("endpoint", scanner.AnalyzeEndpoint))
		return remote.NewScorer(scanner.AnalyzeEndpoint, scanner.RequestTimeout, f.logger), nil
	case config.StrategyLLM:
		return f.createLLMScorer()
	default:
		return nil, fmt.Errorf("unsupported scoring strategy: %s", scoring.Strategy)
	}
}

func (f *ScorerFactory) createLLMScorer() (core.Scorer, error) {
	provider := f.cfg.GetLLM().Provider
	f.logger.Info("Using LLM scoring", zap.String("provider", provider))

	switch provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateScorer()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateScorer()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateScorer()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
