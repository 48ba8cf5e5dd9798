package factory

import (
	"github.com/mikey/phish-scanner/internal/adapters/browser"
	"github.com/mikey/phish-scanner/internal/config"
	"go.uber.org/zap"
)

// ExtractorFactory creates page content extractors
type ExtractorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewExtractorFactory creates a new extractor factory
func NewExtractorFactory(cfg *config.Config, logger *zap.Logger) *ExtractorFactory {
	return &ExtractorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateExtractor creates a go-rod backed extractor
func (f *ExtractorFactory) CreateExtractor() *browser.Extractor {
	browserCfg := f.cfg.GetBrowser()
	return browser.NewExtractor(browser.Config{
		ControlURL: browserCfg.ControlURL,
		Headless:   browserCfg.Headless,
		Timeout:    browserCfg.Timeout,
	}, f.logger)
}
