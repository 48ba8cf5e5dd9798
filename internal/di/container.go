package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phish-scanner/internal/adapters/browser"
	"github.com/mikey/phish-scanner/internal/allowlist"
	"github.com/mikey/phish-scanner/internal/config"
	"github.com/mikey/phish-scanner/internal/core"
	"github.com/mikey/phish-scanner/internal/factory"
	"github.com/mikey/phish-scanner/internal/logging"
	"github.com/mikey/phish-scanner/internal/utils"
)

// BuildContainer creates and configures the container for a scan session
func BuildContainer(cfgProvider func() (*config.Config, error)) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if cfgProvider == nil {
		cfgProvider = config.New
	}
	if err := container.Provide(cfgProvider); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideShared(container); err != nil {
		return nil, err
	}

	if err := container.Provide(factory.NewExtractorFactory); err != nil {
		return nil, err
	}

	// Register page extractor
	if err := container.Provide(func(f *factory.ExtractorFactory) *browser.Extractor {
		return f.CreateExtractor()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(e *browser.Extractor) core.ContentExtractor {
		return e
	}); err != nil {
		return nil, err
	}

	// Register scan service
	if err := container.Provide(newScanService); err != nil {
		return nil, err
	}

	return container, nil
}

// provideShared registers everything both binaries use once config and
// logger exist
func provideShared(container *dig.Container) error {
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}
	if err := container.Provide(core.NewRiskEngine); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewScorerFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewPresenterFactory); err != nil {
		return err
	}

	// Register scorer
	if err := container.Provide(func(f *factory.ScorerFactory) (core.Scorer, error) {
		return f.CreateScorer()
	}); err != nil {
		return err
	}

	// Register storage
	if err := container.Provide(func(f *factory.StoreFactory) *core.SafeStore {
		return f.CreateSafeStore()
	}); err != nil {
		return err
	}

	// Register presenter
	if err := container.Provide(func(f *factory.PresenterFactory) (core.Presenter, error) {
		return f.CreatePresenter()
	}); err != nil {
		return err
	}

	// Register trusted domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.TrustChecker {
		return allowlist.NewChecker(cfg.GetScoring().TrustedDomains, logger)
	}); err != nil {
		return err
	}

	return nil
}

func newScanService(
	cfg *config.Config,
	extractor core.ContentExtractor,
	scorer core.Scorer,
	engine *core.RiskEngine,
	store *core.SafeStore,
	presenter core.Presenter,
	trusted core.TrustChecker,
	logger *zap.Logger,
) *core.ScanService {
	return core.NewScanService(
		extractor,
		scorer,
		engine,
		store,
		presenter,
		trusted,
		logger,
		cfg.GetScanner().AutoScanInterval,
	)
}
