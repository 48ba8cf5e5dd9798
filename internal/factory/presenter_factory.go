package factory

import (
	"os"

	"github.com/mikey/phish-scanner/internal/adapters/presenter"
	"github.com/mikey/phish-scanner/internal/config"
	"go.uber.org/zap"
)

// PresenterFactory creates presenters based on configuration
type PresenterFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPresenterFactory creates a new presenter factory
func NewPresenterFactory(cfg *config.Config, logger *zap.Logger) *PresenterFactory {
	return &PresenterFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePresenter creates a console presenter writing to stdout
func (f *PresenterFactory) CreatePresenter() (*presenter.ConsolePresenter, error) {
	return presenter.NewConsolePresenter(
		os.Stdout,
		f.cfg.GetString("output.format"),
		f.cfg.GetBool("output.verbose"),
		f.logger,
	)
}
