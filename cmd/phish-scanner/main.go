package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/phish-scanner/internal/adapters/browser"
	"github.com/mikey/phish-scanner/internal/config"
	"github.com/mikey/phish-scanner/internal/core"
	"github.com/mikey/phish-scanner/internal/di"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "", "Path to config file")
	autoScan   = flag.String("auto-scan", "", "Set auto-scan on or off before starting (default: keep stored state)")
	scanOnce   = flag.Bool("scan-once", false, "Run a single scan and exit")
)

func main() {
	flag.Parse()

	cfgProvider := config.New
	if *configFile != "" {
		cfgProvider = func() (*config.Config, error) {
			return config.NewFromFile(*configFile)
		}
	}

	// Build the dependency injection container
	container, err := di.BuildContainer(cfgProvider)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	service *core.ScanService,
	extractor *browser.Extractor,
	store *core.SafeStore,
	scorer core.Scorer,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Teardown always cancels the timer and releases the browser
	defer func() {
		service.Close()
		store.Close()
		if err := extractor.Close(); err != nil {
			logger.Error("Failed to close browser connection", zap.Error(err))
		}
		if closer, ok := scorer.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close scorer", zap.Error(err))
			}
		}
		logger.Info("Shutdown complete")
	}()

	if !store.Available() {
		logger.Warn("Running without persistent storage")
	}

	if *scanOnce {
		_, err := service.TriggerScan(ctx)
		if errors.Is(err, core.ErrNoActiveTab) {
			return fmt.Errorf("nothing to scan: %w", err)
		}
		return err
	}

	if err := service.Initialize(ctx); err != nil {
		return err
	}

	if err := applyAutoScanFlag(ctx, service, *autoScan); err != nil {
		return err
	}

	if !service.AutoScanActive() {
		if _, err := service.TriggerScan(ctx); err != nil {
			logger.Warn("Initial scan failed", zap.Error(err))
		}
	}

	logger.Info("Scanner running, press Ctrl+C to stop", zap.Bool("auto_scan", service.AutoScanActive()))
	<-ctx.Done()
	logger.Info("Shutting down...")

	return nil
}

// applyAutoScanFlag toggles auto-scan only when the flag differs from the
// restored state, so an already running loop is not restarted
func applyAutoScanFlag(ctx context.Context, service autoScanToggler, value string) error {
	var want bool
	switch value {
	case "":
		return nil
	case "on":
		want = true
	case "off":
		want = false
	default:
		return fmt.Errorf("invalid -auto-scan value %q (want on or off)", value)
	}

	if service.AutoScanActive() == want {
		return nil
	}
	service.ToggleAutoScan(ctx, want)
	return nil
}

type autoScanToggler interface {
	AutoScanActive() bool
	ToggleAutoScan(ctx context.Context, enabled bool)
}
