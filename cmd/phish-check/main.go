package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mikey/phish-scanner/internal/core"
	"github.com/mikey/phish-scanner/internal/di"
	"go.uber.org/zap"
)

var errHighRisk = errors.New("high phishing risk")

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags, os.Stdin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		if errors.Is(err, errHighRisk) {
			os.Exit(3)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run scores the supplied page once and exits non-zero for high risk pages
func run(logger *zap.Logger, flags *di.CLIFlags, service *core.ScanService, store *core.SafeStore, scorer core.Scorer) error {
	defer logger.Sync()
	defer store.Close()
	defer service.Close()
	defer func() {
		if closer, ok := scorer.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close scorer", zap.Error(err))
			}
		}
	}()

	if flags.URL == "" {
		logger.Warn("No -url given, URL heuristics will not fire")
	}

	startTime := time.Now()
	result, err := service.TriggerScan(context.Background())
	if err != nil {
		return err
	}
	logger.Debug("Check finished",
		zap.Duration("processing_time", time.Since(startTime)),
		zap.String("source", result.Source))

	if result.ThreatLevel == core.ThreatHigh {
		return errHighRisk
	}
	return nil
}
