package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/config"
	"github.com/mikey/lateral-phish-detector/internal/core"
	"github.com/mikey/lateral-phish-detector/internal/di"
	"github.com/mikey/lateral-phish-detector/internal/factory"
	"github.com/mikey/lateral-phish-detector/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	cfg *config.Config,
	logger *zap.Logger,
	loader *core.SnapshotLoader,
	snapshots *core.SnapshotHandle,
	sources *factory.SourceFactory,
	filters []ports.EmailFilter,
) error {
	defer logger.Sync()
	defer func() {
		if err := sources.Close(); err != nil {
			logger.Error("Failed to close corpus database", zap.Error(err))
		}
	}()

	server := cfg.GetServer()

	// Nothing is served until the first snapshot is built
	ctx, cancel := context.WithTimeout(context.Background(), server.ReloadTimeout)
	err := loader.Reload(ctx, snapshots)
	cancel()
	if err != nil {
		logger.Error("Failed to load indexes", zap.Error(err))
		return err
	}

	for i, emailFilter := range filters {
		if err := emailFilter.Start(); err != nil {
			logger.Error("Failed to start filter", zap.Error(err))
			stopFilters(logger, filters[:i])
			return err
		}
	}

	logger.Info("Lateral phishing detector ready",
		zap.Strings("filters", server.Filters),
		zap.Float64("threshold", cfg.GetScoring().Threshold))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigCh {
		if sig != syscall.SIGHUP {
			break
		}

		logger.Info("Reloading indexes")
		ctx, cancel := context.WithTimeout(context.Background(), server.ReloadTimeout)
		if err := loader.Reload(ctx, snapshots); err != nil {
			logger.Error("Reload failed, keeping previous indexes", zap.Error(err))
		}
		cancel()
	}

	logger.Info("Shutting down...")
	stopFilters(logger, filters)
	logger.Info("Shutdown complete")
	return nil
}

func stopFilters(logger *zap.Logger, filters []ports.EmailFilter) {
	for _, emailFilter := range filters {
		if err := emailFilter.Stop(); err != nil {
			logger.Error("Failed to stop filter", zap.Error(err))
		}
	}
}
