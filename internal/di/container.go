package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/config"
	"github.com/mikey/lateral-phish-detector/internal/core"
	"github.com/mikey/lateral-phish-detector/internal/factory"
	"github.com/mikey/lateral-phish-detector/internal/logging"
	"github.com/mikey/lateral-phish-detector/internal/ports"
	"github.com/mikey/lateral-phish-detector/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideScoring(container); err != nil {
		return nil, err
	}

	// Register email filters
	if err := container.Provide(func(f *factory.FilterFactory) ([]ports.EmailFilter, error) {
		return f.CreateEmailFilters()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideScoring registers the factories, the snapshot loader and handle and
// the scoring service. It expects *config.Config and *zap.Logger to be provided.
func provideScoring(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewSourceFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register snapshot loader and the handle requests read from
	if err := container.Provide(func(f *factory.SourceFactory) (*core.SnapshotLoader, error) {
		return f.CreateSnapshotLoader()
	}); err != nil {
		return err
	}
	if err := container.Provide(core.NewSnapshotHandle); err != nil {
		return err
	}

	// Register lateral phishing service
	if err := container.Provide(func(
		snapshots *core.SnapshotHandle,
		logger *zap.Logger,
		textProcessor *utils.TextProcessor,
		cfg *config.Config,
	) *core.LateralPhishService {
		scoring := cfg.GetScoring()
		return core.NewLateralPhishService(snapshots, logger, textProcessor, scoring.Threshold, scoring.RequireDomain)
	}); err != nil {
		return err
	}

	return nil
}
