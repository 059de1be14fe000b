package factory

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/adapters/corpus"
	"github.com/mikey/lateral-phish-detector/internal/adapters/model"
	"github.com/mikey/lateral-phish-detector/internal/adapters/reputation"
	"github.com/mikey/lateral-phish-detector/internal/config"
	"github.com/mikey/lateral-phish-detector/internal/core"
	"github.com/mikey/lateral-phish-detector/internal/features"
)

// SourceFactory creates the corpus, reputation and model sources a snapshot
// is built from. Database connections it opens are released by Close.
type SourceFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	closers []io.Closer
}

// NewSourceFactory creates a new source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCorpusSource creates the corpus source selected by corpus.type
func (f *SourceFactory) CreateCorpusSource() (core.CorpusSource, error) {
	cfg := f.cfg.GetCorpus()

	var (
		source *corpus.SQLSource
		err    error
	)

	switch cfg.Type {
	case "csv":
		return corpus.NewCSVSource(cfg.CSVPath, f.logger), nil
	case "sqlite":
		source, err = corpus.NewSQLiteSource(cfg.SQLitePath, cfg.Table, f.logger)
	case "mysql":
		source, err = corpus.NewMySQLSource(cfg.MySQLDSN, cfg.Table, f.logger)
	case "postgres":
		source, err = corpus.NewPostgresSource(cfg.PostgresDSN, cfg.Table, f.logger)
	default:
		return nil, fmt.Errorf("unsupported corpus type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	f.closers = append(f.closers, source)
	return source, nil
}

// CreateReputationSource creates the reputation table source
func (f *SourceFactory) CreateReputationSource() core.ReputationSource {
	return reputation.NewCSVSource(f.cfg.GetReputation().Path, f.logger)
}

// CreateModelLoader creates the model artifact loader
func (f *SourceFactory) CreateModelLoader() core.ModelLoader {
	return model.NewFileLoader(f.cfg.GetModel().Path, f.logger)
}

// CreateKeywordMatcher creates the phishy keyword matcher. An empty
// configured list selects the built-in phrases.
func (f *SourceFactory) CreateKeywordMatcher() *features.KeywordMatcher {
	keywords := f.cfg.GetFeatures().PhishyKeywords
	if len(keywords) > 0 {
		f.logger.Info("Using configured phishy keywords", zap.Int("count", len(keywords)))
	}
	return features.NewKeywordMatcher(keywords)
}

// CreateSnapshotLoader wires every source into a snapshot loader
func (f *SourceFactory) CreateSnapshotLoader() (*core.SnapshotLoader, error) {
	corpusSource, err := f.CreateCorpusSource()
	if err != nil {
		return nil, fmt.Errorf("failed to create corpus source: %w", err)
	}

	cfg := f.cfg.GetReputation()
	return core.NewSnapshotLoader(
		corpusSource,
		f.CreateReputationSource(),
		f.CreateModelLoader(),
		f.CreateKeywordMatcher(),
		f.logger,
		features.WithDefaultRank(cfg.DefaultRank),
		features.WithRegistrableFallback(cfg.RegistrableFallback),
	), nil
}

// Close releases every database connection opened by the factory
func (f *SourceFactory) Close() error {
	var errs []error
	for _, closer := range f.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}
