package core

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikey/lateral-phish-detector/internal/features"
)

// Snapshot is the read-only state shared by every request: the historical
// indexes, the reputation table and the classifier. It is never mutated once
// published.
type Snapshot struct {
	Builder *features.Builder
	Scorer  Scorer
	Stats   features.IndexStats
	Ranked  int
	BuiltAt time.Time
}

// SnapshotHandle publishes the current snapshot to concurrent readers
type SnapshotHandle struct {
	current atomic.Pointer[Snapshot]
}

// NewSnapshotHandle creates an empty handle
func NewSnapshotHandle() *SnapshotHandle {
	return &SnapshotHandle{}
}

// Load returns the current snapshot, or nil before the first Store
func (h *SnapshotHandle) Load() *Snapshot {
	return h.current.Load()
}

// Store replaces the current snapshot
func (h *SnapshotHandle) Store(s *Snapshot) {
	h.current.Store(s)
}

// SnapshotLoader builds snapshots from the configured sources
type SnapshotLoader struct {
	corpus         CorpusSource
	reputation     ReputationSource
	models         ModelLoader
	keywords       *features.KeywordMatcher
	reputationOpts []features.ReputationOption
	logger         *zap.Logger
}

// NewSnapshotLoader creates a new snapshot loader
func NewSnapshotLoader(
	corpus CorpusSource,
	reputation ReputationSource,
	models ModelLoader,
	keywords *features.KeywordMatcher,
	logger *zap.Logger,
	reputationOpts ...features.ReputationOption,
) *SnapshotLoader {
	return &SnapshotLoader{
		corpus:         corpus,
		reputation:     reputation,
		models:         models,
		keywords:       keywords,
		reputationOpts: reputationOpts,
		logger:         logger,
	}
}

// Load reads corpus, reputation table and model concurrently and assembles a
// snapshot. Any failure aborts the whole build.
func (l *SnapshotLoader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	var (
		corpus []features.HistoricalEmail
		ranks  map[string]int
		scorer Scorer
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		corpus, err = l.corpus.LoadCorpus(gctx)
		if err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		ranks, err = l.reputation.LoadRanks(gctx)
		if err != nil {
			return fmt.Errorf("failed to load reputation table: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		scorer, err = l.models.LoadScorer(gctx)
		if err != nil {
			return fmt.Errorf("failed to load model: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	domains, recipients, stats := features.BuildIndexes(corpus)
	reputation := features.NewReputationTable(ranks, l.reputationOpts...)

	snapshot := &Snapshot{
		Builder: features.NewBuilder(features.NewDomainExtractor(), l.keywords, domains, recipients, reputation),
		Scorer:  scorer,
		Stats:   stats,
		Ranked:  reputation.Len(),
		BuiltAt: time.Now(),
	}

	l.logger.Info("Built feature indexes",
		zap.Int("emails", stats.Emails),
		zap.Int("senders", stats.Senders),
		zap.Int("days", stats.Days),
		zap.Int("domains", stats.Domains),
		zap.Int("ranked_domains", snapshot.Ranked),
		zap.Duration("elapsed", time.Since(start)))

	return snapshot, nil
}

// Reload builds a fresh snapshot and swaps it into handle. On failure the
// previous snapshot stays in place.
func (l *SnapshotLoader) Reload(ctx context.Context, handle *SnapshotHandle) error {
	snapshot, err := l.Load(ctx)
	if err != nil {
		return err
	}
	handle.Store(snapshot)
	return nil
}
