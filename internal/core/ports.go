package core

import (
	"context"

	"github.com/mikey/lateral-phish-detector/internal/features"
)

// Scorer is the trained classifier behind the feature pipeline
type Scorer interface {
	// Predict returns the probability that the vector belongs to a lateral phishing email
	Predict(vector features.FeatureVector) (float64, error)
}

// CorpusSource provides the historical emails the indexes are built from
type CorpusSource interface {
	// LoadCorpus reads every historical email
	LoadCorpus(ctx context.Context) ([]features.HistoricalEmail, error)
}

// ReputationSource provides the domain popularity ranking
type ReputationSource interface {
	// LoadRanks reads the domain → rank mapping
	LoadRanks(ctx context.Context) (map[string]int, error)
}

// ModelLoader loads the persisted classifier artifact
type ModelLoader interface {
	// LoadScorer reads and validates the model artifact
	LoadScorer(ctx context.Context) (Scorer, error)
}
