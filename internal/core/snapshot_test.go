package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/features"
)

type failingCorpus struct{}

func (failingCorpus) LoadCorpus(context.Context) ([]features.HistoricalEmail, error) {
	return nil, errors.New("bad date on row 3")
}

func TestSnapshotLoader_Load(t *testing.T) {
	corpus := staticCorpus{
		{Sender: "a@co.com", Recipients: features.NewStringSet("b@co.com"), Domains: features.NewStringSet("x.com"), Date: mustTime(t, "2024-01-01 10:00:00")},
		{Sender: "c@co.com", Recipients: features.NewStringSet("d@co.com"), Domains: features.NewStringSet("y.com"), Date: mustTime(t, "2024-01-02 10:00:00")},
	}
	loader := NewSnapshotLoader(corpus, staticRanks{"x.com": 3, "y.com": 9}, staticModel{scorer: &fixedScorer{}}, nil, zap.NewNop())

	snapshot, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, features.IndexStats{Emails: 2, Senders: 2, Days: 2, Domains: 2}, snapshot.Stats)
	assert.Equal(t, 2, snapshot.Ranked)
	assert.False(t, snapshot.BuiltAt.IsZero())
	assert.NotNil(t, snapshot.Builder)
}

func TestSnapshotLoader_Reload_KeepsPreviousOnFailure(t *testing.T) {
	handle := NewSnapshotHandle()
	good := NewSnapshotLoader(staticCorpus{}, staticRanks{}, staticModel{scorer: &fixedScorer{}}, nil, zap.NewNop())
	require.NoError(t, good.Reload(context.Background(), handle))
	previous := handle.Load()
	require.NotNil(t, previous)

	badCorpus := NewSnapshotLoader(failingCorpus{}, staticRanks{}, staticModel{scorer: &fixedScorer{}}, nil, zap.NewNop())
	err := badCorpus.Reload(context.Background(), handle)
	assert.ErrorContains(t, err, "failed to load corpus")
	assert.Same(t, previous, handle.Load())

	badModel := NewSnapshotLoader(staticCorpus{}, staticRanks{}, staticModel{err: errors.New("missing artifact")}, nil, zap.NewNop())
	err = badModel.Reload(context.Background(), handle)
	assert.ErrorContains(t, err, "failed to load model")
	assert.Same(t, previous, handle.Load())
}
