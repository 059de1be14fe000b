package filter

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/core"
	"github.com/mikey/lateral-phish-detector/internal/features"
	"github.com/mikey/lateral-phish-detector/internal/utils"
)

type fixedScorer struct {
	probability float64
	err         error
}

func (s fixedScorer) Predict(features.FeatureVector) (float64, error) {
	return s.probability, s.err
}

var errScorer = errors.New("scorer unavailable")

// newTestService serves a one-email corpus: alice wrote to bob and carol on
// 2024-03-10 linking docs.example.com
func newTestService(t *testing.T, scorer core.Scorer, loaded, requireDomain bool) *core.LateralPhishService {
	t.Helper()

	handle := core.NewSnapshotHandle()
	if loaded {
		corpus := []features.HistoricalEmail{{
			Sender:     "alice@co.com",
			Recipients: features.NewStringSet("bob@co.com", "carol@co.com"),
			Domains:    features.NewStringSet("docs.example.com"),
			Date:       time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC),
		}}
		domains, recipients, stats := features.BuildIndexes(corpus)
		reputation := features.NewReputationTable(map[string]int{"google.com": 1})

		handle.Store(&core.Snapshot{
			Builder: features.NewBuilder(nil, nil, domains, recipients, reputation),
			Scorer:  scorer,
			Stats:   stats,
			Ranked:  reputation.Len(),
			BuiltAt: time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC),
		})
	}

	return core.NewLateralPhishService(handle, zap.NewNop(), utils.NewTextProcessor(nil), core.DefaultThreshold, requireDomain)
}
