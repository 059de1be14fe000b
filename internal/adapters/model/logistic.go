package model

import (
	"math"

	"github.com/mikey/lateral-phish-detector/internal/features"
)

// LogisticScorer is a logistic regression over the optionally standardized vector
type LogisticScorer struct {
	intercept    float64
	coefficients [5]float64
	mean         [5]float64
	scale        [5]float64
}

func newLogisticScorer(a *Artifact) *LogisticScorer {
	s := &LogisticScorer{intercept: a.Intercept}
	copy(s.coefficients[:], a.Coefficients)
	for i := range s.scale {
		s.scale[i] = 1
	}
	if a.Scaler != nil {
		copy(s.mean[:], a.Scaler.Mean)
		copy(s.scale[:], a.Scaler.Scale)
	}
	return s
}

// Predict implements core.Scorer
func (s *LogisticScorer) Predict(vector features.FeatureVector) (float64, error) {
	z := s.intercept
	for i, x := range vector.Values() {
		z += s.coefficients[i] * (x - s.mean[i]) / s.scale[i]
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
