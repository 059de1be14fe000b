package model

import (
	"github.com/mikey/lateral-phish-detector/internal/features"
)

// ForestScorer averages the class-1 leaf probability of every tree
type ForestScorer struct {
	trees []Tree
}

func newForestScorer(a *Artifact) *ForestScorer {
	return &ForestScorer{trees: a.Trees}
}

// Predict implements core.Scorer
func (s *ForestScorer) Predict(vector features.FeatureVector) (float64, error) {
	x := vector.Values()

	var total float64
	for _, tree := range s.trees {
		total += tree.predict(x)
	}
	return total / float64(len(s.trees)), nil
}

func (t Tree) predict(x [5]float64) float64 {
	node := t.Nodes[0]
	for node.Left != -1 {
		if x[node.Feature] <= node.Threshold {
			node = t.Nodes[node.Left]
		} else {
			node = t.Nodes[node.Right]
		}
	}
	return node.Value[1] / (node.Value[0] + node.Value[1])
}
