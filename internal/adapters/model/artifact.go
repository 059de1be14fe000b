package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mikey/lateral-phish-detector/internal/core"
	"github.com/mikey/lateral-phish-detector/internal/features"
)

// Supported artifact types
const (
	TypeLogistic = "logistic"
	TypeForest   = "forest"
)

// ErrInvalidArtifact is returned when an artifact fails validation
var ErrInvalidArtifact = errors.New("invalid model artifact")

// Scaler standardizes each feature as (x - mean) / scale before scoring
type Scaler struct {
	Mean  []float64 `json:"mean" yaml:"mean"`
	Scale []float64 `json:"scale" yaml:"scale"`
}

// Node is one node of a decision tree. Leaves have Left == -1.
type Node struct {
	Feature   int       `json:"feature" yaml:"feature"`
	Threshold float64   `json:"threshold" yaml:"threshold"`
	Left      int       `json:"left" yaml:"left"`
	Right     int       `json:"right" yaml:"right"`
	Value     []float64 `json:"value" yaml:"value"`
}

// Tree is a flattened decision tree rooted at node 0
type Tree struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
}

// Artifact is the persisted form of a trained classifier
type Artifact struct {
	Type         string    `json:"type" yaml:"type"`
	FeatureNames []string  `json:"feature_names" yaml:"feature_names"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	Scaler       *Scaler   `json:"scaler,omitempty" yaml:"scaler,omitempty"`
	Trees        []Tree    `json:"trees,omitempty" yaml:"trees,omitempty"`
}

// DecodeArtifact parses an artifact. The format is chosen from the file
// name extension; anything other than .yaml or .yml is read as JSON.
func DecodeArtifact(name string, data []byte) (*Artifact, error) {
	var artifact Artifact

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &artifact); err != nil {
			return nil, fmt.Errorf("failed to parse YAML artifact: %w", err)
		}
	default:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&artifact); err != nil {
			return nil, fmt.Errorf("failed to parse JSON artifact: %w", err)
		}
	}

	return &artifact, nil
}

// Validate checks the artifact against the feature vector layout
func (a *Artifact) Validate() error {
	if len(a.FeatureNames) != len(features.FeatureNames) {
		return fmt.Errorf("%w: expected %d feature names, got %d",
			ErrInvalidArtifact, len(features.FeatureNames), len(a.FeatureNames))
	}
	for i, name := range features.FeatureNames {
		if a.FeatureNames[i] != name {
			return fmt.Errorf("%w: feature %d is %q, expected %q",
				ErrInvalidArtifact, i, a.FeatureNames[i], name)
		}
	}

	switch a.Type {
	case TypeLogistic:
		return a.validateLogistic()
	case TypeForest:
		return a.validateForest()
	default:
		return fmt.Errorf("%w: unknown model type %q", ErrInvalidArtifact, a.Type)
	}
}

func (a *Artifact) validateLogistic() error {
	width := len(features.FeatureNames)
	if len(a.Coefficients) != width {
		return fmt.Errorf("%w: expected %d coefficients, got %d", ErrInvalidArtifact, width, len(a.Coefficients))
	}
	if a.Scaler == nil {
		return nil
	}
	if len(a.Scaler.Mean) != width || len(a.Scaler.Scale) != width {
		return fmt.Errorf("%w: scaler must have %d means and scales", ErrInvalidArtifact, width)
	}
	for i, scale := range a.Scaler.Scale {
		if scale == 0 {
			return fmt.Errorf("%w: scale of %s is zero", ErrInvalidArtifact, features.FeatureNames[i])
		}
	}
	return nil
}

func (a *Artifact) validateForest() error {
	if len(a.Trees) == 0 {
		return fmt.Errorf("%w: forest has no trees", ErrInvalidArtifact)
	}
	width := len(features.FeatureNames)

	for t, tree := range a.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("%w: tree %d has no nodes", ErrInvalidArtifact, t)
		}
		for n, node := range tree.Nodes {
			if node.Left == -1 {
				if len(node.Value) != 2 {
					return fmt.Errorf("%w: tree %d leaf %d must hold 2 class values", ErrInvalidArtifact, t, n)
				}
				if node.Value[0] < 0 || node.Value[1] < 0 || node.Value[0]+node.Value[1] == 0 {
					return fmt.Errorf("%w: tree %d leaf %d has invalid class values", ErrInvalidArtifact, t, n)
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= width {
				return fmt.Errorf("%w: tree %d node %d splits on feature %d", ErrInvalidArtifact, t, n, node.Feature)
			}
			// children must come after their parent so every walk terminates
			if node.Left <= n || node.Left >= len(tree.Nodes) || node.Right <= n || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("%w: tree %d node %d has child out of range", ErrInvalidArtifact, t, n)
			}
		}
	}
	return nil
}

// Scorer validates the artifact and builds the matching scorer
func (a *Artifact) Scorer() (core.Scorer, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	switch a.Type {
	case TypeLogistic:
		return newLogisticScorer(a), nil
	default:
		return newForestScorer(a), nil
	}
}
