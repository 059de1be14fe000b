package model

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/core"
)

// FileLoader reads a model artifact from disk
type FileLoader struct {
	path   string
	logger *zap.Logger
}

// NewFileLoader creates a new model loader
func NewFileLoader(path string, logger *zap.Logger) *FileLoader {
	return &FileLoader{
		path:   path,
		logger: logger,
	}
}

// LoadScorer implements core.ModelLoader
func (l *FileLoader) LoadScorer(ctx context.Context) (core.Scorer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	artifact, err := DecodeArtifact(l.path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	scorer, err := artifact.Scorer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	l.logger.Info("Loaded model artifact",
		zap.String("path", l.path),
		zap.String("type", artifact.Type),
		zap.Int("trees", len(artifact.Trees)))

	return scorer, nil
}
