package ports

import (
	"context"

	"github.com/mikey/lateral-phish-detector/internal/core"
)

// EmailFilter is a surface through which messages reach the scoring service
type EmailFilter interface {
	// ScoreEmail scores one message and returns the verdict
	ScoreEmail(ctx context.Context, req *core.ScoreRequest) (*core.ScoreResult, error)

	// Start starts the filter
	Start() error

	// Stop stops the filter
	Stop() error
}
