package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/config"
	"github.com/mikey/lateral-phish-detector/internal/utils"
)

// TextProcessorFactory creates text processors sized from the logging config
type TextProcessorFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(cfg *config.Config, logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		config: cfg,
		logger: logger,
	}
}

// CreateTextProcessor creates a TextProcessor whose previews are cut at
// logging.preview_size bytes
func (f *TextProcessorFactory) CreateTextProcessor() *utils.TextProcessor {
	previewSize := f.config.GetLogging().PreviewSize
	f.logger.Debug("Creating text processor", zap.Int("preview_size", previewSize))

	return utils.NewTextProcessor(f.logger.Named("text"), utils.WithPreviewSize(previewSize))
}
