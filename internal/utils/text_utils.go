package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// DefaultPreviewSize is the preview length used when none is configured
const DefaultPreviewSize = 500

// TextProcessor cleans untrusted message text before it reaches the feature pipeline
type TextProcessor struct {
	logger      *zap.Logger
	previewSize int
}

// Option configures a TextProcessor
type Option func(*TextProcessor)

// WithPreviewSize sets the byte limit used by Preview. Zero or less disables
// truncation.
func WithPreviewSize(size int) Option {
	return func(tp *TextProcessor) {
		tp.previewSize = size
	}
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger, opts ...Option) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	tp := &TextProcessor{
		logger:      logger,
		previewSize: DefaultPreviewSize,
	}
	for _, opt := range opts {
		opt(tp)
	}
	return tp
}

// SanitizeUTF8 drops invalid UTF-8 bytes so regexes and the HTML tokenizer
// see well-formed text
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}

// Preview shortens text to at most the configured preview size on a rune
// boundary, for logs and CLI output
func (tp *TextProcessor) Preview(text string) string {
	if tp.previewSize <= 0 || len(text) <= tp.previewSize {
		return text
	}

	truncated := text[:tp.previewSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	return truncated + "..."
}
