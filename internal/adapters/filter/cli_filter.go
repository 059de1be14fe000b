package filter

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/core"
	"github.com/mikey/lateral-phish-detector/internal/features"
	"github.com/mikey/lateral-phish-detector/internal/utils"
)

// CLIFilter scores single messages from the command line and prints a report
type CLIFilter struct {
	service       *core.LateralPhishService
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	out           io.Writer
	verbose       bool
}

// NewCLIFilter creates a new CLI filter
func NewCLIFilter(
	service *core.LateralPhishService,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	out io.Writer,
	verbose bool,
) *CLIFilter {
	return &CLIFilter{
		service:       service,
		logger:        logger,
		textProcessor: textProcessor,
		out:           out,
		verbose:       verbose,
	}
}

// ScoreEmail scores a message and writes the report
func (f *CLIFilter) ScoreEmail(ctx context.Context, req *core.ScoreRequest) (*core.ScoreResult, error) {
	f.logger.Debug("Scoring email", zap.String("sender", req.From))

	fmt.Fprintf(f.out, "\n=== Email Summary ===\n")
	fmt.Fprintf(f.out, "From: %s\n", req.From)
	fmt.Fprintf(f.out, "To: %s\n", req.To)
	fmt.Fprintf(f.out, "Subject: %s\n", req.Subject)
	fmt.Fprintf(f.out, "Date: %s\n", req.Date)
	fmt.Fprintf(f.out, "Body length: %d bytes\n", len(req.Body))

	if f.verbose {
		fmt.Fprintf(f.out, "\nBody preview:\n%s\n", f.textProcessor.Preview(req.Body))
	}

	startTime := time.Now()
	result, err := f.service.Score(ctx, req)
	if err != nil {
		fmt.Fprintf(f.out, "\nError [%s]: %v\n", core.ErrorCode(err), err)
		return nil, err
	}
	duration := time.Since(startTime)

	fmt.Fprintf(f.out, "\n=== Domains ===\n")
	if len(result.Domains) == 0 {
		fmt.Fprintf(f.out, "(none)\n")
	}
	for _, domain := range result.Domains {
		fmt.Fprintf(f.out, "%s\n", domain)
	}

	fmt.Fprintf(f.out, "\n=== Features ===\n")
	values := result.Features.Values()
	for i, name := range features.FeatureNames {
		value := values[i]
		if name == "RecipientLikelihood" {
			value = result.Features.RoundedLikelihood()
		}
		fmt.Fprintf(f.out, "%-20s %s\n", name+":", formatFeature(value))
	}

	label := "legitimate"
	if result.IsPhishing() {
		label = "lateral phishing"
	}

	fmt.Fprintf(f.out, "\n=== Result ===\n")
	fmt.Fprintf(f.out, "Representative domain: %s\n", orNone(result.Domain))
	fmt.Fprintf(f.out, "Probability: %.4f (threshold %.2f)\n", result.Probability, f.service.Threshold())
	fmt.Fprintf(f.out, "Label: %d (%s)\n", result.Label, label)
	fmt.Fprintf(f.out, "Processing time: %v\n", duration)

	return result, nil
}

// Start is a no-op for the CLI filter
func (f *CLIFilter) Start() error {
	return nil
}

// Stop is a no-op for the CLI filter
func (f *CLIFilter) Stop() error {
	return nil
}

func formatFeature(value float64) string {
	s := fmt.Sprintf("%.4f", value)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

func orNone(value string) string {
	if value == "" {
		return "(none)"
	}
	return value
}
