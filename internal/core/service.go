package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/features"
	"github.com/mikey/lateral-phish-detector/internal/utils"
)

// DefaultThreshold is the probability at or above which a message is labelled phishing
const DefaultThreshold = 0.83

// LateralPhishService is the core service for lateral phishing detection
type LateralPhishService struct {
	snapshots     *SnapshotHandle
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	threshold     float64
	requireDomain bool
}

// NewLateralPhishService creates a new lateral phishing detection service
func NewLateralPhishService(
	snapshots *SnapshotHandle,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
	threshold float64,
	requireDomain bool,
) *LateralPhishService {
	return &LateralPhishService{
		snapshots:     snapshots,
		logger:        logger,
		textProcessor: textProcessor,
		threshold:     threshold,
		requireDomain: requireDomain,
	}
}

// ParseEmailDate parses a request date in DateLayout
func ParseEmailDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &ScoringError{Code: CodeInvalidDate, Err: fmt.Errorf("%w: %q", ErrInvalidDate, value)}
	}
	return t, nil
}

// Score computes the features of req, runs the classifier and applies the threshold
func (s *LateralPhishService) Score(ctx context.Context, req *ScoreRequest) (*ScoreResult, error) {
	date, err := ParseEmailDate(req.Date)
	if err != nil {
		s.logger.Debug("Rejected request with invalid date", zap.String("date", req.Date))
		return nil, err
	}

	snapshot := s.snapshots.Load()
	if snapshot == nil {
		return nil, &ScoringError{Code: CodeNotReady, Err: ErrNotReady}
	}

	candidate := features.CandidateEmail{
		Sender:     features.NormalizeSender(req.From),
		Recipients: features.NormalizeRecipients(req.To),
		Subject:    s.textProcessor.SanitizeUTF8(req.Subject),
		Body:       s.textProcessor.SanitizeUTF8(req.Body),
		Date:       date,
	}

	vector, domains := snapshot.Builder.Build(candidate)

	domain := ""
	if len(domains) > 0 {
		domain = domains[0]
	} else if s.requireDomain {
		return nil, &ScoringError{Code: CodeNoDomain, Err: ErrNoDomain}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	probability, err := snapshot.Scorer.Predict(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to score feature vector: %w", err)
	}

	result := &ScoreResult{
		Label:        s.label(probability),
		Probability:  probability,
		Features:     vector,
		Domain:       domain,
		Domains:      domains,
		ScoredAt:     time.Now(),
		ProcessingID: uuid.NewString(),
	}

	s.logger.Info("Scored email",
		zap.String("processing_id", result.ProcessingID),
		zap.String("sender", candidate.Sender),
		zap.Int("label", result.Label),
		zap.Float64("probability", probability),
		zap.String("domain", domain),
		zap.Int("has_phishy_keywords", vector.HasPhishyKeywords),
		zap.Int("num_recipients", vector.NumRecipients),
		zap.Int("global_url_rank", vector.GlobalURLRank),
		zap.Int("local_url_freq", vector.LocalURLFreq),
		zap.Float64("recipient_likelihood", vector.RecipientLikelihood))

	return result, nil
}

func (s *LateralPhishService) label(probability float64) int {
	if probability >= s.threshold {
		return 1
	}
	return 0
}

// Threshold returns the configured decision threshold
func (s *LateralPhishService) Threshold() float64 {
	return s.threshold
}

// Snapshot returns the snapshot currently served, or nil before startup completes
func (s *LateralPhishService) Snapshot() *Snapshot {
	return s.snapshots.Load()
}
