package core

import (
	"time"

	"github.com/mikey/lateral-phish-detector/internal/features"
)

// DateLayout is the only accepted format of ScoreRequest.Date
const DateLayout = "2006-01-02 15:04:05"

// ScoreRequest is an inbound message to score, as posted by clients
type ScoreRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from"`
	To      string `json:"to"`
	Date    string `json:"date"`
}

// ScoreResult represents the verdict for one message
type ScoreResult struct {
	Label        int
	Probability  float64
	Features     features.FeatureVector
	Domain       string
	Domains      []string
	ScoredAt     time.Time
	ProcessingID string
}

// IsPhishing reports whether the message was labelled as lateral phishing
func (r *ScoreResult) IsPhishing() bool {
	return r.Label == 1
}
