package features

import (
	"math"
	"time"
)

// FeatureNames is the column order the classifier was trained on.
// Changing it requires retraining every model artifact.
var FeatureNames = [5]string{
	"HasPhishyKeywords",
	"NumRecipients",
	"GlobalURLRank",
	"LocalURLFreq",
	"RecipientLikelihood",
}

// FeatureVector is the numeric summary of one candidate email
type FeatureVector struct {
	HasPhishyKeywords   int
	NumRecipients       int
	GlobalURLRank       int
	LocalURLFreq        int
	RecipientLikelihood float64
}

// Values returns the vector in FeatureNames order
func (v FeatureVector) Values() [5]float64 {
	return [5]float64{
		float64(v.HasPhishyKeywords),
		float64(v.NumRecipients),
		float64(v.GlobalURLRank),
		float64(v.LocalURLFreq),
		v.RecipientLikelihood,
	}
}

// RoundedLikelihood returns RecipientLikelihood rounded to 4 decimal places
func (v FeatureVector) RoundedLikelihood() float64 {
	return math.Round(v.RecipientLikelihood*1e4) / 1e4
}

// CandidateEmail is the message being scored
type CandidateEmail struct {
	Sender     string
	Recipients StringSet
	Subject    string
	Body       string
	Date       time.Time
}

// Text returns the subject and body joined the way features read them
func (c CandidateEmail) Text() string {
	return c.Subject + " " + c.Body
}
