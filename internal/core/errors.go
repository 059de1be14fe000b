package core

import (
	"errors"
	"fmt"
)

// Error codes surfaced to clients
const (
	CodeInvalidDate = "INVALID_DATE"
	CodeNoDomain    = "NO_DOMAIN"
	CodeNotReady    = "NOT_READY"
	CodeInternal    = "INTERNAL"
)

var (
	// ErrInvalidDate is returned when the request date does not match DateLayout
	ErrInvalidDate = errors.New("invalid date format")
	// ErrNoDomain is returned when no domain could be extracted and one is required
	ErrNoDomain = errors.New("no domain could be extracted from the email")
	// ErrNotReady is returned before the first snapshot has been published
	ErrNotReady = errors.New("indexes are not loaded")
)

// ScoringError carries a stable code alongside the underlying error
type ScoringError struct {
	Code string
	Err  error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// ErrorCode returns the code of a ScoringError anywhere in err's chain, or
// CodeInternal
func ErrorCode(err error) string {
	var scoringErr *ScoringError
	if errors.As(err, &scoringErr) {
		return scoringErr.Code
	}
	return CodeInternal
}
