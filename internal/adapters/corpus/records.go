package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/lateral-phish-detector/internal/features"
)

// ErrMalformedList is returned when a list column is not a JSON array of strings
var ErrMalformedList = errors.New("malformed list literal")

// dateLayouts are tried in order when parsing corpus timestamps
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05-07:00",
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"2006-01-02",
}

// ParseDate parses a corpus timestamp in any of the supported layouts
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// ParseList decodes a JSON array of strings into a normalized set. An empty
// cell is an empty set.
func ParseList(value string) (features.StringSet, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return features.NewStringSet(), nil
	}

	var items []string
	if err := json.Unmarshal([]byte(value), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedList, err)
	}
	return features.NormalizedSet(items), nil
}

// rawRecord is one corpus row before decoding
type rawRecord struct {
	Date       string
	Sender     string
	Recipients string
	Domains    string
}

func (r rawRecord) decode() (features.HistoricalEmail, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return features.HistoricalEmail{}, err
	}
	recipients, err := ParseList(r.Recipients)
	if err != nil {
		return features.HistoricalEmail{}, fmt.Errorf("recipients: %w", err)
	}
	domains, err := ParseList(r.Domains)
	if err != nil {
		return features.HistoricalEmail{}, fmt.Errorf("domains: %w", err)
	}
	return features.HistoricalEmail{
		Sender:     features.NormalizeSender(r.Sender),
		Recipients: recipients,
		Domains:    domains,
		Date:       date,
	}, nil
}
