package features

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Day is a calendar date without time of day or zone
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar date of t in t's own location
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

func (d Day) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the day n days after d (n may be negative)
func (d Day) AddDays(n int) Day {
	return DayOf(d.midnight().AddDate(0, 0, n))
}

// DaysSince returns the number of calendar days from other to d
func (d Day) DaysSince(other Day) int {
	return int(d.midnight().Sub(other.midnight()).Hours() / 24)
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// HistoricalEmail is one message of the training corpus
type HistoricalEmail struct {
	Sender     string
	Recipients StringSet
	Domains    StringSet
	Date       time.Time
}

// NormalizeSender canonicalizes a sender address for history lookups
func NormalizeSender(sender string) string {
	return strings.ToLower(strings.TrimSpace(sender))
}

// DomainHistory maps each calendar day to the domains seen corpus-wide that day
type DomainHistory struct {
	days map[Day]StringSet
}

// On returns the domains observed on day; nil when none
func (h *DomainHistory) On(day Day) StringSet {
	if h == nil {
		return nil
	}
	return h.days[day]
}

// Days returns the number of distinct days indexed
func (h *DomainHistory) Days() int {
	if h == nil {
		return 0
	}
	return len(h.days)
}

// RecipientEntry is one past message of a sender
type RecipientEntry struct {
	Day        Day
	Recipients StringSet
}

// RecipientHistory maps each sender to its messages in ascending date order
type RecipientHistory struct {
	senders map[string][]RecipientEntry
}

// For returns the chronological entries of sender
func (h *RecipientHistory) For(sender string) []RecipientEntry {
	if h == nil {
		return nil
	}
	return h.senders[NormalizeSender(sender)]
}

// Senders returns the number of distinct senders indexed
func (h *RecipientHistory) Senders() int {
	if h == nil {
		return 0
	}
	return len(h.senders)
}

// IndexStats summarizes a build for startup logging
type IndexStats struct {
	Emails  int
	Senders int
	Days    int
	Domains int
}

// BuildIndexes sorts a copy of the corpus by date and builds both histories.
// Emails on the same instant keep their corpus order.
func BuildIndexes(corpus []HistoricalEmail) (*DomainHistory, *RecipientHistory, IndexStats) {
	sorted := make([]HistoricalEmail, len(corpus))
	copy(sorted, corpus)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	domains := &DomainHistory{days: make(map[Day]StringSet)}
	recipients := &RecipientHistory{senders: make(map[string][]RecipientEntry)}
	distinct := make(StringSet)

	for _, email := range sorted {
		day := DayOf(email.Date)
		sender := NormalizeSender(email.Sender)

		recipients.senders[sender] = append(recipients.senders[sender], RecipientEntry{
			Day:        day,
			Recipients: email.Recipients,
		})

		seen, ok := domains.days[day]
		if !ok {
			seen = make(StringSet)
			domains.days[day] = seen
		}
		seen.Union(email.Domains)
		distinct.Union(email.Domains)
	}

	return domains, recipients, IndexStats{
		Emails:  len(sorted),
		Senders: len(recipients.senders),
		Days:    len(domains.days),
		Domains: len(distinct),
	}
}
