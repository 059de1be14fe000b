package features

import (
	"strings"
)

// WindowDays is the look-back window of the temporal features
const WindowDays = 30

// NormalizeRecipients splits a comma-separated To field into a set of
// trimmed, lowercased addresses. Its length is the NumRecipients feature;
// empty entries are dropped.
func NormalizeRecipients(toField string) StringSet {
	return NormalizedSet(strings.Split(toField, ","))
}

// LocalURLFreq counts how many of the WindowDays days strictly before day
// saw at least one of domains anywhere in the corpus
func LocalURLFreq(day Day, domains StringSet, history *DomainHistory) int {
	if len(domains) == 0 {
		return 0
	}
	count := 0
	for delta := 1; delta <= WindowDays; delta++ {
		if domains.Intersects(history.On(day.AddDays(-delta))) {
			count++
		}
	}
	return count
}

// RecipientLikelihood returns the highest Jaccard similarity between
// recipients and any recipient set the sender used 1 to WindowDays days
// before day
func RecipientLikelihood(day Day, sender string, recipients StringSet, history *RecipientHistory) float64 {
	best := 0.0
	for _, past := range history.For(sender) {
		diff := day.DaysSince(past.Day)
		if diff <= 0 || diff > WindowDays {
			continue
		}
		if score := Jaccard(recipients, past.Recipients); score > best {
			best = score
		}
	}
	return best
}
