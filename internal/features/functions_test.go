package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRecipients_Count(t *testing.T) {
	tests := []struct {
		name     string
		to       string
		expected int
	}{
		{"Empty field", "", 0},
		{"Only separators", " , ,", 0},
		{"Duplicates differing in case", "Bob@co.com, bob@co.com , carol@co.com", 2},
		{"Single", "bob@co.com", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRecipients(tt.to).Len())
		})
	}
}

func TestLocalURLFreq(t *testing.T) {
	today := DayOf(at("2024-03-15 09:00:00"))
	domain := "evil.example.com"

	corpus := []HistoricalEmail{}
	for _, delta := range []int{0, 5, 10, 40} {
		corpus = append(corpus, HistoricalEmail{
			Sender:  "x@co.com",
			Domains: NewStringSet(domain),
			Date:    at(today.AddDays(-delta).String() + " 10:00:00"),
		})
	}
	history, _, _ := BuildIndexes(corpus)

	assert.Equal(t, 2, LocalURLFreq(today, NewStringSet(domain), history))
	assert.Equal(t, 0, LocalURLFreq(today, NewStringSet("other.example.com"), history))
	assert.Equal(t, 0, LocalURLFreq(today, NewStringSet(), history))
	assert.Equal(t, 0, LocalURLFreq(today, NewStringSet(domain), nil))
}

func TestLocalURLFreq_WindowEdges(t *testing.T) {
	today := DayOf(at("2024-03-15 09:00:00"))
	domains := NewStringSet("edge.example.com")

	withDays := func(deltas ...int) *DomainHistory {
		corpus := make([]HistoricalEmail, 0, len(deltas))
		for _, delta := range deltas {
			corpus = append(corpus, HistoricalEmail{
				Domains: NewStringSet("edge.example.com"),
				Date:    at(today.AddDays(-delta).String() + " 00:00:00"),
			})
		}
		history, _, _ := BuildIndexes(corpus)
		return history
	}

	assert.Equal(t, 1, LocalURLFreq(today, domains, withDays(30)))
	assert.Equal(t, 0, LocalURLFreq(today, domains, withDays(31)))

	// coverage only grows the count, and never beyond the window
	all := make([]int, 0, 60)
	previous := 0
	for delta := 1; delta <= 60; delta++ {
		all = append(all, delta)
		got := LocalURLFreq(today, domains, withDays(all...))
		assert.GreaterOrEqual(t, got, previous)
		assert.LessOrEqual(t, got, WindowDays)
		previous = got
	}
	assert.Equal(t, WindowDays, previous)
}

func TestRecipientLikelihood(t *testing.T) {
	today := DayOf(at("2024-03-25 09:00:00"))
	sender := "alice@co.com"

	history := func(delta int, recipients ...string) *RecipientHistory {
		_, h, _ := BuildIndexes([]HistoricalEmail{{
			Sender:     sender,
			Recipients: NewStringSet(recipients...),
			Date:       at(today.AddDays(-delta).String() + " 12:00:00"),
		}})
		return h
	}

	current := NewStringSet("bob@co.com", "carol@co.com")

	tests := []struct {
		name     string
		history  *RecipientHistory
		expected float64
	}{
		{"No history", nil, 0.0},
		{"Identical set ten days ago", history(10, "bob@co.com", "carol@co.com"), 1.0},
		{"Same day is excluded", history(0, "bob@co.com", "carol@co.com"), 0.0},
		{"Thirty days ago is included", history(30, "bob@co.com", "carol@co.com"), 1.0},
		{"Thirty-one days ago is excluded", history(31, "bob@co.com", "carol@co.com"), 0.0},
		{"Partial overlap", history(3, "carol@co.com", "dave@co.com"), 1.0 / 3.0},
		{"Disjoint sets", history(3, "erin@co.com"), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecipientLikelihood(today, sender, current, tt.history)
			assert.InDelta(t, tt.expected, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}

	assert.Equal(t, 0.0, RecipientLikelihood(today, sender, NewStringSet(), history(5)))
	assert.Equal(t, 0.0, RecipientLikelihood(today, "someone@else.com", current, history(5, "bob@co.com")))
}

func TestJaccard(t *testing.T) {
	a := NewStringSet("x", "y", "z")
	b := NewStringSet("y", "z", "w", "v")

	assert.InDelta(t, 2.0/5.0, Jaccard(a, b), 1e-9)
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
	assert.Equal(t, 0.0, Jaccard(NewStringSet("x"), NewStringSet("y", "z")))
	assert.Equal(t, 0.0, Jaccard(NewStringSet(), NewStringSet()))
	assert.Equal(t, 1.0, Jaccard(a, NewStringSet("z", "y", "x")))
}
