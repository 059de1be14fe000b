package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(date string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", date)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDay_Arithmetic(t *testing.T) {
	day := DayOf(at("2024-03-01 23:59:59"))

	assert.Equal(t, Day{Year: 2024, Month: time.March, Day: 1}, day)
	assert.Equal(t, Day{Year: 2024, Month: time.February, Day: 29}, day.AddDays(-1))
	assert.Equal(t, 1, day.DaysSince(day.AddDays(-1)))
	assert.Equal(t, -30, day.AddDays(-30).DaysSince(day))
	assert.Equal(t, "2024-03-01", day.String())
}

func TestBuildIndexes(t *testing.T) {
	corpus := []HistoricalEmail{
		{
			Sender:     "alice@co.com",
			Recipients: NewStringSet("carol@co.com"),
			Domains:    NewStringSet("b.example.com"),
			Date:       at("2024-03-10 12:00:00"),
		},
		{
			Sender:     " Alice@Co.com ",
			Recipients: NewStringSet("bob@co.com"),
			Domains:    NewStringSet("a.example.com"),
			Date:       at("2024-03-01 08:00:00"),
		},
		{
			Sender:     "dave@co.com",
			Recipients: NewStringSet("erin@co.com"),
			Domains:    NewStringSet("a.example.com", "c.example.com"),
			Date:       at("2024-03-01 17:30:00"),
		},
	}

	domains, recipients, stats := BuildIndexes(corpus)

	assert.Equal(t, IndexStats{Emails: 3, Senders: 2, Days: 2, Domains: 3}, stats)

	march1 := DayOf(at("2024-03-01 00:00:00"))
	assert.Equal(t, NewStringSet("a.example.com", "c.example.com"), domains.On(march1))
	assert.Equal(t, NewStringSet("b.example.com"), domains.On(march1.AddDays(9)))
	assert.Nil(t, domains.On(march1.AddDays(1)))

	history := recipients.For("ALICE@co.com")
	require.Len(t, history, 2)
	assert.Equal(t, march1, history[0].Day)
	assert.True(t, history[0].Recipients.Has("bob@co.com"))
	assert.Equal(t, march1.AddDays(9), history[1].Day)

	assert.Empty(t, recipients.For("nobody@co.com"))

	// the input corpus is left untouched
	assert.Equal(t, "alice@co.com", corpus[0].Sender)
}

func TestBuildIndexes_Empty(t *testing.T) {
	domains, recipients, stats := BuildIndexes(nil)

	assert.Equal(t, IndexStats{}, stats)
	assert.Equal(t, 0, domains.Days())
	assert.Equal(t, 0, recipients.Senders())
}
