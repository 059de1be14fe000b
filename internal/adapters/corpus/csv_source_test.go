package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/features"
)

const sampleCSV = `Date,From,Recipients,Domains
2024-03-01 09:00:00,Alice@Co.com,"[""Bob@co.com"", "" carol@co.com ""]","[""docs.example.com""]"
2024-02-28 17:45:10,dave@co.com,"[""erin@co.com""]",
`

func TestReadCSV(t *testing.T) {
	emails, err := ReadCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, emails, 2)

	first := emails[0]
	assert.Equal(t, "alice@co.com", first.Sender)
	assert.Equal(t, features.NewStringSet("bob@co.com", "carol@co.com"), first.Recipients)
	assert.Equal(t, features.NewStringSet("docs.example.com"), first.Domains)
	assert.Equal(t, time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC), first.Date)

	second := emails[1]
	assert.Equal(t, 0, second.Domains.Len())
}

func TestReadCSV_ColumnOrderAndCase(t *testing.T) {
	data := "domains,RECIPIENTS,from,date\n[],[],x@co.com,2024-01-01\n"

	emails, err := ReadCSV(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "x@co.com", emails[0].Sender)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		message string
	}{
		{
			name:    "Empty input",
			data:    "",
			message: "missing header row",
		},
		{
			name:    "Missing column",
			data:    "Date,From,Recipients\n",
			message: `missing column "domains"`,
		},
		{
			name:    "Unparseable date aborts",
			data:    "Date,From,Recipients,Domains\n15/03/2024,a@co.com,[],[]\n",
			message: "row 2: unrecognized date",
		},
		{
			name:    "Python literal is rejected",
			data:    "Date,From,Recipients,Domains\n2024-03-15 09:00:00,a@co.com,['b@co.com'],[]\n",
			message: "row 2: recipients: malformed list literal",
		},
		{
			name:    "Non-string list entries are rejected",
			data:    "Date,From,Recipients,Domains\n2024-03-15 09:00:00,a@co.com,[],[1]\n",
			message: "row 2: domains: malformed list literal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(context.Background(), strings.NewReader(tt.data))
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func TestParseDate(t *testing.T) {
	for _, value := range []string{
		"2024-03-15 09:00:00",
		"2024-03-15T09:00:00",
		"2024-03-15T09:00:00Z",
		"Fri, 15 Mar 2024 09:00:00 +0000",
		"2024-03-15",
	} {
		parsed, err := ParseDate(value)
		if assert.NoError(t, err, value) {
			assert.Equal(t, features.Day{Year: 2024, Month: time.March, Day: 15}, features.DayOf(parsed), value)
		}
	}

	_, err := ParseDate("yesterday")
	assert.Error(t, err)
}

func TestCSVSource_LoadCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	emails, err := NewCSVSource(path, zap.NewNop()).LoadCorpus(context.Background())
	require.NoError(t, err)
	assert.Len(t, emails, 2)

	_, err = NewCSVSource(filepath.Join(t.TempDir(), "missing.csv"), zap.NewNop()).LoadCorpus(context.Background())
	assert.ErrorContains(t, err, "failed to open corpus file")
}
