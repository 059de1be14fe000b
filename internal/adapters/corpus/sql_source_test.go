package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/features"
)

func newSQLiteCorpus(t *testing.T, rows [][]interface{}) *SQLSource {
	t.Helper()

	source, err := NewSQLiteSource(filepath.Join(t.TempDir(), "corpus.db"), "", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { source.Close() })

	source.db.MustExec(`
		CREATE TABLE emails (
			date TEXT NOT NULL,
			sender TEXT NOT NULL,
			recipients TEXT,
			domains TEXT
		)
	`)
	for _, row := range rows {
		source.db.MustExec(`INSERT INTO emails (date, sender, recipients, domains) VALUES (?, ?, ?, ?)`, row...)
	}
	return source
}

func TestSQLSource_LoadCorpus(t *testing.T) {
	source := newSQLiteCorpus(t, [][]interface{}{
		{"2024-03-10 12:00:00", "alice@co.com", `["carol@co.com"]`, `["b.example.com"]`},
		{"2024-03-01 08:00:00", "Dave@Co.com", `["Erin@co.com"]`, nil},
	})

	emails, err := source.LoadCorpus(context.Background())
	require.NoError(t, err)
	require.Len(t, emails, 2)

	// rows come back ordered by date
	assert.Equal(t, "dave@co.com", emails[0].Sender)
	assert.Equal(t, features.NewStringSet("erin@co.com"), emails[0].Recipients)
	assert.Equal(t, 0, emails[0].Domains.Len())
	assert.Equal(t, features.NewStringSet("b.example.com"), emails[1].Domains)
}

func TestSQLSource_LoadCorpus_BadRow(t *testing.T) {
	source := newSQLiteCorpus(t, [][]interface{}{
		{"not a date", "alice@co.com", `[]`, `[]`},
	})

	_, err := source.LoadCorpus(context.Background())
	assert.ErrorContains(t, err, "row 1: unrecognized date")
}

func TestSQLSource_LoadCorpus_MissingTable(t *testing.T) {
	source, err := NewSQLiteSource(filepath.Join(t.TempDir(), "empty.db"), "archive", zap.NewNop())
	require.NoError(t, err)
	defer source.Close()

	_, err = source.LoadCorpus(context.Background())
	assert.ErrorContains(t, err, "failed to query corpus")
}
