package reputation

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadRanks(t *testing.T) {
	data := "1,google.com\n2, Example.COM \n3,microsoft.com\n10,example.com\n"

	ranks, err := ReadRanks(context.Background(), strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, map[string]int{
		"google.com":    1,
		"example.com":   2,
		"microsoft.com": 3,
	}, ranks)
}

func TestReadRanks_Header(t *testing.T) {
	ranks, err := ReadRanks(context.Background(), strings.NewReader("Rank,Domain\n5,a.com\n"))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a.com": 5}, ranks)
}

func TestReadRanks_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		message string
	}{
		{"Extra column", "1,a.com,x\n", "row 1: expected 2 columns"},
		{"Bad rank", "1,a.com\nfirst,b.com\n", `row 2: invalid rank "first"`},
		{"Header after first row", "1,a.com\nrank,domain\n", "row 2: invalid rank"},
		{"Zero rank", "0,a.com\n", "rank must be positive"},
		{"Empty domain", "1, \n", "row 1: empty domain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRanks(context.Background(), strings.NewReader(tt.data))
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func writeZip(t *testing.T, path string, entries map[string]string, order []string) {
	t.Helper()

	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	w := zip.NewWriter(file)
	for _, name := range order {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
}

func TestCSVSource_LoadRanks(t *testing.T) {
	dir := t.TempDir()

	t.Run("Plain file", func(t *testing.T) {
		path := filepath.Join(dir, "top.csv")
		require.NoError(t, os.WriteFile(path, []byte("1,google.com\n"), 0o644))

		ranks, err := NewCSVSource(path, zap.NewNop()).LoadRanks(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, ranks["google.com"])
	})

	t.Run("Zip archive uses first csv entry", func(t *testing.T) {
		path := filepath.Join(dir, "top-1m.csv.zip")
		writeZip(t, path, map[string]string{
			"README.txt": "not a table",
			"top-1m.csv": "1,google.com\n2,facebook.com\n",
			"backup.csv": "1,other.com\n",
		}, []string{"README.txt", "top-1m.csv", "backup.csv"})

		ranks, err := NewCSVSource(path, zap.NewNop()).LoadRanks(context.Background())
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"google.com": 1, "facebook.com": 2}, ranks)
	})

	t.Run("Zip archive without csv", func(t *testing.T) {
		path := filepath.Join(dir, "empty.zip")
		writeZip(t, path, map[string]string{"a.txt": "x"}, []string{"a.txt"})

		_, err := NewCSVSource(path, zap.NewNop()).LoadRanks(context.Background())
		assert.ErrorContains(t, err, "no .csv entry")
	})

	t.Run("Missing file", func(t *testing.T) {
		_, err := NewCSVSource(filepath.Join(dir, "missing.csv"), zap.NewNop()).LoadRanks(context.Background())
		assert.ErrorContains(t, err, "failed to open reputation table")
	})
}
