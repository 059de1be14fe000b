package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/features"
)

// CSVSource reads the historical corpus from a CSV file with a header row
// naming the Date, From, Recipients and Domains columns
type CSVSource struct {
	path   string
	logger *zap.Logger
}

// NewCSVSource creates a new CSV corpus source
func NewCSVSource(path string, logger *zap.Logger) *CSVSource {
	return &CSVSource{
		path:   path,
		logger: logger,
	}
}

// LoadCorpus reads every row of the file. Any malformed row aborts the load.
func (s *CSVSource) LoadCorpus(ctx context.Context) ([]features.HistoricalEmail, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer file.Close()

	emails, err := ReadCSV(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	s.logger.Info("Loaded corpus from CSV",
		zap.String("path", s.path),
		zap.Int("emails", len(emails)))

	return emails, nil
}

var csvColumns = []string{"date", "from", "recipients", "domains"}

// ReadCSV decodes a corpus CSV stream
func ReadCSV(ctx context.Context, r io.Reader) ([]features.HistoricalEmail, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, column := range csvColumns {
		if _, ok := index[column]; !ok {
			return nil, fmt.Errorf("missing column %q", column)
		}
	}

	field := func(record []string, column string) string {
		i := index[column]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	var emails []features.HistoricalEmail
	for row := 2; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		email, err := rawRecord{
			Date:       field(record, "date"),
			Sender:     field(record, "from"),
			Recipients: field(record, "recipients"),
			Domains:    field(record, "domains"),
		}.decode()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		emails = append(emails, email)
	}

	return emails, nil
}
