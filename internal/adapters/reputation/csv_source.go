package reputation

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// CSVSource reads a domain popularity list of rank,domain rows, either as a
// plain file or as the first .csv entry of a zip archive
type CSVSource struct {
	path   string
	logger *zap.Logger
}

// NewCSVSource creates a new reputation source
func NewCSVSource(path string, logger *zap.Logger) *CSVSource {
	return &CSVSource{
		path:   path,
		logger: logger,
	}
}

// LoadRanks reads the whole table
func (s *CSVSource) LoadRanks(ctx context.Context) (map[string]int, error) {
	var (
		ranks map[string]int
		err   error
	)

	if strings.EqualFold(filepath.Ext(s.path), ".zip") {
		ranks, err = s.loadZip(ctx)
	} else {
		ranks, err = s.loadFile(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loaded reputation table",
		zap.String("path", s.path),
		zap.Int("domains", len(ranks)))

	return ranks, nil
}

func (s *CSVSource) loadFile(ctx context.Context) (map[string]int, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reputation table: %w", err)
	}
	defer file.Close()

	ranks, err := ReadRanks(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return ranks, nil
}

func (s *CSVSource) loadZip(ctx context.Context) (map[string]int, error) {
	archive, err := zip.OpenReader(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reputation archive: %w", err)
	}
	defer archive.Close()

	for _, entry := range archive.File {
		if entry.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(entry.Name), ".csv") {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s in %s: %w", entry.Name, s.path, err)
		}
		defer rc.Close()

		ranks, err := ReadRanks(ctx, rc)
		if err != nil {
			return nil, fmt.Errorf("%s!%s: %w", s.path, entry.Name, err)
		}
		return ranks, nil
	}

	return nil, fmt.Errorf("no .csv entry found in %s", s.path)
}

// ReadRanks decodes rank,domain rows. A leading header row is skipped and a
// domain listed twice keeps its lowest rank.
func ReadRanks(ctx context.Context, r io.Reader) (map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	ranks := make(map[string]int)
	for row := 1; ; row++ {
		if row%100000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if len(record) != 2 {
			return nil, fmt.Errorf("row %d: expected 2 columns, got %d", row, len(record))
		}

		rankField := strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff"))
		domain := strings.ToLower(strings.TrimSpace(record[1]))

		rank, err := strconv.Atoi(rankField)
		if err != nil {
			if row == 1 && strings.EqualFold(rankField, "rank") {
				continue
			}
			return nil, fmt.Errorf("row %d: invalid rank %q", row, rankField)
		}
		if rank <= 0 {
			return nil, fmt.Errorf("row %d: rank must be positive, got %d", row, rank)
		}
		if domain == "" {
			return nil, fmt.Errorf("row %d: empty domain", row)
		}

		if existing, ok := ranks[domain]; !ok || rank < existing {
			ranks[domain] = rank
		}
	}

	return ranks, nil
}
