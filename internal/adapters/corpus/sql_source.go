package corpus

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mikey/lateral-phish-detector/internal/features"
)

// DefaultTable is the corpus table read when none is configured
const DefaultTable = "emails"

// SQLSource reads the historical corpus from a table with the columns
// date, sender, recipients and domains. List columns hold JSON arrays.
type SQLSource struct {
	db      *sqlx.DB
	builder sq.StatementBuilderType
	table   string
	driver  string
	logger  *zap.Logger
}

// NewSQLSource wraps an open database. The placeholder format must match the driver.
func NewSQLSource(db *sqlx.DB, placeholders sq.PlaceholderFormat, table string, logger *zap.Logger) *SQLSource {
	if table == "" {
		table = DefaultTable
	}
	return &SQLSource{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholders),
		table:   table,
		driver:  db.DriverName(),
		logger:  logger,
	}
}

// corpusRow mirrors the selected columns; Date is left untyped because
// drivers disagree on how timestamps come back
type corpusRow struct {
	Date       interface{} `db:"date"`
	Sender     string      `db:"sender"`
	Recipients *string     `db:"recipients"`
	Domains    *string     `db:"domains"`
}

func (r corpusRow) raw() (rawRecord, error) {
	record := rawRecord{Sender: r.Sender}
	if r.Recipients != nil {
		record.Recipients = *r.Recipients
	}
	if r.Domains != nil {
		record.Domains = *r.Domains
	}

	switch v := r.Date.(type) {
	case time.Time:
		record.Date = v.Format(time.RFC3339Nano)
	case []byte:
		record.Date = string(v)
	case string:
		record.Date = v
	case nil:
		return rawRecord{}, fmt.Errorf("date is NULL")
	default:
		return rawRecord{}, fmt.Errorf("unsupported date type %T", v)
	}
	return record, nil
}

// LoadCorpus selects every row ordered by date
func (s *SQLSource) LoadCorpus(ctx context.Context) ([]features.HistoricalEmail, error) {
	query, args, err := s.builder.
		Select("date", "sender", "recipients", "domains").
		From(s.table).
		OrderBy("date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build corpus query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query corpus: %w", err)
	}
	defer rows.Close()

	var emails []features.HistoricalEmail
	for n := 1; rows.Next(); n++ {
		var row corpusRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("row %d: failed to scan: %w", n, err)
		}
		raw, err := row.raw()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		email, err := raw.decode()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate corpus rows: %w", err)
	}

	s.logger.Info("Loaded corpus from database",
		zap.String("driver", s.driver),
		zap.String("table", s.table),
		zap.Int("emails", len(emails)))

	return emails, nil
}

// Close closes the underlying database connection
func (s *SQLSource) Close() error {
	return s.db.Close()
}
