package corpus

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// NewSQLiteSource opens a SQLite corpus database
func NewSQLiteSource(path, table string, logger *zap.Logger) (*SQLSource, error) {
	db, err := open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return NewSQLSource(db, sq.Question, table, logger), nil
}

// NewMySQLSource opens a MySQL corpus database
func NewMySQLSource(dsn, table string, logger *zap.Logger) (*SQLSource, error) {
	db, err := open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}
	return NewSQLSource(db, sq.Question, table, logger), nil
}

// NewPostgresSource opens a PostgreSQL corpus database
func NewPostgresSource(dsn, table string, logger *zap.Logger) (*SQLSource, error) {
	db, err := open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}
	return NewSQLSource(db, sq.Dollar, table, logger), nil
}

func open(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
