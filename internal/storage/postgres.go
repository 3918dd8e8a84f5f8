package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/deusflow/thainews/internal/logger"
	"github.com/deusflow/thainews/internal/news"
)

// PostgresArchive mirrors every stored record into PostgreSQL. Unlike the
// file store it is never truncated, so it keeps the full history.
type PostgresArchive struct {
	db *sql.DB
}

// NewPostgresArchive connects and makes sure the schema exists.
func NewPostgresArchive(ctx context.Context, connectionString string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	archive := &PostgresArchive{db: db}
	if err := archive.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("postgres archive connected")
	return archive, nil
}

func (pa *PostgresArchive) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS news_records (
		id SERIAL PRIMARY KEY,
		link TEXT UNIQUE NOT NULL,
		source VARCHAR(100) NOT NULL,
		title TEXT NOT NULL,
		translated TEXT NOT NULL,
		recorded_at TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_news_records_source ON news_records(source);
	`

	if _, err := pa.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Archive inserts records in one transaction. Links already archived are left untouched.
func (pa *PostgresArchive) Archive(ctx context.Context, records []news.Record) error {
	tx, err := pa.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO news_records (link, source, title, translated, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (link) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.Link, r.Source, r.Title, r.Translated, r.Timestamp); err != nil {
			return fmt.Errorf("failed to archive %s: %w", r.Link, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of archived records.
func (pa *PostgresArchive) Count(ctx context.Context) (int, error) {
	var total int
	if err := pa.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news_records`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (pa *PostgresArchive) Close() error {
	if pa.db != nil {
		return pa.db.Close()
	}
	return nil
}
