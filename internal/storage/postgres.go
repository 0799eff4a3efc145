package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
)

// PostgresStore keeps announced articles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects and makes sure the schema exists.
func NewPostgresStore(ctx context.Context, connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("postgres article store connected")
	return store, nil
}

func (ps *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT UNIQUE NOT NULL,
		summary TEXT,
		added_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_articles_added_at ON articles(added_at);
	`
	if _, err := ps.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (ps *PostgresStore) Exists(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := ps.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM articles WHERE url = $1)`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check article: %w", err)
	}
	return exists, nil
}

func (ps *PostgresStore) Add(ctx context.Context, title, url, summary string) (int64, bool, error) {
	var id int64
	err := ps.db.QueryRowContext(ctx, `
		INSERT INTO articles (title, url, summary)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (url) DO NOTHING
		RETURNING id`, title, url, summary).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("insert article: %w", err)
	}
	return id, true, nil
}

func (ps *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := ps.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
