// Package postgres implements the repository interfaces against a
// PostgreSQL database reached through the jackc/pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"newsdigest/internal/repository"
)

// ProcessedURLStore persists ProcessedUrlMark rows. CheckAndMark relies on
// the table's URL primary key and ON CONFLICT DO NOTHING to make the
// check-and-insert atomic across concurrent pollers, rather than issuing a
// separate SELECT before the INSERT.
type ProcessedURLStore struct{ db *sql.DB }

func NewProcessedURLStore(db *sql.DB) repository.ProcessedURLStore {
	return &ProcessedURLStore{db: db}
}

func (s *ProcessedURLStore) CheckAndMark(ctx context.Context, url string, firstSeen time.Time) (bool, error) {
	const query = `
INSERT INTO processed_urls (url, first_seen)
VALUES ($1, $2)
ON CONFLICT (url) DO NOTHING`
	res, err := s.db.ExecContext(ctx, query, url, firstSeen)
	if err != nil {
		return false, fmt.Errorf("CheckAndMark: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("CheckAndMark: RowsAffected: %w", err)
	}
	return n > 0, nil
}

func (s *ProcessedURLStore) ExistsBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	result := make(map[string]bool, len(urls))
	if len(urls) == 0 {
		return result, nil
	}

	const query = `SELECT url FROM processed_urls WHERE url = ANY($1)`
	rows, err := s.db.QueryContext(ctx, query, urls)
	if err != nil {
		return nil, fmt.Errorf("ExistsBatch: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("ExistsBatch: Scan: %w", err)
		}
		result[url] = true
	}
	return result, rows.Err()
}
