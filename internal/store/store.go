package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/commercekit/shopchat/models"
)

// Store persists knowledge entries in Postgres and serves ranked full-text
// search over them. One table holds every category; the orchestrator sees each
// category as an independent knowledge source.
type Store struct {
	DB *sql.DB
}

// Open creates a Store without verifying the connection. Pair with WaitReady
// when the database may still be starting.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// NewWithDSN opens a Postgres connection and verifies it
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// searchText builds the text document that full-text search runs against,
// combining the entry fields the way customers would describe them.
func searchText(e models.KnowledgeEntry) string {
	parts := []string{
		fmt.Sprintf("Name: %s", e.Name),
		fmt.Sprintf("Description: %s", e.Description),
	}
	if len(e.Tags) > 0 {
		parts = append(parts, fmt.Sprintf("Tags: %s", strings.Join(e.Tags, ", ")))
	}
	if len(e.Data) > 0 {
		parts = append(parts, fmt.Sprintf("Details: %s", string(e.Data)))
	}
	return strings.Join(parts, " | ")
}

// UpsertEntry inserts or replaces a knowledge entry. A missing id is generated.
func (s *Store) UpsertEntry(ctx context.Context, e models.KnowledgeEntry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	data := e.Data
	if len(data) == 0 {
		data = []byte(`{}`)
	}
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO knowledge_entries (id, category, name, description, tags, data, search_text, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
ON CONFLICT (id) DO UPDATE SET
  category = EXCLUDED.category,
  name = EXCLUDED.name,
  description = EXCLUDED.description,
  tags = EXCLUDED.tags,
  data = EXCLUDED.data,
  search_text = EXCLUDED.search_text,
  updated_at = NOW();
`, e.ID, e.Category, e.Name, e.Description, pq.Array(e.Tags), data, searchText(e))
	if err != nil {
		return "", fmt.Errorf("upsert entry: %w", err)
	}
	return e.ID, nil
}

// GetEntry fetches a single entry by id within a category
func (s *Store) GetEntry(ctx context.Context, category, id string) (models.KnowledgeEntry, error) {
	var e models.KnowledgeEntry
	var tags pq.StringArray
	err := s.DB.QueryRowContext(ctx, `
SELECT id, category, name, description, tags, data, created_at, updated_at
FROM knowledge_entries WHERE id=$1 AND category=$2`, id, category).
		Scan(&e.ID, &e.Category, &e.Name, &e.Description, &tags, &e.Data, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.KnowledgeEntry{}, models.ErrEntryNotFound
	}
	if err != nil {
		return models.KnowledgeEntry{}, fmt.Errorf("get entry: %w", err)
	}
	e.Tags = tags
	return e, nil
}

// DeleteEntry removes an entry by id within a category
func (s *Store) DeleteEntry(ctx context.Context, category, id string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM knowledge_entries WHERE id=$1 AND category=$2`, id, category)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrEntryNotFound
	}
	return nil
}

// ListEntries returns entries of a category, newest first
func (s *Store) ListEntries(ctx context.Context, category string, limit int) ([]models.KnowledgeEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, category, name, description, tags, data, created_at, updated_at
FROM knowledge_entries WHERE category=$1 ORDER BY updated_at DESC LIMIT $2`, category, limit)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []models.KnowledgeEntry
	for rows.Next() {
		var e models.KnowledgeEntry
		var tags pq.StringArray
		if err := rows.Scan(&e.ID, &e.Category, &e.Name, &e.Description, &tags, &e.Data, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		e.Tags = tags
		out = append(out, e)
	}
	return out, rows.Err()
}

// SearchEntries runs ranked full-text search within a category. Scores are
// ts_rank values clamped to [0,1], descending; ties keep Postgres row order,
// which is stable for identical statements.
func (s *Store) SearchEntries(ctx context.Context, category, query string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, search_text, LEAST(ts_rank(to_tsvector('english', search_text), plainto_tsquery('english', $2)), 1.0) AS score
FROM knowledge_entries
WHERE category=$1 AND to_tsvector('english', search_text) @@ plainto_tsquery('english', $2)
ORDER BY score DESC LIMIT $3`, category, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	defer rows.Close()

	var out []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.ID, &r.Text, &r.Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// WaitReady pings the database until it responds or the deadline passes.
// Used at startup so the service can come up before Postgres does.
func (s *Store) WaitReady(ctx context.Context, deadline time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()
	for {
		if err := s.DB.PingContext(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}
