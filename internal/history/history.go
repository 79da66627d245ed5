// Package history persists terminal generation results so users can
// revisit what a tool produced. Writes are fire-and-forget from the
// engine's point of view; nothing here is ever read back into a session.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Record is one archived generation result.
type Record struct {
	ID          string    `json:"id"`
	Tool        string    `json:"tool"`
	ContentType string    `json:"contentType"`
	Keyword     string    `json:"keyword"`
	Status      string    `json:"status"`
	Score       int       `json:"score"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is a sqlite-backed archive of generation results.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the archive at dbPath and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generation_history (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		content_type TEXT NOT NULL,
		keyword TEXT,
		status TEXT NOT NULL,
		score INTEGER NOT NULL,
		content TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_history_tool ON generation_history(tool, created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save archives one result. A missing ID is filled in.
func (s *Store) Save(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_history (id, tool, content_type, keyword, status, score, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Tool, rec.ContentType, rec.Keyword, rec.Status, rec.Score, rec.Content, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// List returns the most recent records, newest first. A non-empty tool
// filters to that tool; limit ≤ 0 means 50.
func (s *Store) List(ctx context.Context, tool string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, tool, content_type, keyword, status, score, content, created_at
		FROM generation_history`
	args := []interface{}{}
	if tool != "" {
		query += ` WHERE tool = ?`
		args = append(args, tool)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Tool, &rec.ContentType, &rec.Keyword, &rec.Status, &rec.Score, &rec.Content, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Clear removes records. A non-empty tool limits the purge to that tool.
// Returns the number of rows removed.
func (s *Store) Clear(ctx context.Context, tool string) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if tool == "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM generation_history`)
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM generation_history WHERE tool = ?`, tool)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
