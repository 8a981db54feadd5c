// Package ingest provides the SQLite staging store validated chunks land
// in before export. The store preserves insertion order, which becomes
// the bundle's row order, and collapses duplicate ids.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gurukul-labs/gurukul/internal/models"
)

// Store is a SQLite-backed staging area for validated chunks.
type Store struct {
	db *sql.DB
}

// Open opens or creates the staging database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		class INTEGER NOT NULL,
		subject TEXT NOT NULL,
		chapter INTEGER NOT NULL,
		language TEXT NOT NULL,
		textbook TEXT NOT NULL,
		tokens INTEGER NOT NULL,
		hash TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_scope ON chunks(class, subject, chapter);
	`
	_, err := db.Exec(schema)
	return err
}

// PutBatch inserts a batch of validated chunks in one transaction.
// A chunk whose id already exists is skipped (content-derived ids make
// this the de-duplication path). The batch lands atomically: any failure
// rolls back every insert.
func (s *Store) PutBatch(ctx context.Context, chunks []*models.Chunk) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO chunks (id, class, subject, chapter, language, textbook, tokens, hash, text, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	inserted := 0
	for _, c := range chunks {
		res, err := stmt.ExecContext(ctx,
			c.ID, c.Class, c.Subject, c.Chapter, c.Language, c.Textbook, c.Tokens, c.Hash, c.Text, now)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert chunk %s: %w", c.ID, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}
	return inserted, nil
}

// All returns every staged chunk in insertion order. Embeddings are not
// stored here; they are computed at export time.
func (s *Store) All(ctx context.Context) ([]*models.Chunk, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, class, subject, chapter, language, textbook, tokens, hash, text
		 FROM chunks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*models.Chunk
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(&c.ID, &c.Class, &c.Subject, &c.Chapter, &c.Language,
			&c.Textbook, &c.Tokens, &c.Hash, &c.Text); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	return chunks, rows.Err()
}

// Count returns the number of staged chunks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// Clear removes all staged chunks. Used after a successful export when
// the staging area should start fresh for the next bundle.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks`)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
