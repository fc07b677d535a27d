// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers, so version checks and writes cannot interleave.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadAll returns every group document ordered by ID.
func (s *SQLiteStore) LoadAll(ctx context.Context) ([]storage.GroupDocument, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, version, body FROM group_documents ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	defer rows.Close()

	var docs []storage.GroupDocument
	for rows.Next() {
		var doc storage.GroupDocument
		var body string
		if err := rows.Scan(&doc.ID, &doc.Version, &body); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		doc.Body = []byte(body)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return docs, nil
}

// SaveAll writes the changed documents in one transaction.
func (s *SQLiteStore) SaveAll(ctx context.Context, docs []storage.GroupDocument) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, doc := range docs {
		var version int64
		var body string
		err := tx.QueryRowContext(ctx,
			"SELECT version, body FROM group_documents WHERE id = ?",
			doc.ID,
		).Scan(&version, &body)

		switch {
		case err == sql.ErrNoRows:
			_, err = tx.ExecContext(ctx,
				"INSERT INTO group_documents (id, version, body, updated_at) VALUES (?, ?, ?, ?)",
				doc.ID, doc.Version+1, string(doc.Body), now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert group %s: %w", doc.ID, err)
			}
		case err != nil:
			return fmt.Errorf("failed to read group %s: %w", doc.ID, err)
		case bytes.Equal([]byte(body), doc.Body):
			// unchanged
		case version != doc.Version:
			return fmt.Errorf("group %s: stored version %d, written %d: %w", doc.ID, version, doc.Version, apperrors.ErrVersionConflict)
		default:
			_, err = tx.ExecContext(ctx,
				"UPDATE group_documents SET version = ?, body = ?, updated_at = ? WHERE id = ? AND version = ?",
				version+1, string(doc.Body), now, doc.ID, version,
			)
			if err != nil {
				return fmt.Errorf("failed to update group %s: %w", doc.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// TrustScores returns every stored trust score.
func (s *SQLiteStore) TrustScores(ctx context.Context) (map[string]float64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT user_id, score FROM trust_scores")
	if err != nil {
		return nil, fmt.Errorf("failed to get trust scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var userID string
		var score float64
		if err := rows.Scan(&userID, &score); err != nil {
			return nil, fmt.Errorf("failed to scan trust score: %w", err)
		}
		scores[userID] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trust scores: %w", err)
	}

	return scores, nil
}

// SetTrustScore stores the trust score for a user, replacing any previous value.
func (s *SQLiteStore) SetTrustScore(ctx context.Context, userID string, score float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO trust_scores (user_id, score) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET score = excluded.score`,
		userID, score,
	)
	if err != nil {
		return fmt.Errorf("failed to set trust score: %w", err)
	}
	return nil
}
