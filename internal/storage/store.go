// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/osusu/internal/models"
)

// GroupDocument is one stored group: its JSON body and the version it was written with.
// The body may use an older schema; callers decode it leniently.
type GroupDocument struct {
	ID      string
	Version int64
	Body    []byte
}

// GroupRepository persists the whole group collection.
// This abstraction allows swapping storage backends (SQLite, MongoDB)
// without changing the service layer.
type GroupRepository interface {
	// LoadAll returns every stored group document.
	LoadAll(ctx context.Context) ([]GroupDocument, error)

	// SaveAll writes the documents whose body changed. A document whose stored version
	// differs from doc.Version fails the whole call with errors.ErrVersionConflict.
	// Documents absent from docs are left untouched.
	SaveAll(ctx context.Context, docs []GroupDocument) error
}

// TrustStore provides the external per-user trust signal used in priority scoring.
type TrustStore interface {
	// TrustScores returns the trust score of every known user. Missing users score 0.
	TrustScores(ctx context.Context) (map[string]float64, error)
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns nil and no error when the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns nil and no error when the user does not exist.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Store is the full persistence surface of the server.
type Store interface {
	GroupRepository
	TrustStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}
