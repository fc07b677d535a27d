package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/osusu/internal/models"
)

const userColumns = "id, email, display_name, phone, password_hash, created_at, updated_at"

// CreateUser stores a registered account. Emails are unique.
func (s *SQLiteStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.DisplayName, u.Phone, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.ID, err)
	}
	return nil
}

// GetUserByEmail returns nil, nil when no account uses email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.userWhere(ctx, "email = ?", email)
}

// GetUserByID returns nil, nil when id is unknown.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.userWhere(ctx, "id = ?", id)
}

func (s *SQLiteStore) userWhere(ctx context.Context, cond string, arg any) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+cond, arg).
		Scan(&u.ID, &u.Email, &u.DisplayName, &u.Phone, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("select user where %s: %w", cond, err)
	}
	return &u, nil
}
