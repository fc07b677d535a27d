package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/osusu/internal/models"
)

const (
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLen = 72
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = fmt.Errorf("password must be %d to %d characters", minPasswordLen, maxPasswordLen)
	ErrEmailExists        = errors.New("email already registered")
	ErrMissingName        = errors.New("display name is required")
)

// UserStorage is the user persistence the authenticator needs.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// PasswordAuthenticator authenticates members by email and a bcrypt-hashed password.
type PasswordAuthenticator struct {
	storage UserStorage
	cost    int
}

// NewPasswordAuthenticator creates a PasswordAuthenticator hashing at bcrypt.DefaultCost.
func NewPasswordAuthenticator(storage UserStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{storage: storage, cost: bcrypt.DefaultCost}
}

// CanonicalEmail is the form emails are stored and looked up in.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if n := len(credential); n < minPasswordLen || n > maxPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

// Register creates an account. The phone number is kept as given so an admin who added the
// member to a group by phone can be matched on first login.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, displayName, phone, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, ErrMissingName
	}

	email = CanonicalEmail(email)
	existing, err := a.storage.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", email, err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := models.NewUser(email, displayName, strings.TrimSpace(phone), string(hash))
	if err := a.storage.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user owning email if credential matches. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByEmail(ctx, CanonicalEmail(email))
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", email, err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
