package auth

import (
	"context"

	"github.com/mmynk/osusu/internal/models"
)

// Authenticator registers and signs in members. Group membership is keyed on the returned
// user's ID, so every implementation must hand back a stable one.
type Authenticator interface {
	Register(ctx context.Context, email, displayName, phone, credential string) (*models.User, error)
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
