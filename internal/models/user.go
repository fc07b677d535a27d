package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
// Users become group members by creating a group, by an approved join request,
// or by an admin adding them directly.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// DisplayName is the name shown to other members.
	DisplayName string

	// Phone is optional; it is matched against members added from a contact list.
	Phone string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last account change.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, phone, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Ref returns the identity descriptor used by group operations.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.DisplayName, Phone: u.Phone}
}
