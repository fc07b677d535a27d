// Package errors defines the error taxonomy shared by the group engine and the RPC layer.
// Every error carries a machine-readable Kind next to its human message.
package errors

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable class of an error.
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindCapacity      Kind = "CapacityError"
	KindConflict      Kind = "ConflictError"
	KindAuthorization Kind = "AuthorizationError"
	KindNotFound      Kind = "NotFoundError"
)

// Metadata keys carrying the kind and reason of an error over RPC.
const (
	MetaKind   = "Error-Kind"
	MetaReason = "Error-Reason"
)

// Kinded is implemented by every error in this package.
type Kinded interface {
	error
	Kind() Kind
	Reason() string
}

// ValidationError represents malformed input
type ValidationError struct {
	Field   string
	Message string
	// Code is a short reason such as "NoMembersSelected"; optional.
	Code string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Kind() Kind { return KindValidation }

func (e *ValidationError) Reason() string {
	if e.Code != "" {
		return e.Code
	}
	return "InvalidArgument"
}

// Is matches validation errors carrying the same code
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}
	return t.Code == "" || e.Code == t.Code
}

// CapacityError represents a group that cannot accept more members
type CapacityError struct {
	Code    string
	Message string
}

func (e *CapacityError) Error() string { return e.Message }

func (e *CapacityError) Kind() Kind { return KindCapacity }

func (e *CapacityError) Reason() string { return e.Code }

func (e *CapacityError) Is(target error) bool {
	t, ok := target.(*CapacityError)
	return ok && (t.Code == "" || e.Code == t.Code)
}

// ConflictError represents a request that collides with existing state
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Kind() Kind { return KindConflict }

func (e *ConflictError) Reason() string { return e.Code }

func (e *ConflictError) Is(target error) bool {
	t, ok := target.(*ConflictError)
	return ok && (t.Code == "" || e.Code == t.Code)
}

// AuthorizationError represents an action the caller is not allowed to take
type AuthorizationError struct {
	Code    string
	Message string
}

func (e *AuthorizationError) Error() string { return e.Message }

func (e *AuthorizationError) Kind() Kind { return KindAuthorization }

func (e *AuthorizationError) Reason() string { return e.Code }

func (e *AuthorizationError) Is(target error) bool {
	t, ok := target.(*AuthorizationError)
	return ok && (t.Code == "" || e.Code == t.Code)
}

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

func (e *NotFoundError) Kind() Kind { return KindNotFound }

func (e *NotFoundError) Reason() string { return "NotFound" }

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return t.Entity == "" || e.Entity == t.Entity
}

// Membership errors
var (
	ErrGroupFull        = &CapacityError{Code: "GroupFull", Message: "group is full"}
	ErrAlreadyMember    = &ConflictError{Code: "AlreadyMember", Message: "user is already a member of this group"}
	ErrDuplicatePending = &ConflictError{Code: "DuplicatePending", Message: "a pending join request already exists for this user"}
)

// Governance and ledger errors
var (
	ErrUnauthorized        = &AuthorizationError{Code: "Unauthorized", Message: "not authorized to record a manual collection for this member"}
	ErrNotAdmin            = &AuthorizationError{Code: "NotAdmin", Message: "only the group admin can perform this action"}
	ErrNotMember           = &AuthorizationError{Code: "NotMember", Message: "caller is not a member of this group"}
	ErrNoCollectorSelected = &ValidationError{Code: "NoCollectorSelected", Field: "collectorId", Message: "no collector selected"}
	ErrNoMembersSelected   = &ValidationError{Code: "NoMembersSelected", Field: "assignedMemberIds", Message: "no members selected"}
	ErrOutOfTurn           = &ConflictError{Code: "OutOfTurn", Message: "member is not the current payout recipient"}
)

// Storage errors
var (
	ErrVersionConflict = &ConflictError{Code: "VersionConflict", Message: "group was modified by another writer"}
	ErrGroupNotFound   = &NotFoundError{Entity: "group"}
	ErrUserNotFound    = &NotFoundError{Entity: "user"}
)

// KindOf returns the kind of err, or "" when err is not part of this taxonomy.
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return ""
}

// ReasonOf returns the short reason code of err, or "" when err is not part of this taxonomy.
func ReasonOf(err error) string {
	var k Kinded
	if errors.As(err, &k) {
		return k.Reason()
	}
	return ""
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsConflict checks if an error is a ConflictError
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}

// IsAuthorization checks if an error is an AuthorizationError
func IsAuthorization(err error) bool {
	return KindOf(err) == KindAuthorization
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewNotFoundError creates a new NotFoundError for a custom entity
func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}
