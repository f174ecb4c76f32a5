package ports

import (
	"context"

	"github.com/universeos/dashboard/internal/core/domain"
)

// Credentials carries a login attempt.
type Credentials struct {
	Username string
	Password string
}

// ProfileUpdate is a partial session update; nil fields are left unchanged.
// A non-nil Permissions slice replaces the permission set wholesale.
type ProfileUpdate struct {
	Username         *string
	Email            *string
	TwoFactorEnabled *bool
	SecurityScore    *int
	Permissions      []string
}

// SessionStore holds the authenticated identity and is the authority for
// all permission checks.
type SessionStore interface {
	// Authenticate verifies credentials, replaces any prior session,
	// persists the new one durably, and returns an API token plus the
	// session. Fails with domain.ErrInvalidCredentials.
	Authenticate(ctx context.Context, creds Credentials) (string, *domain.Session, error)

	// Logout clears the in-memory session and its durable copy. Idempotent.
	Logout(ctx context.Context) error

	// UpdateProfile merges fields into the current session, persists, and
	// returns the merged session. Fails with domain.ErrNoSession when
	// unauthenticated.
	UpdateProfile(ctx context.Context, update ProfileUpdate) (*domain.Session, error)

	// Current returns a copy of the active session, or false when
	// unauthenticated.
	Current() (*domain.Session, bool)

	// HasPermission is a pure check against current session state.
	HasPermission(permission string) bool
}

// UserRecord is a directory entry backing authentication.
type UserRecord struct {
	ID               string
	Username         string
	Email            string
	PasswordHash     string
	Role             string
	Permissions      []string
	SecurityScore    int
	TwoFactorEnabled bool
}

// UserDirectory resolves login names to user records.
type UserDirectory interface {
	FindByUsername(ctx context.Context, username string) (*UserRecord, error)
}
