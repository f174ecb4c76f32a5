package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin     = "admin"
	RolePowerUser = "power_user"
	RoleStandard  = "standard"
	RoleGuest     = "guest"
	RoleDeveloper = "developer"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrNoSession = errors.New("no active session")
var ErrUserNotFound = errors.New("user not found")

// Session is the authenticated identity for the current process, including
// the permission set used for every permission check.
type Session struct {
	UserID           string    `json:"user_id"`
	Username         string    `json:"username"`
	Email            string    `json:"email,omitempty"`
	Role             string    `json:"role"`
	Permissions      []string  `json:"permissions"`
	SecurityScore    int       `json:"security_score"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	LastLogin        time.Time `json:"last_login"`
}

// HasPermission reports whether the session grants the given permission.
// The admin role implicitly grants every permission regardless of the
// explicit permission set.
func (s *Session) HasPermission(permission string) bool {
	if s == nil {
		return false
	}
	if s.Role == RoleAdmin {
		return true
	}
	for _, p := range s.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate the store's session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Permissions = append([]string(nil), s.Permissions...)
	return &clone
}
