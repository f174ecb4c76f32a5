package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

const sessionKey = "userProfile"

// SessionService implements ports.SessionStore. It owns the Session
// exclusively; everything else asks it for permission checks.
type SessionService struct {
	directory ports.UserDirectory
	kv        ports.KeyValueStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger

	mu      sync.Mutex
	current *domain.Session
}

func NewSessionService(directory ports.UserDirectory, kv ports.KeyValueStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *SessionService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &SessionService{
		directory: directory,
		kv:        kv,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// Restore attempts to load a previously persisted session. A malformed or
// absent record leaves the store unauthenticated; it is never fatal.
func (s *SessionService) Restore(ctx context.Context) {
	raw, ok, err := s.kv.Get(ctx, sessionKey)
	if err != nil {
		s.log.Warn().Err(err).Msg("session restore failed, starting unauthenticated")
		return
	}
	if !ok {
		return
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil || sess.UserID == "" {
		s.log.Warn().Msg("malformed persisted session discarded")
		return
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.log.Info().Str("user_id", sess.UserID).Msg("session restored")
}

// Authenticate verifies credentials against the user directory, replaces any
// prior session, persists the new one, and returns a signed API token.
func (s *SessionService) Authenticate(ctx context.Context, creds ports.Credentials) (string, *domain.Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.directory.FindByUsername(ctx, creds.Username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	sess := &domain.Session{
		UserID:           user.ID,
		Username:         user.Username,
		Email:            user.Email,
		Role:             user.Role,
		Permissions:      append([]string(nil), user.Permissions...),
		SecurityScore:    user.SecurityScore,
		TwoFactorEnabled: user.TwoFactorEnabled,
		LastLogin:        time.Now().UTC(),
	}

	if err := s.persist(ctx, sess); err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(sess)
	if err != nil {
		return "", nil, err
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	s.log.Info().Str("user_id", sess.UserID).Str("role", sess.Role).Msg("authenticated")
	return token, sess.Clone(), nil
}

// Logout clears the in-memory session and its durable copy. Logging out
// twice is a no-op.
func (s *SessionService) Logout(ctx context.Context) error {
	s.mu.Lock()
	wasAuthenticated := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, sessionKey); err != nil {
		s.log.Warn().Err(err).Msg("failed to remove persisted session")
	}
	if wasAuthenticated {
		s.log.Info().Msg("logged out")
	}
	return nil
}

// UpdateProfile merges non-nil fields into the current session, persists the
// merged session, and returns it.
func (s *SessionService) UpdateProfile(ctx context.Context, update ports.ProfileUpdate) (*domain.Session, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, domain.ErrNoSession
	}
	merged := s.current.Clone()
	s.mu.Unlock()

	if update.Username != nil {
		merged.Username = *update.Username
	}
	if update.Email != nil {
		merged.Email = *update.Email
	}
	if update.TwoFactorEnabled != nil {
		merged.TwoFactorEnabled = *update.TwoFactorEnabled
	}
	if update.SecurityScore != nil {
		merged.SecurityScore = *update.SecurityScore
	}
	if update.Permissions != nil {
		merged.Permissions = append([]string(nil), update.Permissions...)
	}

	if err := s.persist(ctx, merged); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = merged
	s.mu.Unlock()

	return merged.Clone(), nil
}

func (s *SessionService) Current() (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	return s.current.Clone(), true
}

// HasPermission is a pure function of current session state: true when the
// permission is in the session's set or the role is admin.
func (s *SessionService) HasPermission(permission string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.HasPermission(permission)
}

func (s *SessionService) persist(ctx context.Context, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, sessionKey, string(raw))
}

func (s *SessionService) generateToken(sess *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"user_id":     sess.UserID,
		"username":    sess.Username,
		"role":        sess.Role,
		"permissions": sess.Permissions,
		"exp":         time.Now().Add(s.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
