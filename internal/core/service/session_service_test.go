package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

func newTestDirectory(t *testing.T) *stubDirectory {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &stubDirectory{users: map[string]*ports.UserRecord{
		"alice": {
			ID:               "user-123",
			Username:         "alice",
			Email:            "alice@example.com",
			PasswordHash:     string(hash),
			Role:             domain.RoleStandard,
			Permissions:      []string{"dashboard:view", "dashboard:edit"},
			SecurityScore:    95,
			TwoFactorEnabled: true,
		},
	}}
}

func newTestSessions(t *testing.T, kv *stubKV) *SessionService {
	t.Helper()
	return NewSessionService(newTestDirectory(t), kv, "test-secret", time.Hour, zerolog.Nop())
}

func TestAuthenticate_Success(t *testing.T) {
	kv := newStubKV()
	store := newTestSessions(t, kv)

	token, sess, err := store.Authenticate(context.Background(), ports.Credentials{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a signed token")
	}
	if sess.UserID != "user-123" || sess.Role != domain.RoleStandard {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if _, ok := store.Current(); !ok {
		t.Fatalf("store should be authenticated")
	}

	raw, ok, _ := kv.Get(context.Background(), sessionKey)
	if !ok {
		t.Fatalf("session not persisted")
	}
	var persisted domain.Session
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("persisted session not decodable: %v", err)
	}
	if persisted.UserID != "user-123" {
		t.Fatalf("persisted wrong session: %+v", persisted)
	}
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	store := newTestSessions(t, newStubKV())
	ctx := context.Background()

	tests := []struct {
		name  string
		creds ports.Credentials
	}{
		{"wrong password", ports.Credentials{Username: "alice", Password: "nope"}},
		{"unknown user", ports.Credentials{Username: "mallory", Password: "s3cret"}},
		{"empty username", ports.Credentials{Password: "s3cret"}},
		{"empty password", ports.Credentials{Username: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := store.Authenticate(ctx, tt.creds)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
	if _, ok := store.Current(); ok {
		t.Fatalf("failed logins must not establish a session")
	}
}

func TestAuthenticate_ReplacesPriorSession(t *testing.T) {
	store := newTestSessions(t, newStubKV())
	ctx := context.Background()

	if _, _, err := store.Authenticate(ctx, ports.Credentials{Username: "alice", Password: "s3cret"}); err != nil {
		t.Fatalf("first login: %v", err)
	}
	username := "renamed"
	if _, err := store.UpdateProfile(ctx, ports.ProfileUpdate{Username: &username}); err != nil {
		t.Fatalf("update: %v", err)
	}

	_, sess, err := store.Authenticate(ctx, ports.Credentials{Username: "alice", Password: "s3cret"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if sess.Username != "alice" {
		t.Fatalf("re-authenticate should replace the session wholesale, got %+v", sess)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	kv := newStubKV()
	store := newTestSessions(t, kv)
	ctx := context.Background()

	if _, _, err := store.Authenticate(ctx, ports.Credentials{Username: "alice", Password: "s3cret"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := store.Logout(ctx); err != nil {
		t.Fatalf("first logout: %v", err)
	}
	if _, ok := store.Current(); ok {
		t.Fatalf("still authenticated after logout")
	}
	if _, ok, _ := kv.Get(ctx, sessionKey); ok {
		t.Fatalf("durable session copy not removed")
	}

	// Logging out twice is a no-op.
	if err := store.Logout(ctx); err != nil {
		t.Fatalf("second logout should be a no-op, got %v", err)
	}
}

func TestUpdateProfile_NoSession(t *testing.T) {
	store := newTestSessions(t, newStubKV())
	email := "new@example.com"

	_, err := store.UpdateProfile(context.Background(), ports.ProfileUpdate{Email: &email})
	if !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestUpdateProfile_MergesAndPersists(t *testing.T) {
	kv := newStubKV()
	store := newTestSessions(t, kv)
	ctx := context.Background()

	if _, _, err := store.Authenticate(ctx, ports.Credentials{Username: "alice", Password: "s3cret"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	email := "alice@universe.os"
	score := 99
	merged, err := store.UpdateProfile(ctx, ports.ProfileUpdate{Email: &email, SecurityScore: &score})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if merged.Email != email || merged.SecurityScore != 99 {
		t.Fatalf("fields not merged: %+v", merged)
	}
	if merged.Username != "alice" {
		t.Fatalf("untouched fields must survive the merge: %+v", merged)
	}

	current, ok := store.Current()
	if !ok || current.Email != email {
		t.Fatalf("store state not updated: %+v", current)
	}
}

func TestHasPermission_AdminGrantsEverything(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("root"), bcrypt.MinCost)
	dir := &stubDirectory{users: map[string]*ports.UserRecord{
		"root": {ID: "u-admin", Username: "root", PasswordHash: string(hash), Role: domain.RoleAdmin, Permissions: nil},
	}}
	store := NewSessionService(dir, newStubKV(), "test-secret", time.Hour, zerolog.Nop())

	if _, _, err := store.Authenticate(context.Background(), ports.Credentials{Username: "root", Password: "root"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	for _, p := range []string{"dashboard:view", "quantum:run_jobs", "made:up:permission", ""} {
		if !store.HasPermission(p) {
			t.Fatalf("admin must hold permission %q regardless of the explicit set", p)
		}
	}
}

func TestHasPermission_ExplicitSet(t *testing.T) {
	store := newTestSessions(t, newStubKV())
	if _, _, err := store.Authenticate(context.Background(), ports.Credentials{Username: "alice", Password: "s3cret"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	if !store.HasPermission("dashboard:view") {
		t.Fatalf("granted permission rejected")
	}
	if store.HasPermission("quantum:run_jobs") {
		t.Fatalf("ungranted permission accepted")
	}
}

func TestHasPermission_Unauthenticated(t *testing.T) {
	store := newTestSessions(t, newStubKV())
	if store.HasPermission("dashboard:view") {
		t.Fatalf("no session means no permissions")
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	kv := newStubKV()
	first := newTestSessions(t, kv)
	ctx := context.Background()
	if _, _, err := first.Authenticate(ctx, ports.Credentials{Username: "alice", Password: "s3cret"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	second := newTestSessions(t, kv)
	second.Restore(ctx)
	if _, ok := second.Current(); !ok {
		t.Fatalf("persisted session should restore")
	}
	sess, _ := second.Current()
	if sess.UserID != "user-123" {
		t.Fatalf("restored wrong session: %+v", sess)
	}
}

func TestRestore_MalformedIsUnauthenticated(t *testing.T) {
	kv := newStubKV()
	_ = kv.Set(context.Background(), sessionKey, "{corrupt")

	store := newTestSessions(t, kv)
	store.Restore(context.Background())
	if _, ok := store.Current(); ok {
		t.Fatalf("malformed record must be treated as unauthenticated")
	}
}
