package service

import (
	"errors"
	"testing"
	"time"

	"github.com/canhigher/ing-hubs-case/internal/domain"
	"github.com/canhigher/ing-hubs-case/pkg/auth"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	store := newTestStore(t)
	tokens := auth.NewManager("test-secret", time.Hour)
	return NewAuthService(store, tokens, testLogger())
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService(t)

	user, err := svc.Register("alice", "alice@example.com", "s3cret", "")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != domain.RoleCustomer {
		t.Errorf("Role = %s, want CUSTOMER default", user.Role)
	}
	if user.PasswordHash == "s3cret" {
		t.Error("password must not be stored in plaintext")
	}

	token, logged, err := svc.Login("alice", "s3cret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Error("expected a token")
	}
	if logged.ID != user.ID {
		t.Errorf("logged in user ID = %d, want %d", logged.ID, user.ID)
	}
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newAuthService(t)

	if _, err := svc.Register("bob", "bob@example.com", "pw", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := svc.Register("bob", "other@example.com", "pw", ""); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Errorf("error = %v, want ErrUsernameTaken", err)
	}
	if _, err := svc.Register("other", "bob@example.com", "pw", ""); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("error = %v, want ErrEmailTaken", err)
	}
}

func TestLoginFailures(t *testing.T) {
	svc := newAuthService(t)

	if _, err := svc.Register("carol", "carol@example.com", "pw", domain.RoleAdmin); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := svc.Login("carol", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login("nobody", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}
