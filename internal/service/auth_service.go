package service

import (
	"fmt"
	"log/slog"

	"github.com/canhigher/ing-hubs-case/internal/domain"
	"github.com/canhigher/ing-hubs-case/pkg/auth"
	"github.com/canhigher/ing-hubs-case/pkg/security"
)

// AuthService registers users and exchanges credentials for JWTs. The user
// id is the customer id that assets and orders reference.
type AuthService struct {
	store  domain.Store
	tokens *auth.Manager
	log    *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(store domain.Store, tokens *auth.Manager, log *slog.Logger) *AuthService {
	return &AuthService{store: store, tokens: tokens, log: log}
}

// Register creates a user with a hashed password. Username and email must be
// unique. An empty role defaults to CUSTOMER.
func (s *AuthService) Register(username, email, password string, role domain.Role) (*domain.User, error) {
	if role == "" {
		role = domain.RoleCustomer
	}

	hash, err := security.HashPassword(password, security.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	err = s.store.Transaction(func(tx domain.Store) error {
		existing, err := tx.Users().FindByUsername(username)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrUsernameTaken
		}

		existing, err = tx.Users().FindByEmail(email)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrEmailTaken
		}

		return tx.Users().Save(user)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered",
		slog.String("username", username),
		slog.String("role", string(role)))
	return user, nil
}

// Login verifies the credentials and issues a token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(username, password string) (string, *domain.User, error) {
	user, err := s.store.Users().FindByUsername(username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		s.log.Warn("failed login attempt", slog.String("username", username))
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GetUser returns the user for an authenticated id, or nil when it no longer
// exists.
func (s *AuthService) GetUser(id uint) (*domain.User, error) {
	return s.store.Users().FindByID(id)
}
