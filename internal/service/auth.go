// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses, sets cookies
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the database
//
// Services accept primitives and return domain models plus apperror values;
// they know nothing about HTTP. Handlers translate apperror to status codes.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tahmid-dev/clinic-records/internal/apperror"
	"github.com/tahmid-dev/clinic-records/internal/auth"
	"github.com/tahmid-dev/clinic-records/internal/model"
	"github.com/tahmid-dev/clinic-records/internal/repository"
)

// AuthService orchestrates sign-up, login, and logout.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users    repository.UserRepository → read/write staff accounts
//   - sessions *auth.SessionService      → issue/revoke sessions
//   - hasher   *auth.PasswordHasher      → argon2id hashing
//   - logger   *slog.Logger              → structured logging
type AuthService struct {
	users    repository.UserRepository
	sessions *auth.SessionService
	hasher   *auth.PasswordHasher
	logger   *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	sessions *auth.SessionService,
	hasher *auth.PasswordHasher,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		logger:   logger,
	}
}

// AuthResult bundles the authenticated user and the issued session token so
// the handler can set the cookie and respond in one step.
type AuthResult struct {
	User  *model.PublicUser
	Token string
}

// SignUp registers a new staff account and immediately logs it in.
//
// Rules:
//   - email and password are required (validation error)
//   - role defaults to assistant; an unknown role is a validation error
//   - a registered email is a conflict
//   - sign-up implies login: a session is created for the new account
func (s *AuthService) SignUp(ctx context.Context, email, password string, role model.Role) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	if role == "" {
		role = model.DefaultRole
	}
	if !role.IsValid() {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("unknown role %q", role))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	// The repository generates the ID and maps a duplicate email to
	// apperror.Conflict, which the handler turns into a 409.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: creating session for new user %s: %w", user.ID, err)
	}

	s.logger.Info("user signed up",
		slog.String("userID", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &AuthResult{User: user.Public(), Token: session.Token}, nil
}

// Login authenticates an email/password pair and issues a session.
//
// USER ENUMERATION:
// An unknown email and a wrong password return the SAME apperror.Unauthorized
// value — the response must not reveal which emails have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// NotFound deliberately collapses into the same generic response
		// as a wrong password. Real store failures are logged but also
		// answered generically — login either works or it doesn't.
		s.logger.Info("login rejected", slog.String("email", email))
		return nil, apperror.Unauthorized("invalid email or password")
	}

	if !s.hasher.Verify(user.PasswordHash, password) {
		s.logger.Info("login rejected", slog.String("email", email))
		return nil, apperror.Unauthorized("invalid email or password")
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: creating session for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user.Public(), Token: session.Token}, nil
}

// Logout invalidates the given session token. Idempotent: logging out with
// no session, or with one that's already gone, succeeds.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Invalidate(ctx, token); err != nil {
		// Best effort — the handler clears the cookie regardless, so a
		// failed row delete only means the row dies at expiry instead.
		s.logger.Warn("logout: invalidating session failed", slog.String("error", err.Error()))
	}
	return nil
}
