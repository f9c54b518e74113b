// Package auth — session lifecycle.
//
// SESSION-BASED AUTHENTICATION OVERVIEW:
// 1. Sign-up or login creates a session row {token, user_id, expires_at}
//    and sets the token in an HttpOnly cookie
// 2. On every request, middleware reads the cookie and calls Validate
// 3. Validate looks up the session AND its owning user, lazily evicting
//    expired or orphaned rows, and extends the expiry when the session is
//    past the halfway point of its lifetime ("sliding expiration")
// 4. Logout deletes the row and clears the cookie
//
// Unlike a signed stateless token, a session row can be revoked instantly by
// deleting it — the store is the single source of truth.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tahmid-dev/clinic-records/internal/apperror"
	"github.com/tahmid-dev/clinic-records/internal/model"
	"github.com/tahmid-dev/clinic-records/internal/repository"
)

const (
	// SessionLifetime is how long a freshly created or refreshed session
	// remains valid.
	SessionLifetime = 7 * 24 * time.Hour

	// SessionCookieName is the cookie the session token travels in.
	SessionCookieName = "session"

	// tokenBytes is the entropy of a session token: 32 bytes = 256 bits,
	// enough that guessing a live token is infeasible.
	tokenBytes = 32
)

// SessionService creates, validates, refreshes, and invalidates sessions,
// and decides the cookie attributes the transport layer must apply.
//
// DEPENDENCIES (injected via NewSessionService):
//   - sessions repository.SessionRepository → session rows
//   - users    repository.UserRepository    → resolve the owning user
//   - secure   bool                         → Secure cookie flag (true outside local dev)
//
// now is a clock hook so tests can move time around without sleeping.
type SessionService struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	secure   bool
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionService creates a SessionService. secure controls the cookie's
// Secure attribute and should be true in any deployment behind HTTPS.
func NewSessionService(
	sessions repository.SessionRepository,
	users repository.UserRepository,
	secure bool,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
		secure:   secure,
		logger:   logger,
		now:      time.Now,
	}
}

// newToken generates a cryptographically random session token.
//
// base64.RawURLEncoding keeps the token cookie-safe (no padding '=' or '/').
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: generating session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create issues a new session for the given user and persists it.
//
// No user-existence check happens here: the callers (sign-up and login) have
// just created or authenticated the user, so the precondition holds by
// construction.
func (s *SessionService) Create(ctx context.Context, userID string) (*model.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &model.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(SessionLifetime),
		CreatedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("auth: persisting session: %w", err)
	}

	return session, nil
}

// Validate resolves a session token to its session and owning user.
//
// Returns (nil, nil) — the anonymous state — when the token is empty,
// unknown, expired, or orphaned, and ALSO when the store itself fails:
// an unreachable store means "not authenticated", never a crash. Validation
// sits on the hot path of every request, so a store outage must degrade the
// API to anonymous access rather than take it down.
//
// SLIDING EXPIRATION:
// When less than half of SessionLifetime remains, the expiry is pushed out
// to now+SessionLifetime and persisted before returning. Two concurrent
// requests can both trigger the extension; both write the same new expiry,
// so the race is harmless and deliberately left untransacted. The expiry
// only ever moves forward.
//
// The returned PublicUser carries only id, email, and role — the password
// hash never leaves this layer.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.Session, *model.PublicUser) {
	if token == "" {
		return nil, nil
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		s.logger.Warn("session lookup failed", slog.String("error", err.Error()))
		return nil, nil
	}
	if session == nil {
		return nil, nil
	}

	now := s.now()
	if session.Expired(now) {
		// Lazy eviction: expired rows are inert until touched, then deleted.
		if err := s.sessions.Delete(ctx, token); err != nil {
			s.logger.Warn("deleting expired session failed", slog.String("error", err.Error()))
		}
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			// Self-healing: a session whose owner is gone is invalid.
			// Delete it so the orphan doesn't linger in the store.
			if delErr := s.sessions.Delete(ctx, token); delErr != nil {
				s.logger.Warn("deleting orphaned session failed", slog.String("error", delErr.Error()))
			}
		} else {
			s.logger.Warn("user lookup failed during session validation", slog.String("error", err.Error()))
		}
		return nil, nil
	}

	if session.ExpiresAt.Sub(now) < SessionLifetime/2 {
		session.ExpiresAt = now.Add(SessionLifetime)
		if err := s.sessions.UpdateExpiry(ctx, token, session.ExpiresAt); err != nil {
			s.logger.Warn("extending session failed", slog.String("error", err.Error()))
			return nil, nil
		}
	}

	return session, user.Public()
}

// Invalidate deletes the session record for the given token.
// Idempotent: invalidating an absent or already-deleted token is not an error.
func (s *SessionService) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("auth: invalidating session: %w", err)
	}
	return nil
}

// InvalidateAllForUser deletes every session owned by the given user —
// the "log out everywhere" operation, e.g. after a password reset.
func (s *SessionService) InvalidateAllForUser(ctx context.Context, userID string) error {
	if err := s.sessions.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("auth: invalidating sessions for user %s: %w", userID, err)
	}
	return nil
}

// Cookie builds the session cookie carrying the given token.
//
// HttpOnly and SameSite=Lax are non-negotiable: HttpOnly keeps the token out
// of reach of injected scripts, Lax stops the browser attaching it to basic
// cross-site POSTs. Secure is driven by the deployment environment.
func (s *SessionService) Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie builds the cookie that tells the browser to drop the session
// cookie immediately (MaxAge -1).
func (s *SessionService) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
