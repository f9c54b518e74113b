package auth

import (
	"context"
	"net/http"

	"github.com/tahmid-dev/clinic-records/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "user", u), ANY package that knows the string "user"
// can read or shadow your value. Using a package-private type prevents
// collisions: only THIS package can create a key of type contextKey, so only
// this package can read or write identity values in the context.
type contextKey string

const (
	userKey    contextKey = "user"
	sessionKey contextKey = "session"
)

// WithIdentity is the identity resolution middleware. It runs once per
// inbound request, before any route-specific logic: it reads the session
// cookie, resolves it through the SessionService, and attaches the result
// (identity or absence thereof) to the request context.
//
// IT NEVER BLOCKS A REQUEST. A missing cookie is the normal anonymous state,
// an invalid or expired token collapses to anonymous, and so does any auth
// subsystem fault — authorization decisions belong to RequireRole and the
// handlers, not here. Downstream code reads the result via UserFromContext
// and SessionFromContext.
func WithIdentity(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				token = cookie.Value
			}

			session, user := sessions.Validate(r.Context(), token)
			if session != nil && user != nil {
				ctx := context.WithValue(r.Context(), sessionKey, session)
				ctx = context.WithValue(ctx, userKey, user)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext retrieves the authenticated user from the request context.
//
// Returns (nil, false) if the request is anonymous.
//
// Usage in handlers:
//
//	user, ok := auth.UserFromContext(r.Context())
//	if !ok {
//	    // anonymous request
//	}
func UserFromContext(ctx context.Context) (*model.PublicUser, bool) {
	user, ok := ctx.Value(userKey).(*model.PublicUser)
	return user, ok && user != nil
}

// SessionFromContext retrieves the resolved session from the request context.
// Returns (nil, false) for anonymous requests. Used by logout to know which
// session row to delete.
func SessionFromContext(ctx context.Context) (*model.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*model.Session)
	return session, ok && session != nil
}
