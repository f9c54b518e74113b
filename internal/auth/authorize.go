package auth

import (
	"net/http"
	"slices"

	"github.com/tahmid-dev/clinic-records/internal/apperror"
	"github.com/tahmid-dev/clinic-records/internal/model"
)

// Authorize is the authorization gate: a pure decision over the resolved
// identity and a required role set. It has no side effects and touches no
// store — it only inspects what the identity middleware already resolved.
//
// Rules:
//   - no identity                          → ErrUnauthorized ("authentication required")
//   - roles given, user's role not in them → ErrForbidden ("insufficient permissions")
//   - otherwise                            → nil (an empty role set means
//     "any authenticated identity")
func Authorize(user *model.PublicUser, roles ...model.Role) error {
	if user == nil {
		return apperror.Unauthorized("authentication required")
	}
	if len(roles) > 0 && !slices.Contains(roles, user.Role) {
		return apperror.Forbidden("insufficient permissions")
	}
	return nil
}

// RequireRole wraps Authorize as route middleware for chi route groups.
//
// It assumes WithIdentity already ran (it reads the context, not the
// cookie). With no roles it simply requires an authenticated user.
// Rejections use the same JSON error shape as the rest of the API.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := UserFromContext(r.Context())
			if err := Authorize(user, roles...); err != nil {
				status := http.StatusUnauthorized
				kind := "unauthorized"
				if user != nil {
					status = http.StatusForbidden
					kind = "forbidden"
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				w.Write([]byte(`{"error":"` + kind + `","message":"` + err.Error() + `"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
