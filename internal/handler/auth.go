package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tahmid-dev/clinic-records/internal/apperror"
	"github.com/tahmid-dev/clinic-records/internal/auth"
	"github.com/tahmid-dev/clinic-records/internal/model"
	"github.com/tahmid-dev/clinic-records/internal/service"
)

// AuthHandler translates the auth endpoints into AuthService calls.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignup → register + log in, set the session cookie
//   - HandleLogin  → authenticate, set the session cookie
//   - HandleLogout → invalidate the resolved session, clear the cookie
//   - HandleMe     → return the identity the middleware resolved
//
// Cookie attributes come from the SessionService — the handler never builds
// a session cookie by hand.
type AuthHandler struct {
	auths    *service.AuthService
	sessions *auth.SessionService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auths *service.AuthService, sessions *auth.SessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auths:    auths,
		sessions: sessions,
		logger:   logger,
	}
}

// signupRequest is the expected body for POST /auth/signup.
// Role is optional and defaults to assistant.
type signupRequest struct {
	Email    string     `json:"email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role,omitempty"`
}

// loginRequest is the expected body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the success body for signup and login.
type authResponse struct {
	Message string            `json:"message"`
	User    *model.PublicUser `json:"user"`
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields
// so a misspelled field fails loudly instead of silently defaulting.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}

// HandleSignup registers a new staff account.
//
// HTTP: POST /auth/signup
// BODY: {"email": "...", "password": "...", "role": "nurse"?}
//
// 201 with the public user on success; sign-up implies login, so the session
// cookie is set too. 400 on missing fields, 409 if the email is taken.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auths.SignUp(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.sessions.Cookie(result.Token))
	writeJSON(w, http.StatusCreated, authResponse{
		Message: "account created",
		User:    result.User,
	})
}

// HandleLogin authenticates an email/password pair.
//
// HTTP: POST /auth/login
// BODY: {"email": "...", "password": "..."}
//
// 200 with the public user and a fresh session cookie on success; 400 on
// missing fields; 401 on any credential mismatch. Unknown email and wrong
// password produce byte-identical responses.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.auths.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, h.sessions.Cookie(result.Token))
	writeJSON(w, http.StatusOK, authResponse{
		Message: "logged in",
		User:    result.User,
	})
}

// HandleLogout ends the current session.
//
// HTTP: POST /auth/logout
//
// WHY POST AND NOT GET?
// Logout is state-changing; GET would be CSRF-able and prefetchable.
//
// Always succeeds: the cookie is cleared client-side whether or not a
// session was resolved, and invalidating an absent session is a no-op.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if session, ok := auth.SessionFromContext(r.Context()); ok {
		if err := h.auths.Logout(r.Context(), session.Token); err != nil {
			h.logger.Warn("logout failed", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, h.sessions.ClearCookie())
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the currently authenticated user.
//
// HTTP: GET /auth/me
//
// The identity middleware already did the work; this handler only reports
// what it found. 401 for anonymous requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("authentication required"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]*model.PublicUser{"user": user})
}
