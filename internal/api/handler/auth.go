package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/dashboard/internal/api/middleware"
	"github.com/ledgerline/dashboard/internal/api/response"
	"github.com/ledgerline/dashboard/internal/auth"
)

// SessionIssuer signs session tokens for authenticated users.
type SessionIssuer interface {
	Issue(u *auth.User) (string, time.Time, error)
}

// AuthHandler handles POST /login and POST /logout.
type AuthHandler struct {
	authenticator auth.Authenticator
	sessions      SessionIssuer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authenticator auth.Authenticator, sessions SessionIssuer) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, sessions: sessions}
}

type loginUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type loginResponse struct {
	RedirectTo string    `json:"redirectTo"`
	ExpiresAt  time.Time `json:"expiresAt"`
	User       loginUser `json:"user"`
}

// Login authenticates the email and password form fields and sets the session
// cookie. A credential mismatch is reported as "Invalid credentials."; any
// other failure is a 500.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	requestID := middleware.GetRequestID(r.Context())

	user, msg, err := auth.Login(r.Context(), h.authenticator, r.FormValue("email"), r.FormValue("password"))
	if err != nil {
		slog.Error("authentication failed", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong.", requestID)
		return
	}
	if msg != "" {
		response.Err(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", msg, requestID)
		return
	}

	token, exp, err := h.sessions.Issue(user)
	if err != nil {
		slog.Error("failed to issue session", "error", err, "requestId", requestID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong.", requestID)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	response.Success(w, http.StatusOK, loginResponse{
		RedirectTo: auth.SafeRedirect(r.FormValue("redirectTo")),
		ExpiresAt:  exp.UTC(),
		User:       loginUser{ID: user.ID, Name: user.Name, Email: user.Email},
	}, requestID)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	response.NoContent(w)
}
