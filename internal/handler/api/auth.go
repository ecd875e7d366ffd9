package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/shelf/internal/cookie"
	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/handler"
	"github.com/dukerupert/shelf/internal/middleware"
	"github.com/dukerupert/shelf/internal/service"
)

// AuthHandler handles sign-up, sign-in and sign-out.
type AuthHandler struct {
	auth    service.AuthService
	cookies *cookie.Config
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth service.AuthService, cookies *cookie.Config, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		auth:    auth,
		cookies: cookies,
		logger:  logger.With("handler", "auth"),
	}
}

// SessionResponse describes a live session. Token is only set when the
// session was just created.
type SessionResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token,omitempty"`
}

func sessionResponse(s *domain.Session, withToken bool) SessionResponse {
	resp := SessionResponse{
		UserID:    s.UserID.String(),
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt,
	}
	if withToken {
		resp.Token = s.Token
	}
	return resp
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var params service.SignUpParams
	if err := handler.DecodeJSON(r, &params); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	session, err := h.auth.SignUp(r.Context(), params)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.cookies.SetSession(w, session.Token, session.ExpiresAt)
	handler.WriteJSON(w, http.StatusCreated, sessionResponse(session, true))
}

// SignIn handles POST /api/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var params service.SignInParams
	if err := handler.DecodeJSON(r, &params); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	session, err := h.auth.SignIn(r.Context(), params)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.cookies.SetSession(w, session.Token, session.ExpiresAt)
	handler.WriteJSON(w, http.StatusOK, sessionResponse(session, true))
}

// SignOut handles POST /api/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.SignOut(r.Context(), middleware.SessionToken(r)); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	h.cookies.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := domain.SessionFromContext(r.Context())
	if session == nil {
		handler.UnauthorizedResponse(w, r)
		return
	}
	handler.WriteJSON(w, http.StatusOK, sessionResponse(session, false))
}
