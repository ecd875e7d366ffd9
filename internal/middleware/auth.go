package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dukerupert/shelf/internal/cookie"
	"github.com/dukerupert/shelf/internal/domain"
)

// SessionResolver turns a session token into a live session.
// service.AuthService implements it.
type SessionResolver interface {
	GetSession(ctx context.Context, token string) (*domain.Session, error)
}

// WithSession resolves the session cookie or bearer token and adds the
// session to the request context. Requests without a valid session continue
// anonymously.
func WithSession(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			session, err := resolver.GetSession(r.Context(), token)
			if err != nil {
				if !domain.IsCode(err, domain.EUNAUTHORIZED) {
					GetLogger(r.Context()).Warn("failed to resolve session", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := domain.NewContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !domain.IsAuthenticated(r.Context()) {
			respondUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionToken returns the token from the Authorization header, falling back
// to the session cookie.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return cookie.Get(r, cookie.SessionCookieName)
}
