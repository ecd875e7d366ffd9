// Package domain provides core inventory types, error codes, and context
// helpers for Shelf.
//
// Services never read the session from context themselves: handlers pull it
// out once and pass it explicitly, so aggregation and reconciliation stay
// testable without a request environment.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	sessionContextKey contextKey = iota
	requestIDContextKey
)

// Session is the authenticated owner of a request: the owner identifier
// every product query is scoped to, plus the session token that proves it.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// OwnerID returns the identifier product records are scoped to.
func (s *Session) OwnerID() uuid.UUID {
	if s == nil {
		return uuid.Nil
	}
	return s.UserID
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

// --- Session Context Helpers ---

// NewContextWithSession returns a new context with the session attached.
func NewContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext retrieves the session from context.
// Returns nil if no session is present.
func SessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionContextKey).(*Session)
	return session
}

// MustSession retrieves the session from context, panicking if not present.
// Only call behind middleware that guarantees a session.
func MustSession(ctx context.Context) *Session {
	session := SessionFromContext(ctx)
	if session == nil {
		panic("session required in context but not found")
	}
	return session
}

// IsAuthenticated returns true if there is a session in context.
func IsAuthenticated(ctx context.Context) bool {
	return SessionFromContext(ctx) != nil
}

// --- Request ID Context Helpers ---

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if no request ID is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
