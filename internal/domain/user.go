package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// USER / PROFILE DOMAIN TYPES
// =============================================================================

// User is an account that owns a catalog.
type User struct {
	ID           uuid.UUID
	Email        string
	UserName     string
	PasswordHash string
	CreatedAt    time.Time
}

// DefaultCountry is used when a user has no profile row yet.
const DefaultCountry = "US"

// Country is a selectable profile country with its display currency.
type Country struct {
	Code     string `json:"code"`
	Currency string `json:"currency"`
	Symbol   string `json:"symbol"`
}

// Countries lists the supported profile countries.
var Countries = []Country{
	{Code: "US", Currency: "USD", Symbol: "$"},
	{Code: "GB", Currency: "GBP", Symbol: "£"},
	{Code: "EU", Currency: "EUR", Symbol: "€"},
	{Code: "JP", Currency: "JPY", Symbol: "¥"},
	{Code: "IN", Currency: "INR", Symbol: "₹"},
}

// LookupCountry returns the country with the given code.
func LookupCountry(code string) (Country, bool) {
	for _, c := range Countries {
		if c.Code == code {
			return c, true
		}
	}
	return Country{}, false
}

// Profile holds the editable profile fields of a user.
type Profile struct {
	UserID         uuid.UUID `json:"user_id"`
	UserName       string    `json:"user_name"`
	Country        string    `json:"country"`
	ProfilePicture string    `json:"profile_picture"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// DefaultProfile is the profile shown before a user has saved one.
func DefaultProfile(userID uuid.UUID) *Profile {
	return &Profile{
		UserID:  userID,
		Country: DefaultCountry,
	}
}

// UpsertProfileParams updates a profile row, creating it when missing.
// Nil fields are left as they are.
type UpsertProfileParams struct {
	UserID         uuid.UUID
	UserName       *string
	Country        *string
	ProfilePicture *string
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// ProfileStore persists user profiles.
type ProfileStore interface {
	// GetProfile returns ENOTFOUND when the user has no profile row.
	GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpsertProfile(ctx context.Context, params UpsertProfileParams) (*Profile, error)
}

// UserStore persists accounts and their sessions.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash, userName string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error

	CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	// GetSession returns ENOTFOUND for unknown or expired tokens.
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}
