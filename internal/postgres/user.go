package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// UserStore implements domain.UserStore using PostgreSQL.
type UserStore struct {
	db DBTX
}

var _ domain.UserStore = (*UserStore)(nil)

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(db DBTX) *UserStore {
	return &UserStore{db: db}
}

// =============================================================================
// Users
// =============================================================================

const createUser = `INSERT INTO users (email, password_hash, user_name)
VALUES ($1, $2, $3)
RETURNING id, email, user_name, password_hash, created_at`

// CreateUser inserts an account. Emails are stored lower-cased.
func (s *UserStore) CreateUser(ctx context.Context, email, passwordHash, userName string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, createUser, strings.ToLower(email), passwordHash, userName))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict("user.create", "an account with this email already exists")
		}
		return nil, domain.Remote(err, "user.create")
	}
	return u, nil
}

const getUserByEmail = `SELECT id, email, user_name, password_hash, created_at
FROM users WHERE email = $1`

// GetUserByEmail looks up an account by email.
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, getUserByEmail, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("user.get_by_email", "user", email)
		}
		return nil, domain.Remote(err, "user.get_by_email")
	}
	return u, nil
}

const updatePassword = `UPDATE users SET password_hash = $2 WHERE id = $1`

// UpdatePassword replaces the stored password hash.
func (s *UserStore) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	tag, err := s.db.Exec(ctx, updatePassword, userID, passwordHash)
	if err != nil {
		return domain.Remote(err, "user.update_password")
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("user.update_password", "user", userID.String())
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u         domain.User
		createdAt pgtype.Timestamptz
	)
	if err := row.Scan(&u.ID, &u.Email, &u.UserName, &u.PasswordHash, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = createdAt.Time
	return &u, nil
}

// =============================================================================
// Sessions
// =============================================================================

const createSession = `INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`

// CreateSession stores a session token for the user.
func (s *UserStore) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	if _, err := s.db.Exec(ctx, createSession, token, userID, expiresAt); err != nil {
		return domain.Remote(err, "session.create")
	}
	return nil
}

const getSession = `SELECT s.token, s.user_id, u.email, s.expires_at
FROM sessions s
JOIN users u ON u.id = s.user_id
WHERE s.token = $1 AND s.expires_at > now()`

// GetSession resolves a live session token.
func (s *UserStore) GetSession(ctx context.Context, token string) (*domain.Session, error) {
	var (
		session   domain.Session
		expiresAt pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, getSession, token).Scan(
		&session.Token,
		&session.UserID,
		&session.Email,
		&expiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("session.get", "session", "token")
		}
		return nil, domain.Remote(err, "session.get")
	}
	session.ExpiresAt = expiresAt.Time
	return &session, nil
}

const deleteSession = `DELETE FROM sessions WHERE token = $1`

// DeleteSession removes a session. Unknown tokens are not an error.
func (s *UserStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.Exec(ctx, deleteSession, token); err != nil {
		return domain.Remote(err, "session.delete")
	}
	return nil
}

const deleteExpiredSessions = `DELETE FROM sessions WHERE expires_at <= $1`

// DeleteExpiredSessions removes every session that expired at or before now.
func (s *UserStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteExpiredSessions, now)
	if err != nil {
		return 0, domain.Remote(err, "session.delete_expired")
	}
	return tag.RowsAffected(), nil
}
