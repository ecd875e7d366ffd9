package postgres

import (
	"context"
	"errors"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ProfileStore implements domain.ProfileStore using PostgreSQL.
type ProfileStore struct {
	db DBTX
}

var _ domain.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates a new PostgreSQL-backed profile store.
func NewProfileStore(db DBTX) *ProfileStore {
	return &ProfileStore{db: db}
}

const profileColumns = `user_id, user_name, country, profile_picture, updated_at`

const getProfile = `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id = $1`

// GetProfile returns the user's profile row, or ENOTFOUND when there is none.
func (s *ProfileStore) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, getProfile, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("profile.get", "profile", userID.String())
		}
		return nil, domain.Remote(err, "profile.get")
	}
	return p, nil
}

// Columns left NULL in the arguments keep their stored value on update.
const upsertProfile = `INSERT INTO user_profiles (user_id, user_name, country, profile_picture, updated_at)
VALUES ($1, COALESCE($2, ''), COALESCE($3, 'US'), COALESCE($4, ''), now())
ON CONFLICT (user_id) DO UPDATE SET
	user_name = COALESCE($2, user_profiles.user_name),
	country = COALESCE($3, user_profiles.country),
	profile_picture = COALESCE($4, user_profiles.profile_picture),
	updated_at = now()
RETURNING ` + profileColumns

// UpsertProfile creates or updates the profile row.
func (s *ProfileStore) UpsertProfile(ctx context.Context, params domain.UpsertProfileParams) (*domain.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(ctx, upsertProfile,
		params.UserID,
		pgTextFromPtr(params.UserName),
		pgTextFromPtr(params.Country),
		pgTextFromPtr(params.ProfilePicture),
	))
	if err != nil {
		return nil, domain.Remote(err, "profile.upsert")
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var (
		p         domain.Profile
		updatedAt pgtype.Timestamptz
	)
	if err := row.Scan(&p.UserID, &p.UserName, &p.Country, &p.ProfilePicture, &updatedAt); err != nil {
		return nil, err
	}
	p.UpdatedAt = updatedAt.Time
	return &p, nil
}
