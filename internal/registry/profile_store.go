package registry

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/somos-tech/profile-service/internal/domain"
)

// ProfileStore defines persistence access for user profiles.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	Upsert(ctx context.Context, profile *domain.UserProfile) error
}

type pgProfileStore struct {
	pool *pgxpool.Pool
}

// NewProfileStore returns a Postgres-backed implementation.
func NewProfileStore(pool *pgxpool.Pool) ProfileStore {
	return &pgProfileStore{pool: pool}
}

const profileColumns = `
        user_id, email, display_name, profile_picture, bio, location, website,
        show_location, status, status_changed_by, created_at, updated_at`

func (s *pgProfileStore) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE user_id=$1`
	return s.scanOne(ctx, query, userID)
}

// GetByEmail supports lookups for identities migrated across providers,
// where the provider-scoped user id changed but the email did not.
func (s *pgProfileStore) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM user_profiles WHERE email=$1`
	return s.scanOne(ctx, query, email)
}

func (s *pgProfileStore) scanOne(ctx context.Context, query, arg string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := s.pool.QueryRow(ctx, query, arg).Scan(
		&p.UserID,
		&p.Email,
		&p.DisplayName,
		&p.ProfilePicture,
		&p.Bio,
		&p.Location,
		&p.Website,
		&p.ShowLocation,
		&p.Status,
		&p.StatusChangedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *pgProfileStore) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	const query = `
        INSERT INTO user_profiles
            (user_id, email, display_name, profile_picture, bio, location, website,
             show_location, status, status_changed_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        ON CONFLICT (user_id) DO UPDATE
        SET email=EXCLUDED.email,
            display_name=EXCLUDED.display_name,
            profile_picture=EXCLUDED.profile_picture,
            bio=EXCLUDED.bio,
            location=EXCLUDED.location,
            website=EXCLUDED.website,
            show_location=EXCLUDED.show_location,
            updated_at=NOW()`

	_, err := s.pool.Exec(ctx, query,
		profile.UserID,
		profile.Email,
		profile.DisplayName,
		profile.ProfilePicture,
		profile.Bio,
		profile.Location,
		profile.Website,
		profile.ShowLocation,
		profile.Status,
		profile.StatusChangedBy,
	)
	return err
}
