package registry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewFlag records a profile update that was allowed but queued for
// human triage.
type ReviewFlag struct {
	ID        string
	UserID    string
	ContentID string
	Workflow  string
	Subject   string
	TierFlow  []byte
	CreatedAt time.Time
}

// ReviewFlagStore persists moderation review flags.
type ReviewFlagStore interface {
	Create(ctx context.Context, flag *ReviewFlag) error
}

type pgReviewFlagStore struct {
	pool *pgxpool.Pool
}

// NewReviewFlagStore returns a Postgres-backed implementation.
func NewReviewFlagStore(pool *pgxpool.Pool) ReviewFlagStore {
	return &pgReviewFlagStore{pool: pool}
}

func (s *pgReviewFlagStore) Create(ctx context.Context, flag *ReviewFlag) error {
	const query = `
        INSERT INTO review_flags (id, user_id, content_id, workflow, subject, tier_flow, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	if flag.ID == "" {
		flag.ID = uuid.NewString()
	}
	_, err := s.pool.Exec(ctx, query,
		flag.ID,
		flag.UserID,
		flag.ContentID,
		flag.Workflow,
		flag.Subject,
		flag.TierFlow,
	)
	return err
}
