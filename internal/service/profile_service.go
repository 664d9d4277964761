package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/somos-tech/profile-service/internal/domain"
	"github.com/somos-tech/profile-service/internal/events"
	"github.com/somos-tech/profile-service/internal/moderation"
	"github.com/somos-tech/profile-service/internal/registry"
	"github.com/somos-tech/profile-service/internal/validation"
	"github.com/somos-tech/profile-service/pkg/util"
)

// ProfileService coordinates validated, moderation-gated profile mutations.
type ProfileService struct {
	profiles   registry.ProfileStore
	gate       *moderation.Gate
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewProfileService builds the service.
func NewProfileService(profiles registry.ProfileStore, gate *moderation.Gate, dispatcher events.Dispatcher, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		profiles:   profiles,
		gate:       gate,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Get loads a profile by user id, falling back to the actor email for
// identities migrated across providers.
func (s *ProfileService) Get(ctx context.Context, userID, fallbackEmail string) (*domain.UserProfile, error) {
	profile, err := s.lookup(ctx, userID, fallbackEmail)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Update validates the payload, runs the moderation gate, and persists
// the mutation. A blocked verdict surfaces as MODERATION_BLOCKED; an
// allowed-with-review verdict persists normally and flags the update for
// human triage.
func (s *ProfileService) Update(ctx context.Context, actor *domain.Principal, userID string, payload map[string]any) (*domain.UserProfile, error) {
	update, err := validation.ValidateProfileUpdate(payload)
	if err != nil {
		return nil, err
	}

	actorEmail := ""
	if actor != nil {
		actorEmail = strings.ToLower(actor.Email)
	}

	profile, err := s.lookup(ctx, userID, actorEmail)
	if err != nil {
		return nil, err
	}

	result := s.gate.Evaluate(ctx, gateFields(update), moderation.Actor{UserID: userID, Email: actorEmail})
	if result.Decision == moderation.DecisionBlock {
		return nil, util.NewModerationBlocked(result.Reason, map[string]any{"action": "block"})
	}

	applyUpdate(profile, update)
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, util.MapError(err)
	}

	if result.Decision == moderation.DecisionAllowWithReview {
		s.publishReviewFlag(ctx, userID, result)
	}

	return profile, nil
}

func (s *ProfileService) lookup(ctx context.Context, userID, fallbackEmail string) (*domain.UserProfile, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) && fallbackEmail != "" {
		profile, err = s.profiles.GetByEmail(ctx, fallbackEmail)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("user profile", map[string]any{"user_id": userID})
	}
	if err != nil {
		return nil, util.MapError(err)
	}
	return profile, nil
}

// publishReviewFlag records the review flag for downstream triage. The
// mutation has already been committed; dispatch failure is logged only.
func (s *ProfileService) publishReviewFlag(ctx context.Context, userID string, result moderation.Result) {
	var tierFlow []moderation.TierStep
	if result.Verdict != nil {
		tierFlow = result.Verdict.TierFlow
	}

	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventProfileReviewFlagged,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Payload: events.ProfileReviewFlaggedPayload{
			ContentID: "profile-" + userID,
			Workflow:  "profile",
			Subject:   result.Subject,
			TierFlow:  tierFlow,
		},
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish review flag", zap.String("user_id", userID), zap.Error(err))
	}
}

// gateFields returns the text-bearing fields present in the update, in a
// stable order.
func gateFields(update *validation.ProfileUpdate) []string {
	fields := make([]string, 0, 3)
	if update.DisplayName != nil {
		fields = append(fields, *update.DisplayName)
	}
	if update.Bio != nil {
		fields = append(fields, *update.Bio)
	}
	if update.Website != nil {
		fields = append(fields, *update.Website)
	}
	return fields
}

func applyUpdate(profile *domain.UserProfile, update *validation.ProfileUpdate) {
	if update.DisplayName != nil {
		profile.DisplayName = *update.DisplayName
	}
	if update.ProfilePictureSet {
		profile.ProfilePicture = update.ProfilePicture
	}
	if update.BioSet {
		profile.Bio = update.Bio
	}
	if update.Location != nil {
		profile.Location = *update.Location
	}
	if update.WebsiteSet {
		profile.Website = update.Website
	}
	if update.ShowLocation != nil {
		profile.ShowLocation = *update.ShowLocation
	}
}
