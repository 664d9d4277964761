package worker

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/somos-tech/profile-service/internal/events"
	"github.com/somos-tech/profile-service/internal/registry"
)

// ReviewWorker persists review flags emitted by the moderation gate so a
// human can triage them later. Failures are logged only; the originating
// request has already been answered.
type ReviewWorker struct {
	flags  registry.ReviewFlagStore
	logger *zap.Logger
}

// NewReviewWorker builds the worker.
func NewReviewWorker(flags registry.ReviewFlagStore, logger *zap.Logger) *ReviewWorker {
	return &ReviewWorker{flags: flags, logger: logger}
}

// Register subscribes the worker to review-flag events.
func (w *ReviewWorker) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventProfileReviewFlagged, w.handleReviewFlagged)
}

func (w *ReviewWorker) handleReviewFlagged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ProfileReviewFlaggedPayload)
	if !ok {
		w.logger.Warn("unexpected review flag payload", zap.Any("payload", event.Payload))
		return nil
	}

	tierFlow, err := json.Marshal(payload.TierFlow)
	if err != nil {
		tierFlow = nil
	}

	flag := &registry.ReviewFlag{
		UserID:    event.UserID,
		ContentID: payload.ContentID,
		Workflow:  payload.Workflow,
		Subject:   payload.Subject,
		TierFlow:  tierFlow,
	}
	if err := w.flags.Create(ctx, flag); err != nil {
		w.logger.Error("failed to persist review flag",
			zap.String("user_id", event.UserID),
			zap.String("content_id", payload.ContentID),
			zap.Error(err))
		return err
	}

	w.logger.Info("profile update flagged for review",
		zap.String("user_id", event.UserID),
		zap.String("content_id", payload.ContentID))
	return nil
}
