package events

import (
	"time"

	"github.com/somos-tech/profile-service/internal/moderation"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventProfileUpdated       EventType = "profile_updated"
	EventProfileReviewFlagged EventType = "profile_review_flagged"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ProfileUpdatedPayload payload.
type ProfileUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// ProfileReviewFlaggedPayload payload.
type ProfileReviewFlaggedPayload struct {
	ContentID string                `json:"content_id"`
	Workflow  string                `json:"workflow"`
	Subject   string                `json:"subject"`
	TierFlow  []moderation.TierStep `json:"tier_flow"`
}
