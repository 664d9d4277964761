package domain

import "time"

// UserProfile is the persisted public profile keyed by the provider user id.
// Email serves as a fallback lookup key across identity-provider migrations.
type UserProfile struct {
	UserID         string
	Email          string
	DisplayName    string
	ProfilePicture *string
	Bio            *string
	Location       string
	Website        *string
	ShowLocation   bool
	Status         string
	// StatusChangedBy is internal bookkeeping and must never be rendered
	// to callers.
	StatusChangedBy string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
