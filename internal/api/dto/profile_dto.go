package dto

// ProfileResponse is the caller-visible projection of a user profile.
// Internal bookkeeping fields (statusChangedBy) are deliberately absent.
type ProfileResponse struct {
	UserID         string  `json:"userId"`
	Email          string  `json:"email"`
	DisplayName    string  `json:"displayName"`
	ProfilePicture *string `json:"profilePicture"`
	Bio            *string `json:"bio"`
	Location       string  `json:"location"`
	Website        *string `json:"website"`
	ShowLocation   bool    `json:"showLocation"`
	Status         string  `json:"status,omitempty"`
}

// RolesResponse is the role-check envelope; always rendered with HTTP 200.
type RolesResponse struct {
	Roles []string `json:"roles"`
}
