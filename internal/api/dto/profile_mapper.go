package dto

import "github.com/somos-tech/profile-service/internal/domain"

// NewProfileResponse maps a domain profile to its public projection.
func NewProfileResponse(p *domain.UserProfile) ProfileResponse {
	return ProfileResponse{
		UserID:         p.UserID,
		Email:          p.Email,
		DisplayName:    p.DisplayName,
		ProfilePicture: p.ProfilePicture,
		Bio:            p.Bio,
		Location:       p.Location,
		Website:        p.Website,
		ShowLocation:   p.ShowLocation,
		Status:         p.Status,
	}
}
