package domain

import "time"

// AdminStatus represents lifecycle states for an admin registry record.
type AdminStatus string

const (
	AdminStatusActive   AdminStatus = "active"
	AdminStatusInactive AdminStatus = "inactive"
	AdminStatusBlocked  AdminStatus = "blocked"
)

// Well-known role names granted by the resolver.
const (
	RoleAuthenticated = "authenticated"
	RoleAdmin         = "admin"
)

// AdminUser is the persisted registry record for a trusted-domain identity.
// Exactly one record exists per email; roles are never empty while active.
type AdminUser struct {
	ID               string
	Email            string
	Roles            []string
	Status           AdminStatus
	IdentityProvider string
	CreatedAt        time.Time
	LastLogin        time.Time
}
