package domain

import "strings"

// Claim is a single identity-provider claim attached to a principal.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Principal represents the authenticated caller as asserted by the
// upstream identity provider. It is rebuilt per request and never stored.
type Principal struct {
	UserID           string
	Email            string
	IdentityProvider string
	Claims           []Claim
}

// HasTrustedDomain reports whether the principal email ends with the
// given domain suffix. The email is compared lower-cased because the
// identity provider does not guarantee case consistency.
func (p *Principal) HasTrustedDomain(suffix string) bool {
	if p == nil || p.Email == "" || suffix == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(p.Email), strings.ToLower(suffix))
}
