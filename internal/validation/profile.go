package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/somos-tech/profile-service/pkg/util"
)

const (
	maxDisplayNameLen = 100
	maxBioLen         = 500
)

// allowedProfileFields is the mutation whitelist; anything else is rejected.
var allowedProfileFields = map[string]struct{}{
	"displayName":    {},
	"profilePicture": {},
	"bio":            {},
	"location":       {},
	"website":        {},
	"showLocation":   {},
}

// ProfileUpdate is a normalized, validated mutation payload. Pointer
// fields distinguish "absent" from "present"; the Set flags additionally
// distinguish "present as null" (clear the stored value) for nullable
// fields.
type ProfileUpdate struct {
	DisplayName       *string
	ProfilePicture    *string
	ProfilePictureSet bool
	Bio               *string
	BioSet            bool
	Location          *string
	Website           *string
	WebsiteSet        bool
	ShowLocation      *bool
}

// ValidateProfileUpdate checks the raw payload against the field whitelist
// and per-field shape rules, failing fast on the first violation. On
// success it returns the normalized payload (displayName trimmed).
func ValidateProfileUpdate(payload map[string]any) (*ProfileUpdate, error) {
	for key := range payload {
		if _, ok := allowedProfileFields[key]; !ok {
			return nil, util.NewValidationError(
				fmt.Sprintf("field %q is not allowed", key),
				map[string]any{"field": key},
			)
		}
	}

	update := &ProfileUpdate{}

	if raw, ok := payload["showLocation"]; ok {
		val, ok := raw.(bool)
		if !ok {
			return nil, util.NewValidationError("showLocation must be a boolean", map[string]any{"field": "showLocation"})
		}
		update.ShowLocation = &val
	}

	if raw, ok := payload["displayName"]; ok {
		val, ok := raw.(string)
		trimmed := strings.TrimSpace(val)
		if !ok || trimmed == "" {
			return nil, util.NewValidationError("displayName must be a non-empty string", map[string]any{"field": "displayName"})
		}
		if utf8.RuneCountInString(trimmed) > maxDisplayNameLen {
			return nil, util.NewValidationError(
				fmt.Sprintf("displayName must be %d characters or fewer", maxDisplayNameLen),
				map[string]any{"field": "displayName"},
			)
		}
		update.DisplayName = &trimmed
	}

	if raw, ok := payload["profilePicture"]; ok {
		update.ProfilePictureSet = true
		if raw != nil {
			val, ok := raw.(string)
			if !ok || !isValidURL(val) {
				return nil, util.NewValidationError("profilePicture must be a valid URL", map[string]any{"field": "profilePicture"})
			}
			update.ProfilePicture = &val
		}
	}

	if raw, ok := payload["bio"]; ok {
		update.BioSet = true
		if raw != nil {
			val, ok := raw.(string)
			if !ok {
				return nil, util.NewValidationError("bio must be a string", map[string]any{"field": "bio"})
			}
			if utf8.RuneCountInString(val) > maxBioLen {
				return nil, util.NewValidationError(
					fmt.Sprintf("bio must be %d characters or fewer", maxBioLen),
					map[string]any{"field": "bio"},
				)
			}
			update.Bio = &val
		}
	}

	if raw, ok := payload["location"]; ok {
		val, ok := raw.(string)
		if !ok {
			return nil, util.NewValidationError("location must be a string", map[string]any{"field": "location"})
		}
		update.Location = &val
	}

	if raw, ok := payload["website"]; ok {
		update.WebsiteSet = true
		if raw != nil {
			val, ok := raw.(string)
			if !ok || !isValidURL(val) {
				return nil, util.NewValidationError("website must be a valid URL", map[string]any{"field": "website"})
			}
			update.Website = &val
		}
	}

	return update, nil
}

func isValidURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}
