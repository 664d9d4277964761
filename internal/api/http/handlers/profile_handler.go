package handlers

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/somos-tech/profile-service/internal/api/dto"
	"github.com/somos-tech/profile-service/internal/principal"
	"github.com/somos-tech/profile-service/internal/service"
	"github.com/somos-tech/profile-service/pkg/util"
)

// ProfileHandler exposes profile read and update endpoints.
type ProfileHandler struct {
	extractor *principal.Extractor
	profiles  *service.ProfileService
	logger    *zap.Logger
}

// NewProfileHandler constructs handler.
func NewProfileHandler(extractor *principal.Extractor, profiles *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{extractor: extractor, profiles: profiles, logger: logger}
}

// Get handles GET /api/users/:id/profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	p := h.extractor.FromRequest(c)
	if p == nil {
		return util.NewUnauthorized("authentication required")
	}

	userID := c.Params("id")
	profile, err := h.profiles.Get(c.UserContext(), userID, strings.ToLower(p.Email))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}

// Update handles PUT /api/users/:id/profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	p := h.extractor.FromRequest(c)
	if p == nil {
		return util.NewUnauthorized("authentication required")
	}

	userID := c.Params("id")
	if p.UserID != "" && p.UserID != userID {
		return util.NewForbidden("cannot update another user's profile")
	}

	var payload map[string]any
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	profile, err := h.profiles.Update(c.UserContext(), p, userID, payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(profile)})
}
