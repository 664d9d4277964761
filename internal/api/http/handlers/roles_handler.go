package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/somos-tech/profile-service/internal/api/dto"
	"github.com/somos-tech/profile-service/internal/principal"
	"github.com/somos-tech/profile-service/internal/service"
)

// RolesHandler exposes the role-check endpoint.
type RolesHandler struct {
	extractor *principal.Extractor
	resolver  *service.RoleResolver
	logger    *zap.Logger
}

// NewRolesHandler constructs handler.
func NewRolesHandler(extractor *principal.Extractor, resolver *service.RoleResolver, logger *zap.Logger) *RolesHandler {
	return &RolesHandler{extractor: extractor, resolver: resolver, logger: logger}
}

// GetRoles handles GET/POST /api/auth/roles.
//
// The response is always HTTP 200 with a roles array, even when
// resolution fails internally. Surfacing authorization-subsystem failures
// as non-200 would leak infrastructure state and break UI role checks.
func (h *RolesHandler) GetRoles(c *fiber.Ctx) (err error) {
	roles := []string{}
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("role resolution panicked", zap.Any("panic", rec))
			err = c.JSON(dto.RolesResponse{Roles: []string{}})
		}
	}()

	p := h.extractor.FromRequest(c)
	if resolved := h.resolver.ResolveRoles(c.UserContext(), p); resolved != nil {
		roles = resolved
	}
	return c.JSON(dto.RolesResponse{Roles: roles})
}
