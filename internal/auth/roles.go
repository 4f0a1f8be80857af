package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/nairobi-county/county-tickets/internal/domain"
)

// RequireRole ensures the caller holds one of the allowed roles.
func RequireRole(allowed ...domain.ActorRole) fiber.Handler {
	allowedSet := make(map[domain.ActorRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if _, ok := allowedSet[actor.Role]; !ok {
			return fiber.NewError(http.StatusForbidden, "role "+string(actor.Role)+" may not perform this action")
		}
		return c.Next()
	}
}

// RequireStaff is RequireRole for county staff.
func RequireStaff() fiber.Handler {
	return RequireRole(domain.RoleStaff)
}
