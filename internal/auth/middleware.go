// Package auth carries caller identity through fiber requests. Identity is
// asserted by the upstream portal in trusted headers and is not verified here.
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/nairobi-county/county-tickets/internal/domain"
	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

const (
	actorKey = "auth_actor"

	// HeaderActorID names the caller.
	HeaderActorID = "X-Actor-ID"
	// HeaderActorRole carries citizen or staff.
	HeaderActorRole = "X-Actor-Role"
)

// ActorMiddleware reads the caller identity headers. Requests without them act
// as an anonymous citizen; an unknown role is rejected.
func ActorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := domain.Actor{
			ID:   utils.CopyString(strings.TrimSpace(c.Get(HeaderActorID))),
			Role: domain.ActorRole(utils.CopyString(strings.ToLower(strings.TrimSpace(c.Get(HeaderActorRole))))),
		}
		if actor.Role == "" {
			actor.Role = domain.RoleCitizen
		}
		if actor.Role != domain.RoleCitizen && actor.Role != domain.RoleStaff {
			return apperrors.NewValidationError("unsupported actor role", map[string]any{"role": string(actor.Role)})
		}
		if actor.ID == "" {
			if actor.Role == domain.RoleStaff {
				return apperrors.NewValidationError("staff requests must carry "+HeaderActorID, nil)
			}
			actor.ID = "anonymous"
		}
		// Header values alias fiber's request buffer; the actor outlives the request
		// in ticket history and remarks, hence the copies above.
		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// ActorFromContext retrieves the caller. Without the middleware it reports an
// anonymous citizen.
func ActorFromContext(c *fiber.Ctx) domain.Actor {
	if actor, ok := c.Locals(actorKey).(domain.Actor); ok {
		return actor
	}
	return domain.Actor{ID: "anonymous", Role: domain.RoleCitizen}
}
