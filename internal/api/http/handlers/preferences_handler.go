package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/nairobi-county/county-tickets/internal/api/dto"
	"github.com/nairobi-county/county-tickets/internal/auth"
	"github.com/nairobi-county/county-tickets/internal/domain"
	"github.com/nairobi-county/county-tickets/internal/preferences"
	apperrors "github.com/nairobi-county/county-tickets/pkg/util/errorutil"
)

// PreferencesHandler exposes per-owner UI preferences.
type PreferencesHandler struct {
	store preferences.Store
}

// NewPreferencesHandler constructs handler.
func NewPreferencesHandler(store preferences.Store) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// ListPreferences GET /preferences/:owner.
func (h *PreferencesHandler) ListPreferences(c *fiber.Ctx) error {
	owner := utils.CopyString(c.Params("owner"))
	if err := authorizeOwner(c, owner); err != nil {
		return err
	}
	if err := preferences.Validate(owner, "all", ""); err != nil {
		return err
	}
	values, err := h.store.List(c.UserContext(), owner)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": values})
}

// GetPreference GET /preferences/:owner/:key.
func (h *PreferencesHandler) GetPreference(c *fiber.Ctx) error {
	owner, key := ownerAndKey(c)
	if err := authorizeOwner(c, owner); err != nil {
		return err
	}
	if err := preferences.Validate(owner, key, ""); err != nil {
		return err
	}
	value, err := h.store.Get(c.UserContext(), owner, key)
	if errors.Is(err, preferences.ErrNotFound) {
		return apperrors.NewNotFound("preference", map[string]any{"key": key})
	}
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"key": key, "value": value}})
}

// PutPreference PUT /preferences/:owner/:key.
func (h *PreferencesHandler) PutPreference(c *fiber.Ctx) error {
	owner, key := ownerAndKey(c)
	if err := authorizeOwner(c, owner); err != nil {
		return err
	}
	var req dto.PreferenceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.store.Set(c.UserContext(), owner, key, req.Value); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"key": key, "value": req.Value}})
}

// ownerAndKey copies the route params; fiber reuses their backing buffer once
// the request completes, and the store keeps them as map keys.
func ownerAndKey(c *fiber.Ctx) (string, string) {
	return utils.CopyString(c.Params("owner")), utils.CopyString(c.Params("key"))
}

// authorizeOwner lets callers touch only their own preferences. Staff may read
// and write any owner.
func authorizeOwner(c *fiber.Ctx, owner string) error {
	actor := auth.ActorFromContext(c)
	if actor.Role == domain.RoleStaff || actor.ID == owner {
		return nil
	}
	return fiber.NewError(http.StatusForbidden, "preferences belong to another owner")
}
