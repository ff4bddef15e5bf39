package auth

import (
	"slices"
	"strings"

	"farmsim-backend/internal/apperr"
	"farmsim-backend/internal/config"
	"farmsim-backend/internal/httpx"
	"farmsim-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxFarmIDKey   = "farm_id"
	CtxFarmRoleKey = "farm_role"
)

func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals(CtxUserIDKey, claims.UserID)
		return c.Next()
	}
}

// RequireFarmMember resolves :farmId against the caller's memberships and
// stores the farm id and role in locals.
func RequireFarmMember(access *FarmAccess) fiber.Handler {
	return func(c *fiber.Ctx) error {
		farmID, err := httpx.ParamID(c, "farmId")
		if err != nil {
			return err
		}
		role, err := access.Role(c.UserContext(), farmID, UserID(c))
		if err != nil {
			return err
		}

		c.Locals(CtxFarmIDKey, farmID)
		c.Locals(CtxFarmRoleKey, role)
		return c.Next()
	}
}

func RequireFarmRole(allowed ...models.FarmRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := FarmRole(c)
		if slices.Contains(allowed, role) {
			return c.Next()
		}
		if role == models.FarmRoleViewer {
			return apperr.PermissionDenied("Viewers cannot make changes to this farm")
		}
		return apperr.PermissionDenied("Only farm owners can perform this action")
	}
}

func RequireEditor() fiber.Handler {
	return RequireFarmRole(models.FarmRoleOwner, models.FarmRoleEditor)
}

func RequireOwner() fiber.Handler {
	return RequireFarmRole(models.FarmRoleOwner)
}

func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxUserIDKey).(uint)
	return id
}

func FarmID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxFarmIDKey).(uint)
	return id
}

func FarmRole(c *fiber.Ctx) models.FarmRole {
	role, _ := c.Locals(CtxFarmRoleKey).(models.FarmRole)
	return role
}
