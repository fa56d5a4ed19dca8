package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/haribookstore/internal/models"
)

// AdminRequired lets through only tokens carrying the admin role.
// It must run after JWTProtected.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := CurrentClaims(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		if claims.Role != models.RoleAdmin {
			return fiber.NewError(fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}
