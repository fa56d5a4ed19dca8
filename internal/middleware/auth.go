package middleware

import (
	"errors"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/example/haribookstore/internal/config"
	"github.com/example/haribookstore/internal/utils"
)

const userContextKey = "user"

// JWTProtected validates bearer tokens and stores the parsed token in context.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
		Claims:     &utils.Claims{},
		ContextKey: userContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return fiber.NewError(fiber.StatusUnauthorized, "missing or malformed token")
			}
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		},
	})
}

// CurrentClaims extracts the authenticated user's claims from context.
func CurrentClaims(c *fiber.Ctx) (*utils.Claims, bool) {
	token, ok := c.Locals(userContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}

	claims, ok := token.Claims.(*utils.Claims)
	return claims, ok
}
