package handlers

import (
	"errors"
	"log/slog"

	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/example/haribookstore/internal/config"
	"github.com/example/haribookstore/internal/services"
)

// ErrorHandler renders every failure as {success:false, message}. Unclassified
// errors are logged and hidden behind a generic message in production.
func ErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"success": false, "message": fe.Message})
		}

		var se *services.Error
		if errors.As(err, &se) {
			code := statusFor(se.Kind)
			if code >= fiber.StatusInternalServerError {
				slog.ErrorContext(c.UserContext(), "request failed",
					"method", c.Method(), "path", c.Path(), "error", err)
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "message": se.Message})
		}

		slog.ErrorContext(c.UserContext(), "unhandled error",
			"method", c.Method(), "path", c.Path(), "error", err)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}

		body := fiber.Map{"success": false, "message": "Internal server error"}
		if !cfg.IsProduction() {
			body["error"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindInternal:
		return fiber.StatusInternalServerError
	case services.KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadRequest
	}
}
