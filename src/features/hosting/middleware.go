package hosting

import (
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/contre95/annil/src/features/config"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderRequestID carries the request id, propagated when the client set one.
const HeaderRequestID = "X-Request-ID"

// RequestIDMiddleware tags every request with an id, stored in Locals("request_id").
func RequestIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Locals("request_id", id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// LogAllRequestsMiddleware logs all requests, errors at error level.
func LogAllRequestsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()
		requestID, _ := c.Locals("request_id").(string)

		if status >= 500 {
			slog.Error("HTTP request",
				"request_id", requestID,
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", duration.String(),
				"error", err,
			)
		} else {
			slog.Debug("HTTP request",
				"request_id", requestID,
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", duration.String(),
			)
		}
		return err
	}
}

// AdminAuthMiddleware requires the Authorization header to equal the admin
// token of the current config. An empty token disables the admin routes.
func AdminAuthMiddleware(cfg *config.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := cfg.Get().Admin.Token
		if token == "" {
			return c.Status(fiber.StatusForbidden).SendString("admin routes are disabled")
		}
		given := c.Get(fiber.HeaderAuthorization)
		if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			slog.Warn("Rejected admin request", "path", c.Path(), "ip", c.IP())
			return c.Status(fiber.StatusUnauthorized).SendString("invalid admin token")
		}
		return c.Next()
	}
}
