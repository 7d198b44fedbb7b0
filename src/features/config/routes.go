package config

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the config feature behind auth.
func RegisterRoutes(app fiber.Router, auth fiber.Handler, configManager *Manager) {
	handler := NewHandler(configManager)

	app.Get("/admin/config", auth, handler.GetConfig)
}
