package metrics

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the scrape endpoint at path.
func RegisterRoutes(app *fiber.App, path string, handler *Handler) {
	app.Get(path, handler.Scrape())
}
