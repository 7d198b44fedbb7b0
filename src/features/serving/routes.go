package serving

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the public routes and the reload route, the latter behind auth.
// Auth wraps each admin route only, album ids may start with "admin".
// HEAD is registered before GET, fiber's Get also answers HEAD.
func RegisterRoutes(app *fiber.App, auth fiber.Handler, service *Service) {
	handler := NewHandler(service)

	app.Post("/admin/reload", auth, handler.PostReload)

	app.Get("/info", handler.GetInfo)
	app.Get("/albums", handler.GetAlbums)
	app.Get("/:album_id/cover", handler.GetCover)
	app.Get("/:album_id/:disc_id/cover", handler.GetCover)
	app.Head("/:album_id/:disc_id/:track_id", handler.HeadAudio)
	app.Get("/:album_id/:disc_id/:track_id", handler.GetAudio)
}
