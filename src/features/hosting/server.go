package hosting

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/contre95/annil/src/features/config"
	"github.com/contre95/annil/src/features/metrics"
	"github.com/contre95/annil/src/features/serving"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server. recorder may be nil when metrics are disabled.
func NewServer(cfg *config.Manager, servingService *serving.Service, recorder *metrics.Recorder) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				slog.Error("Internal Server Error", "error", err)
			}
			c.Set(fiber.HeaderCacheControl, "private")
			return c.Status(code).SendString(err.Error())
		},
		AppName:               "Annil",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(RequestIDMiddleware())
	app.Use(LogAllRequestsMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  strings.Join([]string{fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions, fiber.MethodPost}, ","),
		ExposeHeaders: strings.Join(serving.ExposedHeaders, ", "),
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	if m := cfg.Get().Metrics; m.Enabled && recorder != nil {
		metrics.RegisterRoutes(app, m.Path, metrics.NewHandler(recorder))
	}

	auth := AdminAuthMiddleware(cfg)
	config.RegisterRoutes(app, auth, cfg)
	serving.RegisterRoutes(app, auth, servingService)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// App exposes the fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
