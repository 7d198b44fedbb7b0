package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the prometheus exposition format.
type Handler struct {
	recorder *Recorder
}

// NewHandler creates a new handler for the metrics feature.
func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

// Scrape renders every metric of the recorder registry.
func (h *Handler) Scrape() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(h.recorder.Registry(), promhttp.HandlerOpts{}))
}
