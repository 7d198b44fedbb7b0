package serving

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/contre95/annil/src/music"
	"github.com/gofiber/fiber/v2"
)

// Audio response headers, also listed in the CORS expose list.
const (
	HeaderOriginType      = "X-Origin-Type"
	HeaderOriginSize      = "X-Origin-Size"
	HeaderDurationSeconds = "X-Duration-Seconds"
	HeaderAudioQuality    = "X-Audio-Quality"
)

// ExposedHeaders is the Access-Control-Expose-Headers value for audio responses.
var ExposedHeaders = []string{HeaderOriginType, HeaderOriginSize, HeaderDurationSeconds, HeaderAudioQuality}

// Handler is the handler for the serving feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the serving feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetInfo returns the server version and last update time.
func (h *Handler) GetInfo(c *fiber.Ctx) error {
	return c.JSON(h.service.Info())
}

// GetAlbums returns the album identifiers as a JSON array.
func (h *Handler) GetAlbums(c *fiber.Ctx) error {
	albums, err := h.service.Albums(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(albums)
}

// GetCover redirects to or streams the cover of an album, or of one of its discs.
func (h *Handler) GetCover(c *fiber.Ctx) error {
	albumID := c.Params("album_id")
	disc, err := music.ParseDisc(c.Params("disc_id"))
	if err != nil {
		return badRequest(c, err)
	}

	fetch, err := h.service.Cover(c.UserContext(), albumID, disc)
	if err != nil {
		return respondError(c, err)
	}
	if fetch.Link != "" {
		return c.Redirect(fetch.Link, fiber.StatusTemporaryRedirect)
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	return c.SendStream(fetch.Reader)
}

// HeadAudio answers with the audio headers only.
func (h *Handler) HeadAudio(c *fiber.Ctx) error {
	track, err := trackParams(c)
	if err != nil {
		return badRequest(c, err)
	}
	info, err := h.service.AudioInfo(c.UserContext(), track)
	if err != nil {
		return respondError(c, err)
	}
	setAudioHeaders(c, info, true)
	return c.SendStatus(fiber.StatusOK)
}

// GetAudio redirects to a provider link when there is one. Otherwise it
// streams the track, honoring a single client byte range.
func (h *Handler) GetAudio(c *fiber.Ctx) error {
	track, err := trackParams(c)
	if err != nil {
		return badRequest(c, err)
	}
	requested := music.ParseRangeHeader(c.Get(fiber.HeaderRange))

	fetch, err := h.service.Audio(c.UserContext(), track, requested)
	if err != nil {
		return respondError(c, err)
	}

	if fetch.Link != "" {
		info, err := h.service.AudioInfo(c.UserContext(), track)
		if err != nil {
			return respondError(c, err)
		}
		setAudioHeaders(c, info, true)
		return c.Redirect(fetch.Link, fiber.StatusTemporaryRedirect)
	}

	res := fetch.Resource
	info := res.Info
	length := info.Size
	if res.Range.Total != nil {
		info.Size = *res.Range.Total
	}
	setAudioHeaders(c, info, res.Range.ContainsHeader())
	c.Set(fiber.HeaderContentType, "audio/"+info.Extension)
	c.Set(fiber.HeaderAcceptRanges, "bytes")

	status := fiber.StatusOK
	if !requested.IsFull() && res.Range.End != nil {
		status = fiber.StatusPartialContent
		c.Set(fiber.HeaderContentRange, res.Range.ContentRangeHeader())
	}
	slog.Debug("Streaming audio", "track", track, "range", requested, "status", status, "length", length)
	return c.Status(status).SendStream(res.Reader, int(length))
}

// PostReload reloads the provider session.
func (h *Handler) PostReload(c *fiber.Ctx) error {
	if err := h.service.Reload(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.service.Info())
}

func trackParams(c *fiber.Ctx) (music.TrackRef, error) {
	return music.ParseTrackRef(c.Params("album_id"), c.Params("disc_id"), c.Params("track_id"))
}

func setAudioHeaders(c *fiber.Ctx, info music.AudioInfo, withDuration bool) {
	c.Set(HeaderOriginType, "audio/"+info.Extension)
	c.Set(HeaderOriginSize, strconv.FormatUint(info.Size, 10))
	if withDuration {
		c.Set(HeaderDurationSeconds, strconv.FormatUint(info.Duration, 10))
	}
	c.Set(HeaderAudioQuality, "lossless")
}

// StatusFor maps a provider error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, music.ErrNotFound), errors.Is(err, music.ErrUnsupported):
		return fiber.StatusNotFound
	case errors.Is(err, music.ErrTransport), errors.Is(err, music.ErrCorrupt):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, err error) error {
	c.Set(fiber.HeaderCacheControl, "private")
	return c.Status(StatusFor(err)).SendString(err.Error())
}

func badRequest(c *fiber.Ctx, err error) error {
	c.Set(fiber.HeaderCacheControl, "private")
	return c.Status(fiber.StatusBadRequest).SendString(err.Error())
}
