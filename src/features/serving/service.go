package serving

import (
	"context"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/contre95/annil/src/features/metrics"
	"github.com/contre95/annil/src/music"
)

// Info is the public description of the running server.
type Info struct {
	Version    string `json:"version"`
	LastUpdate int64  `json:"last_update"`
}

// Service serves albums, audio and covers out of a storage provider.
type Service struct {
	provider   music.Provider
	recorder   *metrics.Recorder
	version    string
	lastUpdate atomic.Int64
}

// NewService creates a new serving service. recorder may be nil.
func NewService(provider music.Provider, recorder *metrics.Recorder, version string) *Service {
	s := &Service{
		provider: provider,
		recorder: recorder,
		version:  version,
	}
	s.lastUpdate.Store(time.Now().Unix())
	return s
}

// Info returns the version and the unix time of the last provider reload.
func (s *Service) Info() Info {
	return Info{Version: s.version, LastUpdate: s.lastUpdate.Load()}
}

// Albums returns the sorted album identifiers of the provider.
func (s *Service) Albums(ctx context.Context) ([]string, error) {
	start := time.Now()
	set, err := s.provider.Albums(ctx)
	s.recorder.Observe(s.provider.Name(), "albums", start, err)
	if err != nil {
		slog.Error("Failed to list albums", "provider", s.provider.Name(), "error", err)
		return nil, err
	}

	albums := make([]string, 0, len(set))
	for id := range set {
		albums = append(albums, id)
	}
	slices.Sort(albums)
	return albums, nil
}

// Audio returns a redirect link when the provider hands them out, and the
// streamed region r otherwise. The caller closes the streamed resource.
func (s *Service) Audio(ctx context.Context, track music.TrackRef, r music.Range) (music.AudioFetch, error) {
	start := time.Now()
	fetch, err := music.FetchAudio(ctx, s.provider, track, r)
	s.recorder.Observe(s.provider.Name(), "audio", start, err)
	if err != nil {
		slog.Warn("Failed to fetch audio", "track", track, "range", r, "error", err)
		return music.AudioFetch{}, err
	}
	slog.Debug("Audio fetched", "track", track, "range", r, "redirect", fetch.Link != "")
	return fetch, nil
}

// AudioInfo probes the header prefix of a track. Size is the whole file size
// when the provider reported it, the served length otherwise.
func (s *Service) AudioInfo(ctx context.Context, track music.TrackRef) (music.AudioInfo, error) {
	start := time.Now()
	res, err := s.provider.GetAudio(ctx, track, music.NewRange(0, music.HeaderSize-1))
	s.recorder.Observe(s.provider.Name(), "audio_info", start, err)
	if err != nil {
		slog.Warn("Failed to probe audio", "track", track, "error", err)
		return music.AudioInfo{}, err
	}
	res.Close()

	info := res.Info
	if res.Range.Total != nil {
		info.Size = *res.Range.Total
	}
	return info, nil
}

// Cover returns a redirect link or the streamed cover of an album or disc.
func (s *Service) Cover(ctx context.Context, albumID string, disc uint8) (music.CoverFetch, error) {
	start := time.Now()
	fetch, err := music.FetchCover(ctx, s.provider, albumID, disc)
	s.recorder.Observe(s.provider.Name(), "cover", start, err)
	if err != nil {
		slog.Warn("Failed to fetch cover", "album", albumID, "disc", disc, "error", err)
		return music.CoverFetch{}, err
	}
	return fetch, nil
}

// Reload refreshes the provider session and bumps the last update time.
func (s *Service) Reload(ctx context.Context) error {
	start := time.Now()
	err := s.provider.Reload(ctx)
	s.recorder.Observe(s.provider.Name(), "reload", start, err)
	if err != nil {
		slog.Error("Provider reload failed", "provider", s.provider.Name(), "error", err)
		return err
	}
	s.lastUpdate.Store(time.Now().Unix())
	slog.Info("Provider reloaded", "provider", s.provider.Name())
	return nil
}
