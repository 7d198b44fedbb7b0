package music

import (
	"context"
	"io"
)

// Provider is a storage backend holding albums laid out as
// "{album}/{disc}/{track}" with an optional "{album}/{disc}/cover.jpg".
// It's the primary capability interface of the serving layer.
type Provider interface {
	// Name identifies the backend kind in logs and metrics.
	Name() string
	// Albums lists the album identifiers available on the backend.
	Albums(ctx context.Context) (map[string]struct{}, error)
	// GetAudio streams a track. Duration is only computed when the served
	// region starts at offset 0.
	GetAudio(ctx context.Context, track TrackRef, r Range) (*AudioResource, error)
	// GetCover streams the cover of an album, disc 0 meaning no disc was given.
	GetCover(ctx context.Context, albumID string, disc uint8) (io.ReadCloser, error)
	// Reload refreshes backend session state. Calls already in flight keep
	// the state they started with.
	Reload(ctx context.Context) error
}

// URLProvider is a Provider able to hand out temporary direct links instead
// of streaming bytes itself.
type URLProvider interface {
	Provider
	AudioLink(ctx context.Context, track TrackRef, r Range) (string, error)
	CoverLink(ctx context.Context, albumID string, disc uint8) (string, error)
}

// AudioFetch holds either a redirect link or a streamed resource.
type AudioFetch struct {
	Link     string
	Resource *AudioResource
}

// CoverFetch holds either a redirect link or a streamed cover.
type CoverFetch struct {
	Link   string
	Reader io.ReadCloser
}

// FetchAudio asks p for a link first when it supports links and falls back
// to streaming otherwise.
func FetchAudio(ctx context.Context, p Provider, track TrackRef, r Range) (AudioFetch, error) {
	if up, ok := p.(URLProvider); ok {
		link, err := up.AudioLink(ctx, track, r)
		if err != nil {
			return AudioFetch{}, err
		}
		return AudioFetch{Link: link}, nil
	}
	res, err := p.GetAudio(ctx, track, r)
	if err != nil {
		return AudioFetch{}, err
	}
	return AudioFetch{Resource: res}, nil
}

// FetchCover is the cover counterpart of FetchAudio.
func FetchCover(ctx context.Context, p Provider, albumID string, disc uint8) (CoverFetch, error) {
	if up, ok := p.(URLProvider); ok {
		link, err := up.CoverLink(ctx, albumID, disc)
		if err != nil {
			return CoverFetch{}, err
		}
		return CoverFetch{Link: link}, nil
	}
	rc, err := p.GetCover(ctx, albumID, disc)
	if err != nil {
		return CoverFetch{}, err
	}
	return CoverFetch{Reader: rc}, nil
}
