package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/contre95/annil/src/music"
	"github.com/studio-b12/gowebdav"
)

// Ensure WebDAVProvider implements Provider
var _ music.Provider = (*WebDAVProvider)(nil)

// WebDAVOptions configures a WebDAV backend.
type WebDAVOptions struct {
	URL      string
	Username string
	Password string
	// Covers enables serving "{album}/{disc}/cover.jpg".
	Covers bool
}

type webdavSession struct {
	opts WebDAVOptions
	dav  *gowebdav.Client
}

// WebDAVProvider streams tracks from a WebDAV share laid out as
// "{album}/{disc}/{track}".
type WebDAVProvider struct {
	client  *http.Client
	source  func() WebDAVOptions
	session atomic.Pointer[webdavSession]
}

// NewWebDAVProvider creates a new WebDAV provider. source is read again on every Reload.
func NewWebDAVProvider(client *http.Client, source func() WebDAVOptions) *WebDAVProvider {
	if client == nil {
		client = http.DefaultClient
	}
	p := &WebDAVProvider{client: client, source: source}
	p.session.Store(p.newSession(source()))
	return p
}

func (p *WebDAVProvider) newSession(opts WebDAVOptions) *webdavSession {
	dav := gowebdav.NewClient(opts.URL, opts.Username, opts.Password)
	if p.client.Transport != nil {
		dav.SetTransport(p.client.Transport)
	}
	if p.client.Timeout > 0 {
		dav.SetTimeout(p.client.Timeout)
	}
	return &webdavSession{opts: opts, dav: dav}
}

// Name returns the provider kind.
func (p *WebDAVProvider) Name() string {
	return "webdav"
}

// Albums lists the top level directories of the share.
func (p *WebDAVProvider) Albums(ctx context.Context) (map[string]struct{}, error) {
	entries, err := p.session.Load().dav.ReadDir("/")
	if err != nil {
		return nil, davError(err)
	}

	albums := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			albums[entry.Name()] = struct{}{}
		}
	}
	slog.Debug("Listed WebDAV albums", "count", len(albums))
	return albums, nil
}

// GetAudio streams "{album}/{disc}/{track}", forwarding r as a Range header.
func (p *WebDAVProvider) GetAudio(ctx context.Context, track music.TrackRef, r music.Range) (*music.AudioResource, error) {
	resp, err := p.get(ctx, p.session.Load(), track.Path(), r)
	if err != nil {
		return nil, err
	}
	return readAudioResponse(resp)
}

// GetCover streams "{album}/{disc}/cover.jpg" when covers are enabled.
func (p *WebDAVProvider) GetCover(ctx context.Context, albumID string, disc uint8) (io.ReadCloser, error) {
	s := p.session.Load()
	if !s.opts.Covers {
		return nil, fmt.Errorf("%w: webdav covers are disabled", music.ErrUnsupported)
	}
	resp, err := p.get(ctx, s, music.CoverPath(albumID, disc), music.FullRange)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Reload rebuilds the WebDAV client from the current options and checks that
// the share answers before swapping it in.
func (p *WebDAVProvider) Reload(ctx context.Context) error {
	s := p.newSession(p.source())
	if err := s.dav.Connect(); err != nil {
		return davError(err)
	}
	p.session.Store(s)
	slog.Info("WebDAV provider reloaded", "url", s.opts.URL)
	return nil
}

func (p *WebDAVProvider) get(ctx context.Context, s *webdavSession, path string, r music.Range) (*http.Response, error) {
	target := strings.TrimSuffix(s.opts.URL, "/") + "/" + escapePath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", music.ErrGeneral, err)
	}
	if s.opts.Username != "" {
		req.SetBasicAuth(s.opts.Username, s.opts.Password)
	}
	setRange(req, r)

	slog.Debug("WebDAV request", "path", path, "range", r.String())
	return do(p.client, req)
}

// davError maps gowebdav failures onto provider errors.
func davError(err error) error {
	var urlErr *url.Error
	switch {
	case gowebdav.IsErrNotFound(err):
		return fmt.Errorf("%w: %w", music.ErrNotFound, err)
	case errors.As(err, &urlErr):
		return fmt.Errorf("%w: %w", music.ErrTransport, err)
	default:
		return fmt.Errorf("%w: %w", music.ErrGeneral, err)
	}
}
