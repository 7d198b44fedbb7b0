package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/contre95/annil/src/music"
)

// Ensure SeafileProvider implements URLProvider
var _ music.URLProvider = (*SeafileProvider)(nil)

// SeafileOptions configures a Seafile library backend.
type SeafileOptions struct {
	Base   string
	Token  string
	RepoID string
}

// SeafileProvider resolves tracks to one-time download links of a Seafile
// library laid out as "{album}/{disc}/{track}.flac".
type SeafileProvider struct {
	client  *http.Client
	source  func() SeafileOptions
	session atomic.Pointer[SeafileOptions]
}

type directoryItem struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NewSeafileProvider creates a new Seafile provider. source is read again on every Reload.
func NewSeafileProvider(client *http.Client, source func() SeafileOptions) *SeafileProvider {
	if client == nil {
		client = http.DefaultClient
	}
	p := &SeafileProvider{client: client, source: source}
	opts := source()
	p.session.Store(&opts)
	return p
}

// Name returns the provider kind.
func (p *SeafileProvider) Name() string {
	return "seafile"
}

// ListAlbums returns the names of the directories at the library root.
func (p *SeafileProvider) ListAlbums(ctx context.Context) ([]string, error) {
	var items []directoryItem
	if err := p.api(ctx, p.session.Load(), "dir/", url.Values{"t": {"d"}}, &items); err != nil {
		return nil, err
	}

	albums := make([]string, 0, len(items))
	for _, item := range items {
		if item.Type != "" && item.Type != "dir" {
			continue
		}
		albums = append(albums, item.Name)
	}
	return albums, nil
}

// DownloadLink asks Seafile for a download link of path, relative to the library root.
func (p *SeafileProvider) DownloadLink(ctx context.Context, path string) (string, error) {
	return p.downloadLink(ctx, p.session.Load(), path)
}

func (p *SeafileProvider) downloadLink(ctx context.Context, opts *SeafileOptions, path string) (string, error) {
	query := url.Values{
		"p":     {"/" + strings.TrimPrefix(path, "/")},
		"reuse": {"1"},
	}
	var link string
	if err := p.api(ctx, opts, "file/", query, &link); err != nil {
		return "", err
	}
	if link == "" {
		return "", fmt.Errorf("%w: empty download link for %s", music.ErrGeneral, path)
	}
	slog.Debug("Resolved Seafile download link", "path", path)
	return link, nil
}

// Albums lists the album directories of the library.
func (p *SeafileProvider) Albums(ctx context.Context) (map[string]struct{}, error) {
	names, err := p.ListAlbums(ctx)
	if err != nil {
		return nil, err
	}
	albums := make(map[string]struct{}, len(names))
	for _, name := range names {
		albums[name] = struct{}{}
	}
	return albums, nil
}

// AudioLink returns a download link for the track. r is not applied, the
// client sends its own Range header to the link.
func (p *SeafileProvider) AudioLink(ctx context.Context, track music.TrackRef, r music.Range) (string, error) {
	return p.DownloadLink(ctx, track.FileName())
}

// CoverLink returns a download link for the cover of the album or disc.
func (p *SeafileProvider) CoverLink(ctx context.Context, albumID string, disc uint8) (string, error) {
	return p.DownloadLink(ctx, music.CoverPath(albumID, disc))
}

// GetAudio resolves a download link and streams it.
func (p *SeafileProvider) GetAudio(ctx context.Context, track music.TrackRef, r music.Range) (*music.AudioResource, error) {
	resp, err := p.fetch(ctx, track.FileName(), r)
	if err != nil {
		return nil, err
	}
	return readAudioResponse(resp)
}

// GetCover resolves a download link for the cover and streams it.
func (p *SeafileProvider) GetCover(ctx context.Context, albumID string, disc uint8) (io.ReadCloser, error) {
	resp, err := p.fetch(ctx, music.CoverPath(albumID, disc), music.FullRange)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Reload reads the options again and checks the token before swapping them in.
func (p *SeafileProvider) Reload(ctx context.Context) error {
	opts := p.source()
	req, err := p.newRequest(ctx, &opts, strings.TrimSuffix(opts.Base, "/")+"/api2/auth/ping/")
	if err != nil {
		return err
	}
	resp, err := do(p.client, req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	p.session.Store(&opts)
	slog.Info("Seafile provider reloaded", "base", opts.Base, "repo", opts.RepoID)
	return nil
}

func (p *SeafileProvider) fetch(ctx context.Context, path string, r music.Range) (*http.Response, error) {
	link, err := p.DownloadLink(ctx, path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", music.ErrGeneral, err)
	}
	setRange(req, r)
	return do(p.client, req)
}

// api calls a repository endpoint and decodes its JSON answer into out.
func (p *SeafileProvider) api(ctx context.Context, opts *SeafileOptions, endpoint string, query url.Values, out any) error {
	target := fmt.Sprintf("%s/api2/repos/%s/%s?%s", strings.TrimSuffix(opts.Base, "/"), url.PathEscape(opts.RepoID), endpoint, query.Encode())
	req, err := p.newRequest(ctx, opts, target)
	if err != nil {
		return err
	}
	resp, err := do(p.client, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", music.ErrGeneral, endpoint, err)
	}
	return nil
}

func (p *SeafileProvider) newRequest(ctx context.Context, opts *SeafileOptions, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", music.ErrGeneral, err)
	}
	req.Header.Set("Authorization", "Token "+opts.Token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}
