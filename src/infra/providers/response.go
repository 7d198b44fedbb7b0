package providers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/contre95/annil/src/infra/flac"
	"github.com/contre95/annil/src/music"
)

// setRange applies r to req, leaving full requests without a Range header.
func setRange(req *http.Request, r music.Range) {
	if h, ok := r.RangeHeader(); ok {
		req.Header.Set("Range", h)
	}
}

// do sends req and checks the upstream status. The body is closed on error.
func do(client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", music.ErrTransport, err)
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", music.ErrNotFound, resp.Request.URL.Path)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: upstream answered %s: %s", music.ErrGeneral, resp.Status, strings.TrimSpace(string(body)))
	}
}

// readAudioResponse turns an upstream audio response into an AudioResource.
// The served region comes from Content-Range, the size from Content-Length.
func readAudioResponse(resp *http.Response) (*music.AudioResource, error) {
	if resp.ContentLength < 0 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: upstream did not report a content length", music.ErrGeneral)
	}

	served := music.ParseContentRange(resp.Header.Get("Content-Range"))
	duration, reader, err := flac.ReadDuration(resp.Body, served)
	if err != nil {
		return nil, err
	}

	return &music.AudioResource{
		Info:   music.NewAudioInfo(uint64(resp.ContentLength), duration),
		Range:  served,
		Reader: reader,
	}, nil
}

// escapePath escapes every segment of a slash separated path.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
