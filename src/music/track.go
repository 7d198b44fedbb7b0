package music

import (
	"fmt"
	"strconv"
	"strings"
)

// TrackRef addresses one audio file inside the collection.
// Disc and Track start at 1.
type TrackRef struct {
	AlbumID string
	Disc    uint8
	Track   uint8
}

// ParseTrackRef validates the raw path segments of a track address.
func ParseTrackRef(albumID, disc, track string) (TrackRef, error) {
	if strings.TrimSpace(albumID) == "" {
		return TrackRef{}, fmt.Errorf("album id cannot be empty")
	}
	d, err := parseIndex(disc)
	if err != nil {
		return TrackRef{}, fmt.Errorf("invalid disc id %q: %w", disc, err)
	}
	t, err := parseIndex(track)
	if err != nil {
		return TrackRef{}, fmt.Errorf("invalid track id %q: %w", track, err)
	}
	return TrackRef{AlbumID: albumID, Disc: d, Track: t}, nil
}

// ParseDisc parses an optional disc segment. An empty value means "no disc".
func ParseDisc(disc string) (uint8, error) {
	if disc == "" {
		return 0, nil
	}
	d, err := parseIndex(disc)
	if err != nil {
		return 0, fmt.Errorf("invalid disc id %q: %w", disc, err)
	}
	return d, nil
}

func parseIndex(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("must be at least 1")
	}
	return uint8(n), nil
}

// Path is the canonical remote path "{album}/{disc}/{track}".
func (t TrackRef) Path() string {
	return fmt.Sprintf("%s/%d/%d", t.AlbumID, t.Disc, t.Track)
}

// FileName is Path with the format extension, for backends that need a literal file name.
func (t TrackRef) FileName() string {
	return t.Path() + "." + FLACExtension
}

func (t TrackRef) String() string {
	return t.Path()
}

// CoverPath is "{album}/{disc}/cover.jpg", disc 0 meaning the album cover of disc 1.
func CoverPath(albumID string, disc uint8) string {
	if disc == 0 {
		disc = 1
	}
	return fmt.Sprintf("%s/%d/cover.jpg", albumID, disc)
}
