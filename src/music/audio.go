package music

import "io"

// FLACExtension is the only audio format served.
const FLACExtension = "flac"

// AudioInfo describes a served audio resource.
//
// Size is the length of the served region as reported by the transport, which
// is the full file size only when the whole file was requested.
// Duration is in whole seconds, 0 when unknown.
type AudioInfo struct {
	Extension string `json:"extension"`
	Size      uint64 `json:"size"`
	Duration  uint64 `json:"duration"`
}

// NewAudioInfo assembles the descriptor of a FLAC resource.
func NewAudioInfo(size, duration uint64) AudioInfo {
	return AudioInfo{
		Extension: FLACExtension,
		Size:      size,
		Duration:  duration,
	}
}

// AudioResource is a streamed audio file. The caller owns Reader and must close it.
// Range is the region the upstream actually served.
type AudioResource struct {
	Info   AudioInfo
	Range  Range
	Reader io.ReadCloser
}

// Close releases the underlying connection.
func (a *AudioResource) Close() error {
	if a == nil || a.Reader == nil {
		return nil
	}
	return a.Reader.Close()
}
