package flac

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/contre95/annil/src/music"
	goflac "github.com/go-flac/go-flac"
)

const marker = "fLaC"

// StreamInfo is the part of the STREAMINFO block needed for duration.
type StreamInfo struct {
	SampleRate   uint32
	TotalSamples uint64
}

// Duration returns the length in whole seconds, truncated.
func (s StreamInfo) Duration() uint64 {
	if s.SampleRate == 0 {
		return 0
	}
	return s.TotalSamples / uint64(s.SampleRate)
}

// ReadDuration computes the duration of the stream served for r.
//
// When r does not cover the FLAC header the reader is returned untouched and
// the duration is 0. Otherwise exactly music.HeaderSize bytes are read and the
// returned reader replays them before the rest of the original stream.
// On error the reader is closed.
func ReadDuration(reader io.ReadCloser, r music.Range) (uint64, io.ReadCloser, error) {
	if !r.ContainsHeader() {
		return 0, reader, nil
	}

	info, spliced, err := ReadHeader(reader)
	if err != nil {
		reader.Close()
		return 0, nil, err
	}
	slog.Debug("Read FLAC stream info", "sampleRate", info.SampleRate, "totalSamples", info.TotalSamples)
	return info.Duration(), spliced, nil
}

// ReadHeader consumes the FLAC header prefix of reader and decodes its
// STREAMINFO block. The returned reader yields the same bytes as reader would
// have. reader is not closed on error.
func ReadHeader(reader io.ReadCloser) (StreamInfo, io.ReadCloser, error) {
	head := make([]byte, music.HeaderSize)
	if _, err := io.ReadFull(reader, head); err != nil {
		return StreamInfo{}, nil, fmt.Errorf("%w: reading header: %w", music.ErrCorrupt, err)
	}

	info, err := decodeHeader(head)
	if err != nil {
		return StreamInfo{}, nil, err
	}
	return info, &splicedReader{head: head, rest: reader}, nil
}

// decodeHeader parses marker, block header and STREAMINFO body.
func decodeHeader(head []byte) (StreamInfo, error) {
	if string(head[:4]) != marker {
		return StreamInfo{}, fmt.Errorf("%w: %v", music.ErrCorrupt, goflac.ErrorNoFLACHeader)
	}

	block := &goflac.MetaDataBlock{
		Type: goflac.BlockType(head[4] &^ 0x80),
		Data: head[8:],
	}
	file := &goflac.File{Meta: []*goflac.MetaDataBlock{block}}
	streamInfo, err := file.GetStreamInfo()
	if err != nil {
		return StreamInfo{}, fmt.Errorf("%w: %v", music.ErrCorrupt, err)
	}
	if streamInfo.SampleRate == 0 {
		return StreamInfo{}, fmt.Errorf("%w: sample rate is zero", music.ErrCorrupt)
	}

	return StreamInfo{
		SampleRate:   uint32(streamInfo.SampleRate),
		TotalSamples: uint64(streamInfo.SampleCount),
	}, nil
}

// splicedReader replays head, then passes reads through to rest.
type splicedReader struct {
	head []byte
	rest io.ReadCloser
}

func (s *splicedReader) Read(p []byte) (int, error) {
	if len(s.head) > 0 {
		n := copy(p, s.head)
		s.head = s.head[n:]
		return n, nil
	}
	return s.rest.Read(p)
}

func (s *splicedReader) Close() error {
	s.head = nil
	return s.rest.Close()
}
