package flac

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/contre95/annil/src/music"
	goflac "github.com/go-flac/go-flac"
)

// flacHeader builds the 42 byte prefix of a stereo 16 bit FLAC stream.
func flacHeader(sampleRate uint32, totalSamples uint64) []byte {
	data := make([]byte, 34)
	binary.BigEndian.PutUint16(data[0:2], 4096)
	binary.BigEndian.PutUint16(data[2:4], 4096)
	packed := uint64(sampleRate)<<44 | uint64(2-1)<<41 | uint64(16-1)<<36 | totalSamples&(1<<36-1)
	binary.BigEndian.PutUint64(data[10:18], packed)

	block := &goflac.MetaDataBlock{Type: goflac.StreamInfo, Data: data}
	return append([]byte("fLaC"), block.Marshal(false)...)
}

// trackingReader records how many bytes were read and whether it was closed.
type trackingReader struct {
	r      io.Reader
	read   int
	closed bool
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.read += n
	return n, err
}

func (t *trackingReader) Close() error {
	t.closed = true
	return nil
}

func newTrackingReader(b []byte) *trackingReader {
	return &trackingReader{r: bytes.NewReader(b)}
}

func TestFlacHeaderFixtureSize(t *testing.T) {
	if got := len(flacHeader(44100, 441000)); got != music.HeaderSize {
		t.Fatalf("expected header of %d bytes, got %d", music.HeaderSize, got)
	}
}

func TestReadDuration_ComputesDurationAndPreservesBytes(t *testing.T) {
	payload := bytes.Repeat([]byte("frame-data-"), 5000)
	original := append(flacHeader(44100, 441000), payload...)
	src := newTrackingReader(original)

	duration, reader, err := ReadDuration(src, music.FullRange)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if duration != 10 {
		t.Errorf("expected duration 10, got %d", duration)
	}
	if src.read != music.HeaderSize {
		t.Errorf("expected exactly %d bytes consumed before hand back, got %d", music.HeaderSize, src.read)
	}

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("failed to read spliced stream: %v", err)
	}
	if !bytes.Equal(got, original) {
		t.Fatalf("spliced stream differs from original: got %d bytes, want %d", len(got), len(original))
	}

	if err := reader.Close(); err != nil {
		t.Fatalf("expected no error on close, got %v", err)
	}
	if !src.closed {
		t.Error("closing the spliced stream did not close the source")
	}
}

func TestReadDuration_SmallReadsPreserveOrder(t *testing.T) {
	original := append(flacHeader(48000, 48000*3+17), []byte("tail")...)
	_, reader, err := ReadDuration(newTrackingReader(original), music.NewRange(0, uint64(len(original)-1)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var out []byte
	buf := make([]byte, 5)
	for {
		n, err := reader.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected read error: %v", err)
		}
	}
	if !bytes.Equal(out, original) {
		t.Fatalf("expected %q, got %q", original, out)
	}
}

func TestReadDuration_TruncatesDivision(t *testing.T) {
	duration, _, err := ReadDuration(newTrackingReader(flacHeader(48000, 48000*3+47999)), music.FullRange)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if duration != 3 {
		t.Errorf("expected duration 3, got %d", duration)
	}
}

func TestReadDuration_SkipsWhenRangeDoesNotStartAtZero(t *testing.T) {
	src := newTrackingReader(flacHeader(44100, 441000))

	duration, reader, err := ReadDuration(src, music.From(1024))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if duration != 0 {
		t.Errorf("expected duration 0, got %d", duration)
	}
	if src.read != 0 {
		t.Errorf("expected no bytes consumed, got %d", src.read)
	}
	if reader != io.ReadCloser(src) {
		t.Error("expected the original reader to be handed back untouched")
	}
}

func TestReadDuration_SkipsWhenRangeTooShortForHeader(t *testing.T) {
	src := newTrackingReader(flacHeader(44100, 441000)[:10])

	duration, reader, err := ReadDuration(src, music.NewRange(0, 9))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if duration != 0 || src.read != 0 || reader != io.ReadCloser(src) {
		t.Errorf("expected untouched reader with duration 0, got duration %d and %d bytes read", duration, src.read)
	}
}

func TestReadDuration_TruncatedHeaderIsCorrupt(t *testing.T) {
	src := newTrackingReader(flacHeader(44100, 441000)[:20])

	_, reader, err := ReadDuration(src, music.FullRange)
	if !errors.Is(err, music.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected the read error to be wrapped, got %v", err)
	}
	if reader != nil {
		t.Error("expected no reader on error")
	}
	if !src.closed {
		t.Error("expected the source to be released on error")
	}
}

func TestReadDuration_BadMarkerIsCorrupt(t *testing.T) {
	head := flacHeader(44100, 441000)
	copy(head, "ID3\x04")

	_, _, err := ReadDuration(newTrackingReader(head), music.FullRange)
	if !errors.Is(err, music.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestReadDuration_NonStreamInfoBlockIsCorrupt(t *testing.T) {
	head := flacHeader(44100, 441000)
	head[4] = byte(goflac.Padding)

	_, _, err := ReadDuration(newTrackingReader(head), music.FullRange)
	if !errors.Is(err, music.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestReadDuration_ZeroSampleRateIsCorrupt(t *testing.T) {
	_, _, err := ReadDuration(newTrackingReader(flacHeader(0, 1000)), music.FullRange)
	if !errors.Is(err, music.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestReadHeader_DecodesStreamInfo(t *testing.T) {
	info, _, err := ReadHeader(newTrackingReader(flacHeader(96000, 1<<35+5)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if info.SampleRate != 96000 {
		t.Errorf("expected sample rate 96000, got %d", info.SampleRate)
	}
	if info.TotalSamples != 1<<35+5 {
		t.Errorf("expected total samples %d, got %d", uint64(1<<35+5), info.TotalSamples)
	}
}
