package providers

import (
	"bytes"
	"encoding/binary"
	"net/http"
	"strings"
	"testing"
	"time"

	goflac "github.com/go-flac/go-flac"
)

// flacFile builds a FLAC header for sampleRate/totalSamples followed by payload.
func flacFile(sampleRate uint32, totalSamples uint64, payload string) []byte {
	data := make([]byte, 34)
	packed := uint64(sampleRate)<<44 | uint64(1)<<41 | uint64(15)<<36 | totalSamples
	binary.BigEndian.PutUint64(data[10:18], packed)
	block := &goflac.MetaDataBlock{Type: goflac.StreamInfo, Data: data}

	var buf bytes.Buffer
	buf.WriteString("fLaC")
	buf.Write(block.Marshal(true))
	buf.WriteString(payload)
	return buf.Bytes()
}

// serveBytes answers GET requests for content, honoring Range.
func serveBytes(w http.ResponseWriter, r *http.Request, name string, content []byte) {
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(content))
}

func TestEscapePath(t *testing.T) {
	got := escapePath("my album/1/cover.jpg")
	if got != "my%20album/1/cover.jpg" {
		t.Errorf("expected escaped path, got %s", got)
	}
}

func TestFLACFixtureHasPayloadAfterHeader(t *testing.T) {
	content := flacFile(44100, 441000, "payload")
	if !strings.HasSuffix(string(content), "payload") || len(content) != 42+len("payload") {
		t.Fatalf("unexpected fixture layout, %d bytes", len(content))
	}
}
