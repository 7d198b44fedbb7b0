package music

import (
	"fmt"
	"strconv"
	"strings"
)

// HeaderSize is the length of the FLAC prefix holding the STREAMINFO block:
// the "fLaC" marker, the block header word and the 34 byte STREAMINFO body.
const HeaderSize = 4 + 4 + 34

// contentRangePrefix is the fixed "bytes " unit prefix of a Content-Range value.
const contentRangePrefix = len("bytes ")

// Range is a byte region of a remote resource. End is inclusive.
// Total is only known once an upstream answered with a Content-Range header.
type Range struct {
	Start uint64
	End   *uint64
	Total *uint64
}

// FullRange means "the entire resource".
var FullRange = Range{}

// NewRange returns the closed range [start, end].
func NewRange(start, end uint64) Range {
	return Range{Start: start, End: &end}
}

// From returns the open range starting at start.
func From(start uint64) Range {
	return Range{Start: start}
}

// IsFull reports whether the range asks for the whole resource.
// Total is ignored, it only describes what an upstream served.
func (r Range) IsFull() bool {
	return r.Start == 0 && r.End == nil
}

// ContainsHeader reports whether the region starts at offset 0 and is long
// enough to hold the FLAC header prefix.
func (r Range) ContainsHeader() bool {
	return r.Start == 0 && (r.End == nil || *r.End >= HeaderSize-1)
}

// RangeHeader renders the value of a Range request header.
// It returns false for FullRange, in which case no header should be sent.
func (r Range) RangeHeader() (string, bool) {
	if r.IsFull() {
		return "", false
	}
	if r.End == nil {
		return fmt.Sprintf("bytes=%d-", r.Start), true
	}
	return fmt.Sprintf("bytes=%d-%d", r.Start, *r.End), true
}

// ContentRangeHeader renders the value of a Content-Range response header.
// An unknown end is rendered relative to Total, an unknown Total as "*".
func (r Range) ContentRangeHeader() string {
	total := "*"
	if r.Total != nil {
		total = strconv.FormatUint(*r.Total, 10)
	}
	switch {
	case r.End != nil:
		return fmt.Sprintf("bytes %d-%d/%s", r.Start, *r.End, total)
	case r.Total != nil && *r.Total > 0:
		return fmt.Sprintf("bytes %d-%d/%s", r.Start, *r.Total-1, total)
	default:
		return fmt.Sprintf("bytes %d-/%s", r.Start, total)
	}
}

func (r Range) String() string {
	if h, ok := r.RangeHeader(); ok {
		return h
	}
	return "full"
}

// ParseContentRange turns an upstream Content-Range value such as
// "bytes 0-1023/10240" into a Range. An empty or too short value yields
// FullRange. Every field falls back to its default independently when it
// does not parse: Start to 0, End and Total to unknown.
func ParseContentRange(header string) Range {
	if len(header) <= contentRangePrefix {
		return FullRange
	}

	rest := header[contentRangePrefix:]
	from, rest, _ := strings.Cut(rest, "-")
	to, total, _ := strings.Cut(rest, "/")

	var r Range
	if start, err := strconv.ParseUint(from, 10, 64); err == nil {
		r.Start = start
	}
	if end, err := strconv.ParseUint(to, 10, 64); err == nil {
		r.End = &end
	}
	if t, err := strconv.ParseUint(total, 10, 64); err == nil {
		r.Total = &t
	}
	return r
}

// ParseRangeHeader reads a client Range header ("bytes=a-b" or "bytes=a-").
// Suffix ranges, multiple ranges and anything malformed give FullRange.
func ParseRangeHeader(header string) Range {
	spec, ok := strings.CutPrefix(strings.TrimSpace(header), "bytes=")
	if !ok || strings.Contains(spec, ",") {
		return FullRange
	}
	from, to, ok := strings.Cut(spec, "-")
	if !ok || from == "" {
		return FullRange
	}
	start, err := strconv.ParseUint(from, 10, 64)
	if err != nil {
		return FullRange
	}
	if to == "" {
		return From(start)
	}
	end, err := strconv.ParseUint(to, 10, 64)
	if err != nil || end < start {
		return FullRange
	}
	return NewRange(start, end)
}
