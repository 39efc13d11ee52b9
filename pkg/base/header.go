package base

import (
	"net/http"
	"strings"
)

// headerKeyNormalize canonicalizes a header key the way RTSP servers expect it on the wire.
// Most keys follow HTTP's Title-Case convention; a handful of RTSP-specific keys have their
// own canonical spelling that http.CanonicalHeaderKey would get wrong.
func headerKeyNormalize(in string) string {
	switch strings.ToLower(in) {
	case "rtp-info":
		return "RTP-Info"
	case "www-authenticate":
		return "WWW-Authenticate"
	case "cseq":
		return "CSeq"
	}
	return http.CanonicalHeaderKey(in)
}

// HeaderValue is a header value; RTSP allows the same key to be repeated.
type HeaderValue []string

// Header is the RTSP header multimap, present in both Requests and Responses.
//
// Keys are normalized on insert (case-insensitive lookups), and the order in which distinct
// keys were first inserted is preserved on Marshal, since some servers are picky about header
// ordering even though RTSP/1.0 does not require it.
type Header struct {
	order []string
	vals  map[string]HeaderValue
}

// NewHeader allocates an empty Header.
func NewHeader() Header {
	return Header{vals: make(map[string]HeaderValue)}
}

// Get returns the value associated with key, if any.
func (h Header) Get(key string) (HeaderValue, bool) {
	if h.vals == nil {
		return nil, false
	}
	v, ok := h.vals[headerKeyNormalize(key)]
	return v, ok
}

// Value returns the single value associated with key, or "" if absent or multi-valued.
func (h Header) Value(key string) string {
	v, ok := h.Get(key)
	if !ok || len(v) != 1 {
		return ""
	}
	return v[0]
}

// Set replaces any existing values for key.
func (h *Header) Set(key string, values ...string) {
	if h.vals == nil {
		h.vals = make(map[string]HeaderValue)
	}
	nk := headerKeyNormalize(key)
	if _, ok := h.vals[nk]; !ok {
		h.order = append(h.order, nk)
	}
	h.vals[nk] = HeaderValue(values)
}

// Add appends a value for key, preserving any previous values.
func (h *Header) Add(key string, value string) {
	if h.vals == nil {
		h.vals = make(map[string]HeaderValue)
	}
	nk := headerKeyNormalize(key)
	if _, ok := h.vals[nk]; !ok {
		h.order = append(h.order, nk)
	}
	h.vals[nk] = append(h.vals[nk], value)
}

// Del removes all values for key.
func (h *Header) Del(key string) {
	nk := headerKeyNormalize(key)
	if _, ok := h.vals[nk]; !ok {
		return
	}
	delete(h.vals, nk)
	for i, k := range h.order {
		if k == nk {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Keys returns header keys in insertion order.
func (h Header) Keys() []string {
	out := make([]string, len(h.order))
	copy(out, h.order)
	return out
}

// Clone returns a deep copy of h.
func (h Header) Clone() Header {
	nh := NewHeader()
	for _, k := range h.order {
		nh.Set(k, append(HeaderValue{}, h.vals[k]...)...)
	}
	return nh
}

func (h Header) marshalSize() int {
	n := 0
	for _, k := range h.order {
		for _, v := range h.vals[k] {
			n += len(k) + len(": ") + len(v) + len("\r\n")
		}
	}
	n += len("\r\n")
	return n
}

func (h Header) marshalTo(buf []byte) int {
	pos := 0
	for _, k := range h.order {
		for _, v := range h.vals[k] {
			pos += copy(buf[pos:], k)
			pos += copy(buf[pos:], ": ")
			pos += copy(buf[pos:], v)
			pos += copy(buf[pos:], "\r\n")
		}
	}
	pos += copy(buf[pos:], "\r\n")
	return pos
}

// parseHeaders reads headers (and the terminating blank line) from raw, which must start right
// after the start-line's CRLF. It returns the parsed Header and the number of bytes consumed
// from raw, or ErrNeedMore if the blank line terminating the header block has not arrived yet.
func parseHeaders(raw []byte) (Header, int, error) {
	h := NewHeader()
	pos := 0

	for {
		if pos >= len(raw) {
			return Header{}, 0, ErrNeedMore
		}

		// blank line: end of headers
		if raw[pos] == '\r' {
			if pos+1 >= len(raw) {
				return Header{}, 0, ErrNeedMore
			}
			if raw[pos+1] != '\n' {
				return Header{}, 0, &ParseError{Kind: ParseErrorBadStartLine, Detail: "malformed header terminator"}
			}
			pos += 2
			return h, pos, nil
		}

		lineEnd := indexCRLF(raw[pos:])
		if lineEnd < 0 {
			return Header{}, 0, ErrNeedMore
		}
		line := raw[pos : pos+lineEnd]
		pos += lineEnd + 2

		colon := indexByte(line, ':')
		if colon < 0 {
			return Header{}, 0, &ParseError{Kind: ParseErrorBadStartLine, Detail: "header line without colon"}
		}
		key := string(line[:colon])
		val := strings.TrimLeft(string(line[colon+1:]), " ")
		if val == "" {
			return Header{}, 0, &ParseError{Kind: ParseErrorBadStartLine, Detail: "empty header value"}
		}

		h.Add(key, val)
	}
}

func indexCRLF(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == '\r' && b[i+1] == '\n' {
			return i
		}
	}
	return -1
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
