package base

import (
	"strconv"
)

const (
	requestMaxMethodLength = 64
	requestMaxURLLength    = 2048
)

// Request is a RTSP request: the control-plane ControlMessage sent client → server.
type Request struct {
	Method Method
	URL    *URL
	Header Header
	Body   []byte
}

// CSeq returns the parsed CSeq header, or (0, false) if absent or malformed.
func (req *Request) CSeq() (int, bool) {
	return parseCSeq(req.Header)
}

// SetCSeq sets the CSeq header.
func (req *Request) SetCSeq(n int) {
	req.Header.Set("CSeq", strconv.Itoa(n))
}

func parseCSeq(h Header) (int, bool) {
	v := h.Value("CSeq")
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// MarshalSize returns the size in bytes of the marshaled request.
func (req *Request) MarshalSize() int {
	n := 0
	urStr := req.URL.CloneWithoutCredentials().String()
	n += len(string(req.Method)) + 1 + len(urStr) + 1 + len(rtspProtocol) + 2

	if len(req.Body) != 0 {
		req.Header.Set("Content-Length", strconv.Itoa(len(req.Body)))
	}
	n += req.Header.marshalSize()
	n += len(req.Body)
	return n
}

// MarshalTo writes the marshaled request into buf, which must be at least MarshalSize() long.
func (req *Request) MarshalTo(buf []byte) int {
	pos := 0
	urStr := req.URL.CloneWithoutCredentials().String()

	pos += copy(buf[pos:], string(req.Method))
	pos += copy(buf[pos:], " ")
	pos += copy(buf[pos:], urStr)
	pos += copy(buf[pos:], " ")
	pos += copy(buf[pos:], rtspProtocol)
	pos += copy(buf[pos:], "\r\n")

	if len(req.Body) != 0 {
		req.Header.Set("Content-Length", strconv.Itoa(len(req.Body)))
	}
	pos += req.Header.marshalTo(buf[pos:])
	pos += copy(buf[pos:], req.Body)

	return pos
}

// Marshal encodes the request to bytes (spec 4.1, encode(msg) -> bytes).
func (req *Request) Marshal() []byte {
	buf := make([]byte, req.MarshalSize())
	req.MarshalTo(buf)
	return buf
}

// String implements fmt.Stringer.
func (req *Request) String() string {
	return string(req.Marshal())
}

// DecodeRequest decodes a request from buf (spec 4.1, decode(buf) -> (msg, consumed) | NeedMore
// | NotRtsp). maxSize bounds the total message size; 0 selects DefaultMaxMessageBytes.
func DecodeRequest(buf []byte, maxSize int) (*Request, int, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxMessageBytes
	}
	if len(buf) > maxSize {
		return nil, 0, &ParseError{Kind: ParseErrorTooLarge, Detail: "message exceeds max size before a start-line was found"}
	}

	if len(buf) == 0 {
		return nil, 0, ErrNeedMore
	}
	if buf[0] == InterleavedFrameMagicByte {
		return nil, 0, ErrNotRtsp
	}

	lineEnd := indexCRLF(buf)
	if lineEnd < 0 {
		if len(buf) > requestMaxMethodLength+requestMaxURLLength+len(rtspProtocol)+8 {
			return nil, 0, ErrNotRtsp
		}
		return nil, 0, ErrNeedMore
	}
	line := buf[:lineEnd]

	sp1 := indexByte(line, ' ')
	if sp1 < 0 {
		return nil, 0, ErrNotRtsp
	}
	method := Method(line[:sp1])
	if method == "" {
		return nil, 0, ErrNotRtsp
	}

	rest := line[sp1+1:]
	sp2 := indexByte(rest, ' ')
	if sp2 < 0 {
		return nil, 0, ErrNotRtsp
	}
	rawURL := string(rest[:sp2])
	proto := string(rest[sp2+1:])
	if proto != rtspProtocol {
		return nil, 0, ErrNotRtsp
	}

	ur, err := ParseURL(rawURL)
	if err != nil {
		return nil, 0, &ParseError{Kind: ParseErrorBadStartLine, Detail: "invalid request-URI: " + rawURL}
	}

	pos := lineEnd + 2
	hdr, consumed, err := parseHeaders(buf[pos:])
	if err != nil {
		return nil, 0, err
	}
	pos += consumed

	body, consumed, err := readBody(hdr, buf[pos:], maxSize-pos)
	if err != nil {
		return nil, 0, err
	}
	pos += consumed

	return &Request{Method: method, URL: ur, Header: hdr, Body: body}, pos, nil
}
