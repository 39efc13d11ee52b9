package base

import "strconv"

const responseMaxStatusLineLength = 512

// Response is a RTSP response: the control-plane ControlMessage sent server → client.
type Response struct {
	StatusCode    StatusCode
	StatusMessage string
	Header        Header
	Body          []byte
}

// CSeq returns the parsed CSeq header, or (0, false) if absent or malformed.
func (res *Response) CSeq() (int, bool) {
	return parseCSeq(res.Header)
}

// SetCSeq sets the CSeq header.
func (res *Response) SetCSeq(n int) {
	res.Header.Set("CSeq", strconv.Itoa(n))
}

// MarshalSize returns the size in bytes of the marshaled response.
func (res *Response) MarshalSize() int {
	if res.StatusMessage == "" {
		res.StatusMessage = StatusMessages[res.StatusCode]
	}

	n := len(rtspProtocol) + 1 + len(strconv.Itoa(int(res.StatusCode))) + 1 + len(res.StatusMessage) + 2

	if len(res.Body) != 0 {
		res.Header.Set("Content-Length", strconv.Itoa(len(res.Body)))
	}
	n += res.Header.marshalSize()
	n += len(res.Body)
	return n
}

// MarshalTo writes the marshaled response into buf, which must be at least MarshalSize() long.
func (res *Response) MarshalTo(buf []byte) int {
	if res.StatusMessage == "" {
		res.StatusMessage = StatusMessages[res.StatusCode]
	}

	pos := 0
	pos += copy(buf[pos:], rtspProtocol)
	pos += copy(buf[pos:], " ")
	pos += copy(buf[pos:], strconv.Itoa(int(res.StatusCode)))
	pos += copy(buf[pos:], " ")
	pos += copy(buf[pos:], res.StatusMessage)
	pos += copy(buf[pos:], "\r\n")

	if len(res.Body) != 0 {
		res.Header.Set("Content-Length", strconv.Itoa(len(res.Body)))
	}
	pos += res.Header.marshalTo(buf[pos:])
	pos += copy(buf[pos:], res.Body)

	return pos
}

// Marshal encodes the response to bytes (spec 4.1, encode(msg) -> bytes).
func (res *Response) Marshal() []byte {
	buf := make([]byte, res.MarshalSize())
	res.MarshalTo(buf)
	return buf
}

// String implements fmt.Stringer.
func (res *Response) String() string {
	return string(res.Marshal())
}

// DecodeResponse decodes a response from buf (spec 4.1, decode(buf) -> (msg, consumed) |
// NeedMore | NotRtsp). maxSize bounds the total message size; 0 selects DefaultMaxMessageBytes.
func DecodeResponse(buf []byte, maxSize int) (*Response, int, error) {
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
		if len(buf) > responseMaxStatusLineLength {
			return nil, 0, ErrNotRtsp
		}
		return nil, 0, ErrNeedMore
	}
	line := buf[:lineEnd]

	sp1 := indexByte(line, ' ')
	if sp1 < 0 {
		return nil, 0, ErrNotRtsp
	}
	proto := string(line[:sp1])
	if proto != rtspProtocol {
		return nil, 0, ErrNotRtsp
	}

	rest := line[sp1+1:]
	sp2 := indexByte(rest, ' ')
	if sp2 < 0 {
		return nil, 0, ErrNotRtsp
	}
	codeStr := string(rest[:sp2])
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return nil, 0, &ParseError{Kind: ParseErrorBadStartLine, Detail: "invalid status code"}
	}
	statusMessage := string(rest[sp2+1:])
	if statusMessage == "" {
		return nil, 0, &ParseError{Kind: ParseErrorBadStartLine, Detail: "empty status message"}
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

	return &Response{
		StatusCode:    StatusCode(code),
		StatusMessage: statusMessage,
		Header:        hdr,
		Body:          body,
	}, pos, nil
}
