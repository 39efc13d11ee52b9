package base

import (
	"errors"
	"fmt"
)

// ErrNeedMore is returned by the Decode* functions when buf does not yet contain a complete
// message; the caller should read more bytes from the transport and retry with a larger buf.
var ErrNeedMore = errors.New("need more data")

// ErrNotRtsp is returned by DecodeRequest and DecodeResponse when the buffered bytes cannot be
// the start of a RTSP message: either the interleaved-frame marker 0x24, or a first line that
// cannot possibly be a RTSP start-line.
var ErrNotRtsp = errors.New("not a RTSP message")

// ParseErrorKind discriminates the ways base.ParseError can fail, per spec 4.1.
type ParseErrorKind int

// recognized parse error kinds.
const (
	ParseErrorBadStartLine ParseErrorKind = iota
	ParseErrorTooLarge
)

// ParseError is returned when buf contains malformed RTSP grammar (spec 4.1).
type ParseError struct {
	Kind   ParseErrorKind
	Detail string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseErrorTooLarge:
		return fmt.Sprintf("message too large: %s", e.Detail)
	default:
		return fmt.Sprintf("bad start line: %s", e.Detail)
	}
}
