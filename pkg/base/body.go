package base

import "strconv"

// readBody reads the body out of raw according to hdr's Content-Length, returning the body and
// the number of bytes consumed. Absent Content-Length means an empty body (RTSP, unlike HTTP/1.1,
// never uses chunked transfer or connection-close framing for bodies).
func readBody(hdr Header, raw []byte, remainingBudget int) ([]byte, int, error) {
	cl := hdr.Value("Content-Length")
	if cl == "" {
		return nil, 0, nil
	}

	n, err := strconv.Atoi(cl)
	if err != nil || n < 0 {
		return nil, 0, &ParseError{Kind: ParseErrorBadStartLine, Detail: "invalid Content-Length"}
	}
	if n > remainingBudget {
		return nil, 0, &ParseError{Kind: ParseErrorTooLarge, Detail: "body exceeds max message size"}
	}
	if len(raw) < n {
		return nil, 0, ErrNeedMore
	}

	body := make([]byte, n)
	copy(body, raw[:n])
	return body, n, nil
}
