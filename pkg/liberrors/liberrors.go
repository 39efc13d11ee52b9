// Package liberrors contains the error kinds surfaced by the client state machine and the
// server session handler (spec 7).
package liberrors

import (
	"fmt"

	"github.com/ywscr/rtspsession/pkg/base"
)

// ResolveError is returned when host lookup fails.
type ResolveError struct {
	Host string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("unable to resolve %q: %v", e.Host, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// TransportError is returned when a socket open/read/write fails.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError wraps a base.ParseError with the operation that triggered it.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error during %s: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ProtocolError is returned when a response is syntactically valid RTSP but semantically
// unacceptable: wrong status code, missing required header, and so on.
type ProtocolError struct {
	Op      string
	Code    base.StatusCode
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("protocol error during %s: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("protocol error during %s: %d %s", e.Op, e.Code, e.Message)
}

// SessionExpiredError describes a 454 Session Not Found. The client does not return it: a 454
// answering PLAY or a keep-alive makes the client redo DESCRIBE and SETUP once, and a second 454
// on the retried PLAY is reported as a ProtocolError. A 454 answering SETUP is not retried.
type SessionExpiredError struct{}

func (e *SessionExpiredError) Error() string { return "session not found (454), session expired" }

// TimeoutError describes a per-operation read/write deadline that elapsed. The client does not
// return it: an elapsed control-socket deadline is reported as a TransportError wrapping the
// net package's timeout error.
type TimeoutError struct {
	Op string
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("timeout during %s", e.Op) }

// PeerClosedError is returned when the session ends gracefully: a TEARDOWN was processed, or an
// RTCP BYE arrived.
type PeerClosedError struct {
	Reason string
}

func (e *PeerClosedError) Error() string { return "peer closed: " + e.Reason }

// WrongStateError is returned when an operation is attempted from a client/server state that
// does not allow it.
type WrongStateError struct {
	Allowed []fmt.Stringer
	Current fmt.Stringer
}

func (e *WrongStateError) Error() string {
	return fmt.Sprintf("must be in state %v, while in state %v", e.Allowed, e.Current)
}
