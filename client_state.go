package rtspsession

import (
	"github.com/ywscr/rtspsession/pkg/base"
)

// clientState is the Client side of the session lifecycle named in spec 3: Idle -> Connected ->
// Described -> Ready -> Playing -> Terminating -> Closed.
type clientState int

const (
	clientStateIdle clientState = iota
	clientStateConnected
	clientStateDescribed
	clientStateReady
	clientStatePlaying
	clientStateTerminating
	clientStateClosed
)

func (s clientState) String() string {
	switch s {
	case clientStateIdle:
		return "idle"
	case clientStateConnected:
		return "connected"
	case clientStateDescribed:
		return "described"
	case clientStateReady:
		return "ready"
	case clientStatePlaying:
		return "playing"
	case clientStateTerminating:
		return "terminating"
	case clientStateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Credential holds HTTP Basic credentials to retry a request with on a 401, per spec 6.
type Credential struct {
	User string
	Pass string
}

type clientRes struct {
	res *base.Response
	err error
}
