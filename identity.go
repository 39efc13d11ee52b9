package rtspsession

import (
	"time"

	"github.com/google/uuid"

	"github.com/ywscr/rtspsession/pkg/headers"
	"github.com/ywscr/rtspsession/pkg/ntp"
)

// sessionIdentity is the SessionIdentity entity (spec 3): the session id and its negotiated
// timeout. CSeq belongs to the control channel, not the session (it strictly increases from the
// very first request, before any SessionIdentity exists), so the Client tracks it separately.
type sessionIdentity struct {
	id      string
	timeout time.Duration
}

// newServerSessionID allocates a server-chosen session id, using google/uuid the way the
// teacher's sibling media-server projects do for any server-assigned identifier.
func newServerSessionID() string {
	return uuid.NewString()
}

func newSessionIdentity(id string, timeoutSeconds uint) *sessionIdentity {
	if timeoutSeconds == 0 {
		timeoutSeconds = headers.DefaultSessionTimeout
	}
	return &sessionIdentity{id: id, timeout: time.Duration(timeoutSeconds) * time.Second}
}

// originFields derives the SDP origin line's session-id/session-version halves from the current
// NTP timestamp, per spec 4.5.1 and RtpClient::dateTimeToNptTimestamp (spec 6).
func originFields(now time.Time) (sessionID, sessionVersion uint32) {
	return ntp.Halves(now)
}
