// Package sdp wraps github.com/pion/sdp/v3 with the few operations the session engine needs:
// parsing a session description, locating each media's control URL, and rewriting the origin
// line on the way out to a peer (spec 4.5.1).
package sdp

import (
	"fmt"
	"strings"

	psdp "github.com/pion/sdp/v3"
)

// SessionDescription is an SDP session description.
type SessionDescription psdp.SessionDescription

// Unmarshal decodes raw into a SessionDescription.
func Unmarshal(raw []byte) (*SessionDescription, error) {
	var s psdp.SessionDescription
	if err := s.Unmarshal(raw); err != nil {
		return nil, fmt.Errorf("sdp: %w", err)
	}
	return (*SessionDescription)(&s), nil
}

// Marshal encodes s.
func (s *SessionDescription) Marshal() ([]byte, error) {
	return (*psdp.SessionDescription)(s).Marshal()
}

// Attribute returns a session-level attribute value.
func (s *SessionDescription) Attribute(key string) (string, bool) {
	return (*psdp.SessionDescription)(s).Attribute(key)
}

// MediaCount returns the number of media descriptions.
func (s *SessionDescription) MediaCount() int {
	return len(s.MediaDescriptions)
}

// ControlURL returns the "a=control:" attribute for the given media index, falling back to the
// session-level attribute, per RFC 2326 Appendix C.1 and spec 4.4's SETUP/aggregate-URL rule.
// baseURL is the request URL used to resolve a relative control attribute.
func (s *SessionDescription) ControlURL(mediaIndex int, baseURL string) (string, error) {
	if mediaIndex < 0 || mediaIndex >= len(s.MediaDescriptions) {
		return "", fmt.Errorf("sdp: media index %d out of range", mediaIndex)
	}

	md := s.MediaDescriptions[mediaIndex]
	value, ok := md.Attribute("control")
	if !ok {
		value, ok = s.Attribute("control")
		if !ok {
			return baseURL, nil
		}
	}

	if value == "*" {
		return baseURL, nil
	}
	if strings.Contains(value, "://") {
		return value, nil
	}

	if strings.HasSuffix(baseURL, "/") {
		return baseURL + value, nil
	}
	return baseURL + "/" + value, nil
}

// RewriteOrigin replaces the origin line's unicast address, session id and session version,
// matching the session-handler duty named in spec 4.5.1: "replace the o= line's address with the
// server's address and derive session-id/session-version from the current NTP timestamp halves,
// leaving every other SDP line byte-for-byte unchanged."
func (s *SessionDescription) RewriteOrigin(unicastAddress string, sessionID, sessionVersion uint32) {
	s.Origin.UnicastAddress = unicastAddress
	s.Origin.SessionID = uint64(sessionID)
	s.Origin.SessionVersion = uint64(sessionVersion)
}
