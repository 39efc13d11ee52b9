// Package headers parses and serializes the structured RTSP headers named in spec 4.1:
// Transport, Session, RTP-Info, Range and the HTTP Basic auth headers.
package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ywscr/rtspsession/pkg/base"
)

// TransportProtocol is the lower-layer transport carrying RTP/RTCP.
type TransportProtocol int

// recognized transport protocols.
const (
	TransportProtocolUDP TransportProtocol = iota
	TransportProtocolTCP
)

// TransportDelivery distinguishes unicast from multicast delivery.
type TransportDelivery int

// recognized delivery methods.
const (
	TransportDeliveryUnicast TransportDelivery = iota
	TransportDeliveryMulticast
)

// TransportMode is the "mode=" parameter: PLAY or RECORD.
type TransportMode int

// recognized transport modes.
const (
	TransportModePlay TransportMode = iota
	TransportModeRecord
)

// String implements fmt.Stringer.
func (m TransportMode) String() string {
	if m == TransportModeRecord {
		return "record"
	}
	return "play"
}

func parsePortPair(val string) ([2]int, error) {
	parts := strings.Split(val, "-")
	switch len(parts) {
	case 1:
		p1, err := strconv.Atoi(parts[0])
		if err != nil {
			return [2]int{}, fmt.Errorf("invalid port (%v)", val)
		}
		return [2]int{p1, p1 + 1}, nil
	case 2:
		p1, err := strconv.Atoi(parts[0])
		if err != nil {
			return [2]int{}, fmt.Errorf("invalid ports (%v)", val)
		}
		p2, err := strconv.Atoi(parts[1])
		if err != nil {
			return [2]int{}, fmt.Errorf("invalid ports (%v)", val)
		}
		return [2]int{p1, p2}, nil
	default:
		return [2]int{}, fmt.Errorf("invalid ports (%v)", val)
	}
}

// Transport is a Transport header (spec 3, NegotiatedTransport; spec 4.1).
type Transport struct {
	Protocol TransportProtocol

	Delivery *TransportDelivery

	ClientPorts    *[2]int
	ServerPorts    *[2]int
	InterleavedIDs *[2]int

	Mode *TransportMode

	// SSRC is the synchronization source identifier, if the peer echoed one. The spec
	// requires decimal-first, hex-fallback decoding (spec 4.4 tie-breaks).
	SSRC *uint32

	// ServerPortSingle records whether "server_port=" carried a single value rather than a
	// pair, which the spec (4.1) treats as a distinct TCP-fallback signal on its own, even
	// without an interleaved= token, when the client did not get an echoed client_port pair.
	ServerPortSingle bool

	// Unknown preserves tokens the parser did not recognize, in order; Marshal appends them
	// after the recognized tokens, so re-encoding never silently drops data and the "total
	// parser" testable property holds.
	Unknown []string
}

// IsTCPFallback reports whether this (server-sent) Transport signals that the server wants to
// fall back to TCP-interleaved delivery despite a UDP SETUP request: either it included
// interleaved ids, or it gave a single-valued server_port without us ever seeing client_port
// echoed back (spec 4.1).
func (h *Transport) IsTCPFallback(echoedClientPorts bool) bool {
	if h.InterleavedIDs != nil {
		return true
	}
	return h.ServerPortSingle && !echoedClientPorts
}

// ParseSSRC decodes a ssrc= value, trying decimal first and hexadecimal on failure, per the
// spec 4.4 tie-break.
func ParseSSRC(s string) (uint32, error) {
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(v), nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid ssrc (%v)", s)
	}
	return uint32(v), nil
}

// ParseTransport decodes a Transport header value. Per spec 4.1 the parser is total: unknown
// tokens are preserved but never cause a rejection; only grammar violations inside a recognized
// token (e.g. "client_port=abc") do.
func ParseTransport(v base.HeaderValue) (*Transport, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("value not provided")
	}
	if len(v) > 1 {
		return nil, fmt.Errorf("value provided multiple times (%v)", v)
	}

	parts := strings.Split(v[0], ";")
	if len(parts) == 0 || parts[0] == "" {
		return nil, fmt.Errorf("invalid value (%v)", v[0])
	}

	h := &Transport{}

	switch parts[0] {
	case "RTP/AVP", "RTP/AVP/UDP":
		h.Protocol = TransportProtocolUDP
	case "RTP/AVP/TCP":
		h.Protocol = TransportProtocolTCP
	default:
		return nil, fmt.Errorf("invalid protocol (%v)", parts[0])
	}

	for _, t := range parts[1:] {
		switch {
		case t == "unicast":
			d := TransportDeliveryUnicast
			h.Delivery = &d

		case t == "multicast":
			d := TransportDeliveryMulticast
			h.Delivery = &d

		case strings.HasPrefix(t, "client_port="):
			pp, err := parsePortPair(t[len("client_port="):])
			if err != nil {
				return nil, err
			}
			h.ClientPorts = &pp

		case strings.HasPrefix(t, "server_port="):
			raw := t[len("server_port="):]
			pp, err := parsePortPair(raw)
			if err != nil {
				return nil, err
			}
			h.ServerPorts = &pp
			h.ServerPortSingle = !strings.Contains(raw, "-")

		case strings.HasPrefix(t, "interleaved="):
			pp, err := parsePortPair(t[len("interleaved="):])
			if err != nil {
				return nil, err
			}
			h.InterleavedIDs = &pp

		case strings.HasPrefix(t, "mode="):
			raw := strings.Trim(t[len("mode="):], "\"")
			switch strings.ToLower(raw) {
			case "play":
				m := TransportModePlay
				h.Mode = &m
			case "record", "receive":
				m := TransportModeRecord
				h.Mode = &m
			default:
				h.Unknown = append(h.Unknown, t)
			}

		case strings.HasPrefix(t, "ssrc="):
			ssrc, err := ParseSSRC(t[len("ssrc="):])
			if err != nil {
				return nil, err
			}
			h.SSRC = &ssrc

		default:
			h.Unknown = append(h.Unknown, t)
		}
	}

	return h, nil
}

// Marshal encodes a Transport header.
func (h *Transport) Marshal() base.HeaderValue {
	var parts []string

	if h.Protocol == TransportProtocolUDP {
		parts = append(parts, "RTP/AVP")
	} else {
		parts = append(parts, "RTP/AVP/TCP")
	}

	if h.Delivery != nil {
		if *h.Delivery == TransportDeliveryUnicast {
			parts = append(parts, "unicast")
		} else {
			parts = append(parts, "multicast")
		}
	}

	if h.ClientPorts != nil {
		parts = append(parts, fmt.Sprintf("client_port=%d-%d", h.ClientPorts[0], h.ClientPorts[1]))
	}
	if h.ServerPorts != nil {
		parts = append(parts, fmt.Sprintf("server_port=%d-%d", h.ServerPorts[0], h.ServerPorts[1]))
	}
	if h.InterleavedIDs != nil {
		parts = append(parts, fmt.Sprintf("interleaved=%d-%d", h.InterleavedIDs[0], h.InterleavedIDs[1]))
	}
	if h.Mode != nil {
		parts = append(parts, "mode="+h.Mode.String())
	}
	if h.SSRC != nil {
		parts = append(parts, fmt.Sprintf("ssrc=%08X", *h.SSRC))
	}
	parts = append(parts, h.Unknown...)

	return base.HeaderValue{strings.Join(parts, ";")}
}
