// Package rtpchannel implements the RtpChannel abstraction (spec 3 and 6): the single transport
// each session's media flows through, backed by a UDP socket pair or an interleaved TCP channel.
package rtpchannel

import (
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
)

// Channel is the capability an established session holds for moving RTP/RTCP packets, regardless
// of whether the underlying transport is a pair of UDP sockets or frames interleaved on the
// control connection. Exactly one Channel exists per session while it is Ready or Playing (spec
// 3's RtpChannel-existence invariant); Close releases it.
type Channel interface {
	// WriteRTP sends pkt on the RTP substream.
	WriteRTP(pkt *rtp.Packet) error
	// WriteRTCP sends pkt on the RTCP substream.
	WriteRTCP(pkt rtcp.Packet) error
	// Close tears down the channel. Idempotent.
	Close() error
}

// Handlers are the callbacks a Channel invokes as packets arrive. All are optional; a nil
// handler simply drops the corresponding traffic.
type Handlers struct {
	// OnRTP is invoked for every RTP packet received.
	OnRTP func(pkt *rtp.Packet)
	// OnRTCP is invoked for every RTCP packet received, before Bye inspection.
	OnRTCP func(pkt rtcp.Packet)
	// OnBye is invoked for every received RTCP Goodbye (type 203) packet, per spec
	// 6's "graceful shutdown on RTCP BYE" scenario. The session layer uses this to drive the
	// Playing -> Terminating transition.
	OnBye func()
}

func dispatchRTCP(raw []byte, h Handlers) {
	packets, err := rtcp.Unmarshal(raw)
	if err != nil {
		return
	}
	for _, pkt := range packets {
		if h.OnRTCP != nil {
			h.OnRTCP(pkt)
		}
		if _, ok := pkt.(*rtcp.Goodbye); ok && h.OnBye != nil {
			h.OnBye()
		}
	}
}
