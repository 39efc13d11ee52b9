package rtpchannel

import (
	"github.com/pion/rtcp"
	"github.com/pion/rtp"

	"github.com/ywscr/rtspsession/pkg/base"
	"github.com/ywscr/rtspsession/pkg/conn"
)

// InterleavedChannel is a Channel that multiplexes RTP and RTCP onto the control connection
// itself (spec 6's "RTP/AVP/TCP" delivery), using the two interleaved channel ids negotiated in
// SETUP's Transport header. It opens no socket of its own and shares the Conn's write lock,
// satisfying the "no UDP sockets for TCP-interleaved sessions" invariant (spec 3).
type InterleavedChannel struct {
	c           *conn.Conn
	rtpChannel  int
	rtcpChannel int
	handlers    Handlers
}

// NewInterleavedChannel installs itself as c's frame handler. A Conn holds a single frame
// handler, so this replaces any handler installed before; frames on channel ids other than
// rtpChannel/rtcpChannel are dropped.
func NewInterleavedChannel(c *conn.Conn, rtpChannel, rtcpChannel int, h Handlers) *InterleavedChannel {
	ic := &InterleavedChannel{c: c, rtpChannel: rtpChannel, rtcpChannel: rtcpChannel, handlers: h}
	c.SetFrameHandler(ic.onFrame)
	return ic
}

func (ic *InterleavedChannel) onFrame(channel int, payload []byte) {
	switch channel {
	case ic.rtpChannel:
		if ic.handlers.OnRTP == nil {
			return
		}
		var pkt rtp.Packet
		if err := pkt.Unmarshal(payload); err != nil {
			return
		}
		ic.handlers.OnRTP(&pkt)
	case ic.rtcpChannel:
		dispatchRTCP(payload, ic.handlers)
	}
}

// WriteRTP implements Channel.
func (ic *InterleavedChannel) WriteRTP(pkt *rtp.Packet) error {
	raw, err := pkt.Marshal()
	if err != nil {
		return err
	}
	return ic.c.WriteInterleavedFrame(&base.InterleavedFrame{Channel: ic.rtpChannel, Payload: raw})
}

// WriteRTCP implements Channel.
func (ic *InterleavedChannel) WriteRTCP(pkt rtcp.Packet) error {
	raw, err := pkt.Marshal()
	if err != nil {
		return err
	}
	return ic.c.WriteInterleavedFrame(&base.InterleavedFrame{Channel: ic.rtcpChannel, Payload: raw})
}

// Close implements Channel. It detaches the frame handler so a future SETUP on the same
// connection can bind a fresh one.
func (ic *InterleavedChannel) Close() error {
	ic.c.SetFrameHandler(nil)
	return nil
}
