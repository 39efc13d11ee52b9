package rtpchannel

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
)

// UDPChannel is a Channel backed by a pair of UDP sockets, one carrying RTP and one carrying
// RTCP (spec 6's "RTP/AVP/UDP" delivery). It is used both by the server, writing media toward a
// client's announced client_port, and by the client, receiving media from the server's
// server_port.
type UDPChannel struct {
	rtpConn  *net.UDPConn
	rtcpConn *net.UDPConn
	remote   atomic.Pointer[udpRemote]
	handlers Handlers

	closeOnce sync.Once
	done      chan struct{}
}

type udpRemote struct {
	rtp  *net.UDPAddr
	rtcp *net.UDPAddr
}

// NewUDPChannel wraps an already-bound RTP/RTCP socket pair. remote may be nil if the peer's
// address is not yet known (e.g. a server waiting for the client's first RTCP packet to learn
// its source port under NAT); call SetRemote once it is.
func NewUDPChannel(rtpConn, rtcpConn *net.UDPConn, remote *net.UDPAddr, h Handlers) *UDPChannel {
	c := &UDPChannel{
		rtpConn:  rtpConn,
		rtcpConn: rtcpConn,
		handlers: h,
		done:     make(chan struct{}),
	}
	if remote != nil {
		rtcpAddr := &net.UDPAddr{IP: remote.IP, Zone: remote.Zone, Port: remote.Port + 1}
		c.remote.Store(&udpRemote{rtp: remote, rtcp: rtcpAddr})
	}
	go c.readRTPLoop()
	go c.readRTCPLoop()
	return c
}

// SetRemote records the peer's RTP/RTCP addresses once known.
func (c *UDPChannel) SetRemote(rtpAddr, rtcpAddr *net.UDPAddr) {
	c.remote.Store(&udpRemote{rtp: rtpAddr, rtcp: rtcpAddr})
}

func (c *UDPChannel) readRTPLoop() {
	buf := make([]byte, 65536)
	for {
		n, addr, err := c.rtpConn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		if r := c.remote.Load(); r == nil {
			c.remote.Store(&udpRemote{rtp: addr, rtcp: &net.UDPAddr{IP: addr.IP, Zone: addr.Zone, Port: addr.Port + 1}})
		}
		if c.handlers.OnRTP == nil {
			continue
		}
		var pkt rtp.Packet
		if err := pkt.Unmarshal(buf[:n]); err != nil {
			continue
		}
		c.handlers.OnRTP(&pkt)
	}
}

func (c *UDPChannel) readRTCPLoop() {
	buf := make([]byte, 65536)
	for {
		n, addr, err := c.rtcpConn.ReadFromUDP(buf)
		if err != nil {
			return
		}
		if r := c.remote.Load(); r == nil {
			c.remote.Store(&udpRemote{rtp: &net.UDPAddr{IP: addr.IP, Zone: addr.Zone, Port: addr.Port - 1}, rtcp: addr})
		}
		dispatchRTCP(buf[:n], c.handlers)
	}
}

// WriteRTP implements Channel.
func (c *UDPChannel) WriteRTP(pkt *rtp.Packet) error {
	raw, err := pkt.Marshal()
	if err != nil {
		return err
	}
	r := c.remote.Load()
	if r == nil || r.rtp == nil {
		return nil
	}
	_, err = c.rtpConn.WriteToUDP(raw, r.rtp)
	return err
}

// WriteRTCP implements Channel.
func (c *UDPChannel) WriteRTCP(pkt rtcp.Packet) error {
	raw, err := pkt.Marshal()
	if err != nil {
		return err
	}
	r := c.remote.Load()
	if r == nil || r.rtcp == nil {
		return nil
	}
	_, err = c.rtcpConn.WriteToUDP(raw, r.rtcp)
	return err
}

// Close implements Channel.
func (c *UDPChannel) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.rtpConn.Close()
		c.rtcpConn.Close()
	})
	return nil
}
