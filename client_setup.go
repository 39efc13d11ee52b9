package rtspsession

import (
	"net"

	"github.com/ywscr/rtspsession/pkg/base"
	"github.com/ywscr/rtspsession/pkg/headers"
	"github.com/ywscr/rtspsession/pkg/liberrors"
	"github.com/ywscr/rtspsession/pkg/rtpchannel"
)

const defaultUDPPortSearchStart = 15000

func isUnsupportedTransport(err error) bool {
	pe, ok := err.(*liberrors.ProtocolError)
	return ok && pe.Code == base.StatusUnsupportedTransport
}

// Setup negotiates transport for one media (spec 4.4 step 3).
func (c *Client) Setup(mediaIndex int) (*base.Response, error) {
	res := make(chan clientRes)
	select {
	case c.setupCh <- setupReq{mediaIndex: mediaIndex, res: res}:
		r := <-res
		return r.res, r.err
	case <-c.closed:
		return nil, &liberrors.PeerClosedError{Reason: "client closed"}
	}
}

func (c *Client) doSetup(mediaIndex int) (*base.Response, error) {
	if err := c.checkState(clientStateDescribed, clientStateReady); err != nil {
		return nil, err
	}

	controlURL, err := c.description.ControlURL(mediaIndex, c.baseURL.String())
	if err != nil {
		return nil, &liberrors.ProtocolError{Op: "SETUP", Message: err.Error()}
	}
	u, err := base.ParseURL(controlURL)
	if err != nil {
		return nil, &liberrors.ProtocolError{Op: "SETUP", Message: "invalid control URL: " + controlURL}
	}

	// attemptSetup itself re-issues SETUP once, with a TCP offer, when a UDP offer's response
	// signals interleaved delivery instead. If the server rejects the UDP offer outright (461
	// Unsupported Transport), retry here with a TCP offer: both are the bounded-depth-1 mid-SETUP
	// fallback named in spec 7.
	wantTCP := c.preferredTransport == headers.TransportProtocolTCP
	res, channel, negotiated, err := c.attemptSetup(u, mediaIndex, wantTCP)
	if !wantTCP && isUnsupportedTransport(err) {
		res, channel, negotiated, err = c.attemptSetup(u, mediaIndex, true)
	}
	if err != nil {
		return nil, err
	}

	c.channel = channel
	c.setupMediaIndex = mediaIndex
	c.transport = negotiated
	c.state = clientStateReady
	return res, nil
}

// attemptSetup sends one SETUP with either a UDP or TCP-interleaved Transport offer and builds
// the corresponding RtpChannel from the server's answer.
func (c *Client) attemptSetup(u *base.URL, mediaIndex int, tcp bool) (*base.Response, rtpchannel.Channel, *headers.Transport, error) {
	unicast := headers.TransportDeliveryUnicast
	mode := headers.TransportModePlay

	var offer *headers.Transport
	var rtpConn, rtcpConn *net.UDPConn
	var err error

	if tcp {
		rtpID, rtcpID := 2*mediaIndex, 2*mediaIndex+1
		offer = &headers.Transport{
			Protocol:       headers.TransportProtocolTCP,
			Delivery:       &unicast,
			InterleavedIDs: &[2]int{rtpID, rtcpID},
			Mode:           &mode,
		}
	} else {
		rtpConn, rtcpConn, err = rtpchannel.FindOpenUDPPortPair("0.0.0.0", defaultUDPPortSearchStart)
		if err != nil {
			return nil, nil, nil, &liberrors.TransportError{Op: "SETUP port allocation", Err: err}
		}
		clientPorts := [2]int{rtpConn.LocalAddr().(*net.UDPAddr).Port, rtcpConn.LocalAddr().(*net.UDPAddr).Port}
		offer = &headers.Transport{
			Protocol:    headers.TransportProtocolUDP,
			Delivery:    &unicast,
			ClientPorts: &clientPorts,
			Mode:        &mode,
		}
	}

	handlers := c.packetHandlers
	userBye := handlers.OnBye
	handlers.OnBye = func() {
		c.onBye()
		if userBye != nil {
			userBye()
		}
	}

	hdr := base.NewHeader()
	hdr.Set("Transport", offer.Marshal()[0])
	res, err := c.do(&base.Request{Method: base.Setup, URL: u, Header: hdr})
	if err != nil {
		if rtpConn != nil {
			rtpConn.Close()
			rtcpConn.Close()
		}
		return nil, nil, nil, err
	}
	if res.StatusCode != base.StatusOK {
		if rtpConn != nil {
			rtpConn.Close()
			rtcpConn.Close()
		}
		return res, nil, nil, &liberrors.ProtocolError{Op: "SETUP", Code: res.StatusCode, Message: res.StatusMessage}
	}

	tv, ok := res.Header.Get("Transport")
	if !ok {
		if rtpConn != nil {
			rtpConn.Close()
			rtcpConn.Close()
		}
		return res, nil, nil, &liberrors.ProtocolError{Op: "SETUP", Message: "missing Transport header in response"}
	}
	negotiated, err := headers.ParseTransport(tv)
	if err != nil {
		if rtpConn != nil {
			rtpConn.Close()
			rtcpConn.Close()
		}
		return res, nil, nil, &liberrors.ParseError{Op: "SETUP Transport", Err: err}
	}

	if tcp {
		rtpID, rtcpID := 2*mediaIndex, 2*mediaIndex+1
		if negotiated.InterleavedIDs != nil {
			rtpID, rtcpID = negotiated.InterleavedIDs[0], negotiated.InterleavedIDs[1]
		}
		ch := rtpchannel.NewInterleavedChannel(c.conn, rtpID, rtcpID, handlers)
		return res, ch, negotiated, nil
	}

	// The server answered 200 OK to a UDP offer but signalled interleaved delivery instead
	// (negotiated.IsTCPFallback): discard the UDP sockets and re-issue SETUP once, this time with
	// a TCP offer, per spec 4.4 step 4. The re-issued response is what finalizes the channel.
	if negotiated.IsTCPFallback(negotiated.ClientPorts != nil) {
		rtpConn.Close()
		rtcpConn.Close()
		return c.attemptSetup(u, mediaIndex, true)
	}

	host := u.Host
	if h, _, err := net.SplitHostPort(u.Host); err == nil {
		host = h
	}
	var remote *net.UDPAddr
	if negotiated.ServerPorts != nil {
		remote = &net.UDPAddr{IP: net.ParseIP(host), Port: negotiated.ServerPorts[0]}
	}
	ch := rtpchannel.NewUDPChannel(rtpConn, rtcpConn, remote, handlers)
	return res, ch, negotiated, nil
}
