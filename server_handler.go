package rtspsession

import (
	"net"
	stdurl "net/url"
	"strings"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"

	"github.com/ywscr/rtspsession/pkg/base"
	"github.com/ywscr/rtspsession/pkg/headers"
	"github.com/ywscr/rtspsession/pkg/rtpchannel"
)

// supportedMethods is advertised in every OPTIONS response's Public header.
var supportedMethods = []base.Method{
	base.Options, base.Describe, base.Setup, base.Play, base.Pause,
	base.Teardown, base.GetParameter,
}

func (sess *ServerSession) handle(req *base.Request) *base.Response {
	switch req.Method {
	case base.Options:
		return sess.handleOptions(req)
	case base.Describe:
		return sess.handleDescribe(req)
	case base.Setup:
		return sess.handleSetup(req)
	case base.Play:
		return sess.handlePlay(req)
	case base.Pause:
		return sess.handlePause(req)
	case base.GetParameter:
		return sess.handleGetParameter(req)
	case base.Teardown:
		return sess.handleTeardown(req)
	default:
		return &base.Response{StatusCode: base.StatusMethodNotAllowed, Header: base.NewHeader()}
	}
}

// checkSessionID gates a request on Session header match, per spec 4.5's "For PLAY/PAUSE/
// TEARDOWN, gate on session id match" and spec 3's "every control message carries its id" once
// one has been bound. required is false only for the very first SETUP, before the peer has
// learned the session id.
func (sess *ServerSession) checkSessionID(req *base.Request, required bool) *base.Response {
	sv, ok := req.Header.Get("Session")
	if !ok {
		if required {
			return &base.Response{StatusCode: base.StatusSessionNotFound, Header: base.NewHeader()}
		}
		return nil
	}
	sx, err := headers.ParseSession(sv)
	if err != nil || sx.ID != sess.ident.id {
		return &base.Response{StatusCode: base.StatusSessionNotFound, Header: base.NewHeader()}
	}
	return nil
}

func (sess *ServerSession) handleOptions(req *base.Request) *base.Response {
	hdr := base.NewHeader()
	names := make([]string, len(supportedMethods))
	for i, m := range supportedMethods {
		names[i] = string(m)
	}
	hdr.Set("Public", strings.Join(names, ", "))
	return &base.Response{StatusCode: base.StatusOK, Header: hdr}
}

func (sess *ServerSession) handleDescribe(req *base.Request) *base.Response {
	if sess.server.description == nil {
		return &base.Response{StatusCode: base.StatusNotFound, Header: base.NewHeader()}
	}

	localAddr := (*stdurl.URL)(req.URL).Hostname()
	if host, _, err := net.SplitHostPort(sess.nconn.LocalAddr().String()); err == nil {
		localAddr = host
	}

	raw, err := rewriteDescription(sess.server.description, localAddr)
	if err != nil {
		return &base.Response{StatusCode: base.StatusInternalServerError, Header: base.NewHeader()}
	}

	hdr := base.NewHeader()
	hdr.Set("Content-Type", "application/sdp")
	hdr.Set("Content-Base", req.URL.String())
	return &base.Response{StatusCode: base.StatusOK, Header: hdr, Body: raw}
}

func (sess *ServerSession) handleSetup(req *base.Request) *base.Response {
	if sess.state != serverStateIdle {
		return &base.Response{StatusCode: base.StatusMethodNotValidInThisState, Header: base.NewHeader()}
	}
	// The peer has not yet learned a session id before its first SETUP, so a missing Session
	// header is fine here; one that's present and wrong still isn't.
	if errRes := sess.checkSessionID(req, false); errRes != nil {
		return errRes
	}

	tv, ok := req.Header.Get("Transport")
	if !ok {
		return &base.Response{StatusCode: base.StatusBadRequest, Header: base.NewHeader()}
	}
	offer, err := headers.ParseTransport(tv)
	if err != nil {
		return &base.Response{StatusCode: base.StatusBadRequest, Header: base.NewHeader()}
	}

	unicast := headers.TransportDeliveryUnicast
	mode := headers.TransportModePlay
	answer := &headers.Transport{Delivery: &unicast, Mode: &mode}

	if offer.Protocol == headers.TransportProtocolTCP || offer.ClientPorts == nil {
		rtpID, rtcpID := 0, 1
		if offer.InterleavedIDs != nil {
			rtpID, rtcpID = offer.InterleavedIDs[0], offer.InterleavedIDs[1]
		}
		answer.Protocol = headers.TransportProtocolTCP
		answer.InterleavedIDs = &[2]int{rtpID, rtcpID}
		sess.channel = rtpchannel.NewInterleavedChannel(sess.conn, rtpID, rtcpID, rtpchannel.Handlers{
			OnBye: sess.onBye,
		})
	} else {
		rtpConn, rtcpConn, err := rtpchannel.FindOpenUDPPortPair("0.0.0.0", defaultUDPPortSearchStart)
		if err != nil {
			return &base.Response{StatusCode: base.StatusInternalServerError, Header: base.NewHeader()}
		}

		host, _, _ := net.SplitHostPort(sess.nconn.RemoteAddr().String())
		remote := &net.UDPAddr{IP: net.ParseIP(host), Port: offer.ClientPorts[0]}

		serverPorts := [2]int{rtpConn.LocalAddr().(*net.UDPAddr).Port, rtcpConn.LocalAddr().(*net.UDPAddr).Port}
		answer.Protocol = headers.TransportProtocolUDP
		answer.ClientPorts = offer.ClientPorts
		answer.ServerPorts = &serverPorts
		sess.channel = rtpchannel.NewUDPChannel(rtpConn, rtcpConn, remote, rtpchannel.Handlers{
			OnBye: sess.onBye,
		})
	}

	sess.transport = answer
	sess.state = serverStateReady

	hdr := base.NewHeader()
	hdr.Set("Transport", answer.Marshal()[0])
	hdr.Set("Session", (&headers.Session{ID: sess.ident.id, Timeout: uint(sess.ident.timeout.Seconds())}).Marshal()[0])
	return &base.Response{StatusCode: base.StatusOK, Header: hdr}
}

func (sess *ServerSession) handlePlay(req *base.Request) *base.Response {
	if sess.state != serverStateReady && sess.state != serverStatePlaying {
		return &base.Response{StatusCode: base.StatusMethodNotValidInThisState, Header: base.NewHeader()}
	}
	if errRes := sess.checkSessionID(req, true); errRes != nil {
		return errRes
	}

	if sess.server.feed != nil && sess.unsubscribe == nil {
		sess.unsubscribe = sess.server.feed.Subscribe(sess)
	}
	sess.state = serverStatePlaying

	hdr := base.NewHeader()
	hdr.Set("Session", sess.ident.id)
	hdr.Set("Range", headers.ZeroRange().Marshal()[0])
	return &base.Response{StatusCode: base.StatusOK, Header: hdr}
}

// handlePause moves a Playing session back to Ready without tearing down its RtpChannel or
// unsubscribing from the feed's Subscribe slot, so a later PLAY can resume delivery.
func (sess *ServerSession) handlePause(req *base.Request) *base.Response {
	if sess.state != serverStateReady && sess.state != serverStatePlaying {
		return &base.Response{StatusCode: base.StatusMethodNotValidInThisState, Header: base.NewHeader()}
	}
	if errRes := sess.checkSessionID(req, true); errRes != nil {
		return errRes
	}

	sess.state = serverStateReady

	hdr := base.NewHeader()
	hdr.Set("Session", sess.ident.id)
	return &base.Response{StatusCode: base.StatusOK, Header: hdr}
}

func (sess *ServerSession) handleGetParameter(req *base.Request) *base.Response {
	if errRes := sess.checkSessionID(req, true); errRes != nil {
		return errRes
	}

	hdr := base.NewHeader()
	hdr.Set("Session", sess.ident.id)
	// The response never carries a body: an empty-body keep-alive ping gets an empty-body 200,
	// and parameter names sent in a request body are not echoed back.
	return &base.Response{StatusCode: base.StatusOK, Header: hdr}
}

func (sess *ServerSession) handleTeardown(req *base.Request) *base.Response {
	if errRes := sess.checkSessionID(req, true); errRes != nil {
		return errRes
	}

	sess.state = serverStateTerminating
	if sess.unsubscribe != nil {
		sess.unsubscribe()
		sess.unsubscribe = nil
	}
	if sess.channel != nil {
		sess.channel.Close()
		sess.channel = nil
	}
	hdr := base.NewHeader()
	hdr.Set("Session", sess.ident.id)
	return &base.Response{StatusCode: base.StatusOK, Header: hdr}
}

// onBye is wired as the RtpChannel's BYE callback: an RTCP Goodbye from the peer drives Playing
// -> Terminating (spec 6, graceful-shutdown-on-BYE scenario).
func (sess *ServerSession) onBye() {
	sess.state = serverStateTerminating
	sess.nconn.Close()
}

// WriteRTP and WriteRTCP are the callbacks a SourceFeed invokes to forward upstream media into
// this peer's RtpChannel (spec 4.3a). A feed calls these directly from Subscribe's delivery
// loop; both are no-ops unless the session is Playing (so nothing is sent while paused) and once
// the session's channel has been torn down.
func (sess *ServerSession) WriteRTP(pkt *rtp.Packet) {
	if sess.channel != nil && sess.state == serverStatePlaying {
		sess.channel.WriteRTP(pkt)
	}
}

func (sess *ServerSession) WriteRTCP(pkt rtcp.Packet) {
	if sess.channel != nil && sess.state == serverStatePlaying {
		sess.channel.WriteRTCP(pkt)
	}
}
