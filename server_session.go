package rtspsession

import (
	"net"
	"time"

	"github.com/ywscr/rtspsession/pkg/base"
	"github.com/ywscr/rtspsession/pkg/bytecounter"
	"github.com/ywscr/rtspsession/pkg/conn"
	"github.com/ywscr/rtspsession/pkg/headers"
	"github.com/ywscr/rtspsession/pkg/rtpchannel"
	"github.com/ywscr/rtspsession/pkg/sdp"
)

// serverState is the server-side half of the session lifecycle named in spec 3, mirroring
// clientState: Idle -> Ready -> Playing -> Terminating -> Closed (a server session has no
// separate Connected/Described state of its own since DESCRIBE is stateless on this side).
type serverState int

const (
	serverStateIdle serverState = iota
	serverStateReady
	serverStatePlaying
	serverStateTerminating
	serverStateClosed
)

// ServerSession is the per-peer session object described in spec 2 component 5: it owns a
// session identity, negotiates transport on SETUP, rewrites the SourceFeed's SessionDescription
// on DESCRIBE, and forwards subscribed media into the peer's RtpChannel.
type ServerSession struct {
	server *Server

	nconn net.Conn
	conn  *conn.Conn
	bc    *bytecounter.ByteCounter

	ident *sessionIdentity
	state serverState

	transport   *headers.Transport
	channel     rtpchannel.Channel
	unsubscribe func()
}

func newServerSession(s *Server, nconn net.Conn) *ServerSession {
	bc := bytecounter.New(nconn, nil, nil)
	return &ServerSession{
		server: s,
		nconn:  nconn,
		bc:     bc,
		conn:   conn.NewConn(bc, s.maxMessageBytes),
		ident:  newSessionIdentity(newServerSessionID(), uint(s.sessionTimeout/time.Second)),
		state:  serverStateIdle,
	}
}

func (sess *ServerSession) run() {
	sess.server.log.Info("session opened", "remote", sess.nconn.RemoteAddr(), "id", sess.ident.id)
	defer sess.close()

	for {
		sess.nconn.SetReadDeadline(time.Now().Add(sess.server.readTimeout))
		req, err := sess.conn.ReadRequest()
		if err != nil {
			return
		}

		res := sess.handle(req)

		if cseq, ok := req.CSeq(); ok {
			res.SetCSeq(cseq)
		}
		res.Header.Set("Server", sess.server.userAgent)

		sess.nconn.SetWriteDeadline(time.Now().Add(sess.server.writeTimeout))
		if err := sess.conn.WriteResponse(res); err != nil {
			return
		}

		if req.Method == base.Teardown {
			return
		}
	}
}

// Stats returns the number of bytes read from and written to the control connection so far.
func (sess *ServerSession) Stats() (received, sent uint64) {
	return sess.bc.BytesReceived(), sess.bc.BytesSent()
}

func (sess *ServerSession) close() {
	received, sent := sess.Stats()
	sess.server.log.Info("session closed", "id", sess.ident.id, "bytes_received", received, "bytes_sent", sent)
	if sess.unsubscribe != nil {
		sess.unsubscribe()
	}
	if sess.channel != nil {
		sess.channel.Close()
	}
	sess.nconn.Close()
	sess.state = serverStateClosed
}

// rewriteDescription clones the server's template SessionDescription and rewrites its origin
// line per spec 4.5.1, leaving every other line byte-for-byte unchanged.
func rewriteDescription(template *sdp.SessionDescription, localAddr string) ([]byte, error) {
	clone := *template
	sessionID, sessionVersion := originFields(time.Now())
	clone.RewriteOrigin(localAddr, sessionID, sessionVersion)
	return clone.Marshal()
}
