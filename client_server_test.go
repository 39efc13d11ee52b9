package rtspsession

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ywscr/rtspsession/pkg/base"
	"github.com/ywscr/rtspsession/pkg/conn"
	"github.com/ywscr/rtspsession/pkg/headers"
	"github.com/ywscr/rtspsession/pkg/sdp"
)

const testSDP = "v=0\r\n" +
	"o=- 0 0 IN IP4 0.0.0.0\r\n" +
	"s=Stream\r\n" +
	"t=0 0\r\n" +
	"m=video 0 RTP/AVP 96\r\n" +
	"a=rtpmap:96 H264/90000\r\n" +
	"a=control:trackID=0\r\n"

type noopFeed struct{}

func (noopFeed) Subscribe(s *ServerSession) func() { return func() {} }

func startTestServer(t *testing.T) (*Server, net.Listener, string) {
	t.Helper()
	desc, err := sdp.Unmarshal([]byte(testSDP))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(noopFeed{}, WithDescription(desc), WithSessionTimeout(2*time.Second))
	go srv.Serve(ln)

	return srv, ln, ln.Addr().String()
}

func TestClientServerHandshakeUDP(t *testing.T) {
	_, ln, addr := startTestServer(t)
	defer ln.Close()

	c := NewClient(WithReadTimeout(2 * time.Second))
	require.NoError(t, c.Start(addr))
	defer c.Close()

	streamURL, err := base.ParseURL("rtsp://" + addr + "/stream")
	require.NoError(t, err)

	optRes, err := c.Options(streamURL)
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, optRes.StatusCode)

	desc, baseURL, descRes, err := c.Describe(streamURL)
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, descRes.StatusCode)
	require.Equal(t, 1, desc.MediaCount())
	require.NotNil(t, baseURL)

	setupRes, err := c.Setup(0)
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, setupRes.StatusCode)

	playRes, err := c.Play(nil)
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, playRes.StatusCode)

	require.NoError(t, c.Teardown())
}

func TestClientServerTCPInterleavedSetup(t *testing.T) {
	_, ln, addr := startTestServer(t)
	defer ln.Close()

	c := NewClient(WithReadTimeout(2*time.Second), WithPreferredTransport(headers.TransportProtocolTCP))
	require.NoError(t, c.Start(addr))
	defer c.Close()

	streamURL, err := base.ParseURL("rtsp://" + addr + "/stream")
	require.NoError(t, err)

	_, err = c.Options(streamURL)
	require.NoError(t, err)

	_, _, _, err = c.Describe(streamURL)
	require.NoError(t, err)

	setupRes, err := c.Setup(0)
	require.NoError(t, err)
	require.Equal(t, base.StatusOK, setupRes.StatusCode)

	tv, ok := setupRes.Header.Get("Transport")
	require.True(t, ok)
	require.Contains(t, tv[0], "RTP/AVP/TCP")
}

// TestClientCSeqMonotonic guards against the CSeq-resets-to-1-per-session bug: the counter must
// increase strictly across OPTIONS/DESCRIBE/SETUP/PLAY even though no SessionIdentity exists yet
// when OPTIONS and DESCRIBE are sent.
func TestClientCSeqMonotonic(t *testing.T) {
	_, ln, addr := startTestServer(t)
	defer ln.Close()

	c := NewClient(WithReadTimeout(2 * time.Second))
	require.NoError(t, c.Start(addr))
	defer c.Close()

	streamURL, err := base.ParseURL("rtsp://" + addr + "/stream")
	require.NoError(t, err)

	optRes, err := c.Options(streamURL)
	require.NoError(t, err)
	optSeq, ok := optRes.CSeq()
	require.True(t, ok)

	_, _, descRes, err := c.Describe(streamURL)
	require.NoError(t, err)
	descSeq, ok := descRes.CSeq()
	require.True(t, ok)
	require.Greater(t, descSeq, optSeq)

	setupRes, err := c.Setup(0)
	require.NoError(t, err)
	setupSeq, ok := setupRes.CSeq()
	require.True(t, ok)
	require.Greater(t, setupSeq, descSeq)

	playRes, err := c.Play(nil)
	require.NoError(t, err)
	playSeq, ok := playRes.CSeq()
	require.True(t, ok)
	require.Greater(t, playSeq, setupSeq)
}

// dialRawSession opens a raw control connection to the server, wrapped in the same conn.Conn
// codec the client uses, for tests exercising requests the high-level Client has no method for.
func dialRawSession(t *testing.T, ln net.Listener) *conn.Conn {
	t.Helper()
	nconn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { nconn.Close() })
	return conn.NewConn(nconn, base.DefaultMaxMessageBytes)
}

func rawRequest(t *testing.T, c *conn.Conn, method base.Method, u *base.URL, hdr base.Header, cseq int) *base.Response {
	t.Helper()
	req := &base.Request{Method: method, URL: u, Header: hdr}
	req.SetCSeq(cseq)
	require.NoError(t, c.WriteRequest(req))
	res, err := c.ReadResponse()
	require.NoError(t, err)
	return res
}

// TestServerPauseRoundTrip guards against PAUSE being advertised in OPTIONS' Public header but
// rejected by the dispatch switch: SETUP -> PLAY -> PAUSE -> PLAY must all succeed, since there's
// no client-side Pause API this drives the wire protocol directly.
func TestServerPauseRoundTrip(t *testing.T) {
	desc, err := sdp.Unmarshal([]byte(testSDP))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := NewServer(noopFeed{}, WithDescription(desc), WithSessionTimeout(2*time.Second))
	go srv.Serve(ln)

	rc := dialRawSession(t, ln)
	streamURL, err := base.ParseURL("rtsp://" + ln.Addr().String() + "/stream")
	require.NoError(t, err)

	optRes := rawRequest(t, rc, base.Options, streamURL, base.NewHeader(), 1)
	pub, ok := optRes.Header.Get("Public")
	require.True(t, ok)
	require.Contains(t, pub[0], "PAUSE")

	trackURL, err := base.ParseURL(streamURL.String() + "/trackID=0")
	require.NoError(t, err)
	setupHdr := base.NewHeader()
	setupHdr.Set("Transport", "RTP/AVP/TCP;unicast;interleaved=0-1")
	setupRes := rawRequest(t, rc, base.Setup, trackURL, setupHdr, 2)
	require.Equal(t, base.StatusOK, setupRes.StatusCode)

	sv, ok := setupRes.Header.Get("Session")
	require.True(t, ok)
	sx, err := headers.ParseSession(sv)
	require.NoError(t, err)

	sessionHdr := func() base.Header {
		h := base.NewHeader()
		h.Set("Session", sx.ID)
		return h
	}

	playRes := rawRequest(t, rc, base.Play, streamURL, sessionHdr(), 3)
	require.Equal(t, base.StatusOK, playRes.StatusCode)

	pauseRes := rawRequest(t, rc, base.Pause, streamURL, sessionHdr(), 4)
	require.Equal(t, base.StatusOK, pauseRes.StatusCode)

	playAgainRes := rawRequest(t, rc, base.Play, streamURL, sessionHdr(), 5)
	require.Equal(t, base.StatusOK, playAgainRes.StatusCode)
}

// TestServerRejectsWrongSessionID guards against PLAY/TEARDOWN being accepted regardless of the
// Session header: a request carrying a session id that doesn't match the bound one must get 454.
func TestServerRejectsWrongSessionID(t *testing.T) {
	desc, err := sdp.Unmarshal([]byte(testSDP))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := NewServer(noopFeed{}, WithDescription(desc), WithSessionTimeout(2*time.Second))
	go srv.Serve(ln)

	rc := dialRawSession(t, ln)
	streamURL, err := base.ParseURL("rtsp://" + ln.Addr().String() + "/stream")
	require.NoError(t, err)

	trackURL, err := base.ParseURL(streamURL.String() + "/trackID=0")
	require.NoError(t, err)
	setupHdr := base.NewHeader()
	setupHdr.Set("Transport", "RTP/AVP/TCP;unicast;interleaved=0-1")
	setupRes := rawRequest(t, rc, base.Setup, trackURL, setupHdr, 1)
	require.Equal(t, base.StatusOK, setupRes.StatusCode)

	wrongHdr := base.NewHeader()
	wrongHdr.Set("Session", "not-the-real-session-id")
	playRes := rawRequest(t, rc, base.Play, streamURL, wrongHdr, 2)
	require.Equal(t, base.StatusSessionNotFound, playRes.StatusCode)
}
