package rtspsession

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ywscr/rtspsession/pkg/base"
	"github.com/ywscr/rtspsession/pkg/bytecounter"
	"github.com/ywscr/rtspsession/pkg/conn"
	"github.com/ywscr/rtspsession/pkg/headers"
	"github.com/ywscr/rtspsession/pkg/liberrors"
	"github.com/ywscr/rtspsession/pkg/rtpchannel"
	"github.com/ywscr/rtspsession/pkg/sdp"
)

// ClientOption configures a Client at construction time.
type ClientOption func(*Client)

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) { c.userAgent = ua }
}

// WithCredential sets the HTTP Basic credential used to retry a request after a 401, per spec 6.
func WithCredential(cred Credential) ClientOption {
	return func(c *Client) { c.credential = &cred }
}

// WithPreferredTransport sets the Transport protocol offered in SETUP before any TCP fallback.
func WithPreferredTransport(p headers.TransportProtocol) ClientOption {
	return func(c *Client) { c.preferredTransport = p }
}

// WithReadTimeout bounds how long a single control-socket read may block.
func WithReadTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.readTimeout = d }
}

// WithWriteTimeout bounds how long a single control-socket write may block.
func WithWriteTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.writeTimeout = d }
}

// WithMaxMessageBytes overrides the default RTSP message size cap.
func WithMaxMessageBytes(n int) ClientOption {
	return func(c *Client) { c.maxMessageBytes = n }
}

// WithKeepaliveMethod overrides the method used for periodic keep-alive (GET_PARAMETER by
// default, falling back to OPTIONS when the server's OPTIONS response did not advertise
// GET_PARAMETER support, per the supplemented OPTIONS-advertised-method-gating feature).
func WithKeepaliveMethod(m base.Method) ClientOption {
	return func(c *Client) { c.keepaliveMethod = &m }
}

// WithLogger attaches a structured logger.
func WithLogger(l Logger) ClientOption {
	return func(c *Client) { c.log = l }
}

// WithRedirectDisable disables the one-hop redirect-following on DESCRIBE.
func WithRedirectDisable() ClientOption {
	return func(c *Client) { c.redirectDisable = true }
}

// WithPacketHandlers registers callbacks invoked for every RTP/RTCP packet received on the
// RtpChannel built during SETUP. Set before calling Setup; a proxy uses this to forward media
// received from an upstream server into its own SourceFeed.
func WithPacketHandlers(h rtpchannel.Handlers) ClientOption {
	return func(c *Client) { c.packetHandlers = h }
}

// Client is the client-side RTSP session state machine (spec 4.4): OPTIONS/DESCRIBE/SETUP/PLAY,
// periodic keep-alive, and TEARDOWN, driven from a single owning goroutine so session state
// itself needs no mutex (spec 5).
type Client struct {
	userAgent           string
	credential          *Credential
	preferredTransport  headers.TransportProtocol
	readTimeout         time.Duration
	writeTimeout        time.Duration
	maxMessageBytes     int
	keepaliveMethod     *base.Method
	redirectDisable     bool
	packetHandlers      rtpchannel.Handlers
	log                 Logger

	nconn net.Conn
	conn  *conn.Conn
	bc    *bytecounter.ByteCounter
	cseq  atomic.Int64

	state           clientState
	ident           *sessionIdentity
	baseURL         *base.URL
	description     *sdp.SessionDescription
	setupMediaIndex int
	transport       *headers.Transport
	channel         rtpchannel.Channel
	publicMethods   map[base.Method]bool
	keepalive       *keepaliveTimer

	optionsCh   chan optionsReq
	describeCh  chan describeReq
	setupCh     chan setupReq
	playCh      chan playReq
	teardownCh  chan teardownReq

	done   chan struct{}
	closed chan struct{}
	byeCh  chan struct{}
	runErr error
}

type optionsReq struct {
	url *base.URL
	res chan clientRes
}

type describeReq struct {
	url *base.URL
	res chan describeRes
}

type describeRes struct {
	description *sdp.SessionDescription
	baseURL     *base.URL
	res         *base.Response
	err         error
}

type setupReq struct {
	mediaIndex int
	res        chan clientRes
}

type playReq struct {
	rng *headers.Range
	res chan clientRes
}

type teardownReq struct {
	res chan error
}

// NewClient allocates a Client. It does not dial until Start is called.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		userAgent:       "rtspsession",
		readTimeout:     10 * time.Second,
		writeTimeout:    10 * time.Second,
		maxMessageBytes: base.DefaultMaxMessageBytes,
		log:             noopLogger{},
		publicMethods:   map[base.Method]bool{},
		optionsCh:       make(chan optionsReq),
		describeCh:      make(chan describeReq),
		setupCh:         make(chan setupReq),
		playCh:          make(chan playReq),
		teardownCh:      make(chan teardownReq),
		done:            make(chan struct{}),
		closed:          make(chan struct{}),
		byeCh:           make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start dials addr (host:port) and moves the client to Connected.
func (c *Client) Start(addr string) error {
	nconn, err := net.Dial("tcp", addr)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return &liberrors.ResolveError{Host: addr, Err: err}
		}
		return &liberrors.TransportError{Op: "dial", Err: err}
	}
	c.nconn = nconn
	c.bc = bytecounter.New(nconn, nil, nil)
	c.conn = conn.NewConn(c.bc, c.maxMessageBytes)
	c.state = clientStateConnected
	c.keepalive = newKeepaliveTimer(0)
	go c.run()
	return nil
}

// Stats returns the number of bytes read from and written to the control connection so far.
func (c *Client) Stats() (received, sent uint64) {
	if c.bc == nil {
		return 0, 0
	}
	return c.bc.BytesReceived(), c.bc.BytesSent()
}

// Close tears down the session (sending TEARDOWN if one is active) and releases the socket.
func (c *Client) Close() error {
	select {
	case <-c.closed:
		return nil
	default:
	}
	close(c.done)
	<-c.closed
	return c.runErr
}

func (c *Client) run() {
	defer close(c.closed)
	defer c.doClose()

	for {
		select {
		case req := <-c.optionsCh:
			res, err := c.doOptions(req.url)
			req.res <- clientRes{res: res, err: err}

		case req := <-c.describeCh:
			desc, baseURL, res, err := c.doDescribe(req.url)
			req.res <- describeRes{description: desc, baseURL: baseURL, res: res, err: err}

		case req := <-c.setupCh:
			res, err := c.doSetup(req.mediaIndex)
			req.res <- clientRes{res: res, err: err}

		case req := <-c.playCh:
			res, err := c.doPlay(req.rng)
			req.res <- clientRes{res: res, err: err}

		case req := <-c.teardownCh:
			req.res <- c.doTeardown()
			return

		case <-c.byeCh:
			if c.state == clientStatePlaying || c.state == clientStateReady {
				// doTeardown moves the state to Terminating before sending TEARDOWN.
				_ = c.doTeardown()
			}
			return

		case <-c.keepalive.C():
			if err := c.doKeepalive(); err != nil {
				c.log.Warn("keepalive failed", "err", err)
				c.runErr = err
				return
			}

		case <-c.done:
			if c.state == clientStatePlaying || c.state == clientStateReady {
				_ = c.doTeardown()
			}
			return
		}
	}
}

func (c *Client) doClose() {
	c.keepalive.stop()
	if c.channel != nil {
		c.channel.Close()
	}
	if c.nconn != nil {
		c.nconn.Close()
	}
	c.state = clientStateClosed
}

// checkState returns a WrongStateError unless the client is currently in one of allowed.
func (c *Client) checkState(allowed ...clientState) error {
	for _, s := range allowed {
		if c.state == s {
			return nil
		}
	}
	stringers := make([]fmt.Stringer, len(allowed))
	for i, s := range allowed {
		stringers[i] = s
	}
	return &liberrors.WrongStateError{Allowed: stringers, Current: c.state}
}

// do sends req, stamping CSeq/User-Agent/Session/Authorization, and reads the matching response.
// It retries once with a Basic Authorization header on a 401, per the supplemented
// retry-once-on-401 feature.
func (c *Client) do(req *base.Request) (*base.Response, error) {
	if err := c.send(req); err != nil {
		return nil, err
	}

	c.nconn.SetReadDeadline(time.Now().Add(c.readTimeout))
	res, err := c.conn.ReadResponse()
	if err != nil {
		return nil, &liberrors.TransportError{Op: "read response", Err: err}
	}

	if sv, ok := res.Header.Get("Session"); ok {
		sx, err := headers.ParseSession(sv)
		if err == nil {
			if c.ident == nil {
				c.ident = newSessionIdentity(sx.ID, sx.Timeout)
			}
			c.ident.timeout = time.Duration(sx.Timeout) * time.Second
		}
	}

	if res.StatusCode == base.StatusUnauthorized && c.credential != nil && req.Header.Value("Authorization") == "" {
		req.Header.Set("Authorization", headers.BasicAuthorization(c.credential.User, c.credential.Pass)[0])
		req.Header.Del("CSeq")
		return c.do(req)
	}

	return res, nil
}

// nextCSeq returns the next CSeq value to stamp on an outgoing request. CSeq belongs to the
// control channel and strictly increases from the very first request (spec 3), independent of
// whether a SessionIdentity exists yet.
func (c *Client) nextCSeq() int {
	return int(c.cseq.Add(1))
}

func (c *Client) send(req *base.Request) error {
	if _, ok := req.Header.Get("CSeq"); !ok {
		req.SetCSeq(c.nextCSeq())
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.ident != nil {
		req.Header.Set("Session", c.ident.id)
	}

	c.nconn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := c.conn.WriteRequest(req); err != nil {
		return &liberrors.TransportError{Op: "write request", Err: err}
	}
	return nil
}

// onBye is wired as the RtpChannel's BYE callback: a received RTCP Goodbye signals the peer is
// ending the stream, driving Playing -> Terminating (spec 6's graceful-shutdown-on-BYE scenario).
func (c *Client) onBye() {
	select {
	case <-c.byeCh:
	default:
		close(c.byeCh)
	}
}

func methodListFromPublicHeader(v base.HeaderValue) map[base.Method]bool {
	out := map[base.Method]bool{}
	if len(v) == 0 {
		return out
	}
	for _, tok := range strings.Split(v[0], ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out[base.Method(tok)] = true
		}
	}
	return out
}
