package rtspsession

import (
	"net"
	"sync"
	"time"

	"github.com/ywscr/rtspsession/pkg/base"
	"github.com/ywscr/rtspsession/pkg/sdp"
)

// SourceFeed is the boundary contract the Server Session Handler presents to whatever feeds it
// upstream media (an ingest pipeline, out of scope per spec 1). Subscribe is called on a
// session's first PLAY; the feed then drives the session's WriteRTP/WriteRTCP methods directly
// until the returned unsubscribe func is called.
type SourceFeed interface {
	Subscribe(s *ServerSession) (unsubscribe func())
}

// ServerOption configures a Server at construction time.
type ServerOption func(*Server)

// WithServerUserAgent sets the Server header sent on every response.
func WithServerUserAgent(ua string) ServerOption {
	return func(s *Server) { s.userAgent = ua }
}

// WithServerLogger attaches a structured logger.
func WithServerLogger(l Logger) ServerOption {
	return func(s *Server) { s.log = l }
}

// WithSessionTimeout sets the timeout advertised in the Session header of a SETUP response.
func WithSessionTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.sessionTimeout = d }
}

// WithServerReadTimeout bounds how long a single control-socket read may block.
func WithServerReadTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.readTimeout = d }
}

// WithServerWriteTimeout bounds how long a single control-socket write may block.
func WithServerWriteTimeout(d time.Duration) ServerOption {
	return func(s *Server) { s.writeTimeout = d }
}

// WithServerMaxMessageBytes overrides the default RTSP message size cap.
func WithServerMaxMessageBytes(n int) ServerOption {
	return func(s *Server) { s.maxMessageBytes = n }
}

// WithDescription sets the SessionDescription template served on DESCRIBE. Every response gets
// its own clone with a freshly rewritten origin line (spec 4.5.1); the template itself is never
// mutated.
func WithDescription(desc *sdp.SessionDescription) ServerOption {
	return func(s *Server) { s.description = desc }
}

// Server is the Server Session Handler (spec 4.5): it accepts RTSP/1.0 control connections and
// runs one ServerSession per connection, rewriting and serving the SourceFeed's description and
// forwarding its media into each peer's RtpChannel.
type Server struct {
	feed        SourceFeed
	description *sdp.SessionDescription

	userAgent       string
	sessionTimeout  time.Duration
	readTimeout     time.Duration
	writeTimeout    time.Duration
	maxMessageBytes int
	log             Logger

	mu       sync.Mutex
	sessions map[string]*ServerSession
}

// NewServer allocates a Server backed by feed.
func NewServer(feed SourceFeed, opts ...ServerOption) *Server {
	s := &Server{
		feed:            feed,
		userAgent:       "rtspsession",
		sessionTimeout:  60 * time.Second,
		readTimeout:     10 * time.Second,
		writeTimeout:    10 * time.Second,
		maxMessageBytes: base.DefaultMaxMessageBytes,
		log:             noopLogger{},
		sessions:        map[string]*ServerSession{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Serve accepts connections on ln until it returns an error (typically from ln.Close()).
func (s *Server) Serve(ln net.Listener) error {
	for {
		nconn, err := ln.Accept()
		if err != nil {
			return err
		}
		sess := newServerSession(s, nconn)
		s.addSession(sess)
		go func() {
			sess.run()
			s.removeSession(sess)
		}()
	}
}

func (s *Server) addSession(sess *ServerSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ident.id] = sess
}

func (s *Server) removeSession(sess *ServerSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess.ident.id)
}

// SessionCount returns the number of active sessions, for tests and diagnostics.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
