// Package conn implements the Control Transport (spec 4.2): a framed full-duplex byte channel
// that demultiplexes RTSP messages from interleaved binary frames on one TCP connection.
package conn

import (
	"errors"
	"io"
	"sync"

	"github.com/ywscr/rtspsession/pkg/base"
)

const readChunkSize = 4096

// Conn wraps a net.Conn (or any io.ReadWriter) with RTSP message framing and interleaved-frame
// demultiplexing. The read side is not safe for concurrent use by itself (spec 4.2/5: "single
// outstanding request discipline means contention is rare" on reads); the write side is always
// safe for concurrent use.
type Conn struct {
	rw              io.ReadWriter
	maxMessageBytes int
	buf             []byte

	// onFrame receives interleaved RTP/RTCP payloads read off the control socket, routed by
	// channel id to the bound RtpChannel, per spec 4.2.
	onFrame func(channel int, payload []byte)

	wmu sync.Mutex
}

// NewConn allocates a Conn. maxMessageBytes bounds a single RTSP message (0 selects
// base.DefaultMaxMessageBytes, spec 4.1's MAX_MSG).
func NewConn(rw io.ReadWriter, maxMessageBytes int) *Conn {
	if maxMessageBytes <= 0 {
		maxMessageBytes = base.DefaultMaxMessageBytes
	}
	return &Conn{rw: rw, maxMessageBytes: maxMessageBytes}
}

// SetFrameHandler installs the callback invoked for every interleaved frame read from the
// socket. It must be set before the session starts reading binary data (i.e. before/at SETUP
// completion), matching the "RtpChannel exists iff session in {Ready, Playing}" invariant
// (spec 3): frames that arrive before a handler is installed are dropped.
func (c *Conn) SetFrameHandler(f func(channel int, payload []byte)) {
	c.onFrame = f
}

func (c *Conn) fillMore() error {
	chunk := make([]byte, readChunkSize)
	n, err := c.rw.Read(chunk)
	if n > 0 {
		c.buf = append(c.buf, chunk[:n]...)
	}
	if err != nil {
		return err
	}
	return nil
}

// readOne runs decode against the buffered bytes, reading more from the transport and
// dispatching interleaved frames to onFrame until decode succeeds or fails with something other
// than base.ErrNeedMore.
func (c *Conn) readOne(decode func([]byte, int) (int, error)) error {
	for {
		if len(c.buf) > 0 && c.buf[0] == base.InterleavedFrameMagicByte {
			fr, n, err := base.DecodeInterleavedFrame(c.buf)
			if err == nil {
				c.buf = c.buf[n:]
				if c.onFrame != nil {
					c.onFrame(fr.Channel, fr.Payload)
				}
				continue
			}
			if !errors.Is(err, base.ErrNeedMore) {
				return err
			}
		} else {
			n, err := decode(c.buf, c.maxMessageBytes)
			if err == nil {
				c.buf = c.buf[n:]
				return nil
			}
			if !errors.Is(err, base.ErrNeedMore) {
				return err
			}
		}

		if err := c.fillMore(); err != nil {
			return err
		}
	}
}

// ReadResponse reads the next RTSP response, transparently routing any interleaved frames that
// arrive first to the installed frame handler (spec 4.2, client side).
func (c *Conn) ReadResponse() (*base.Response, error) {
	var res *base.Response
	err := c.readOne(func(buf []byte, max int) (int, error) {
		r, n, err := base.DecodeResponse(buf, max)
		if err != nil {
			return 0, err
		}
		res = r
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ReadRequest reads the next RTSP request, transparently routing any interleaved frames that
// arrive first to the installed frame handler (spec 4.2, server side).
func (c *Conn) ReadRequest() (*base.Request, error) {
	var req *base.Request
	err := c.readOne(func(buf []byte, max int) (int, error) {
		r, n, err := base.DecodeRequest(buf, max)
		if err != nil {
			return 0, err
		}
		req = r
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// WriteRequest serializes and writes req, holding the write lock for the duration (spec 4.2,
// "writes atomically with respect to other senders on the same connection").
func (c *Conn) WriteRequest(req *base.Request) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := c.rw.Write(req.Marshal())
	return err
}

// WriteResponse serializes and writes res.
func (c *Conn) WriteResponse(res *base.Response) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := c.rw.Write(res.Marshal())
	return err
}

// WriteInterleavedFrame serializes and writes fr. Used by the Interleaved RtpChannel variant,
// which shares this Conn's write lock rather than opening a socket of its own (spec 3: "no
// separate UDP sockets may be open for that session").
func (c *Conn) WriteInterleavedFrame(fr *base.InterleavedFrame) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_, err := c.rw.Write(fr.Marshal())
	return err
}
